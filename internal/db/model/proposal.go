package model

const ProposalCollection = "proposals"

// ProposalDocument is a governance proposal with its embedded vote tally.
// Voters holds every account that has cast a vote; tallies are power bps
// captured at each voter's cast time and never re-weighted.
type ProposalDocument struct {
	Id              string   `bson:"_id"`
	Proposer        string   `bson:"proposer"`
	Title           string   `bson:"title"`
	Description     string   `bson:"description"`
	VotesForBps     int64    `bson:"votes_for_bps"`
	VotesAgainstBps int64    `bson:"votes_against_bps"`
	VotingDeadline  int64    `bson:"voting_deadline"`
	Resolved        bool     `bson:"resolved"`
	Approved        bool     `bson:"approved"`
	Voters          []string `bson:"voters"`
	CreatedAt       int64    `bson:"created_at"`
	UpdatedAt       int64    `bson:"updated_at"`
}

type ProposalPagination struct {
	CreatedAt int64  `json:"created_at"`
	Id        string `json:"id"`
}

func BuildProposalPaginationToken(d ProposalDocument) (string, error) {
	page := ProposalPagination{
		CreatedAt: d.CreatedAt,
		Id:        d.Id,
	}
	return GetPaginationToken(page)
}
