package client

// Activity events published for downstream consumers (audit trail, block
// explorer, notification service). Tallies and amounts mirror what was
// persisted; consumers must treat them as observations, not commands.

type EventType int

const (
	StakeEventType             EventType = 1
	UnstakeEventType           EventType = 2
	EmergencyWithdrawEventType EventType = 3
	RewardsClaimedEventType    EventType = 4
	VoteCastEventType          EventType = 5
	ProposalResolvedEventType  EventType = 6
	GuaranteeStatusEventType   EventType = 7
)

type StakeEvent struct {
	EventType      EventType `json:"event_type"`
	Staker         string    `json:"staker"`
	Asset          string    `json:"asset"`
	Amount         int64     `json:"amount"`
	TotalStaked    int64     `json:"total_staked"`
	VotingPowerBps int64     `json:"voting_power_bps"`
	Timestamp      int64     `json:"timestamp"`
}

func NewStakeEvent(eventType EventType, staker, asset string, amount, totalStaked, votingPowerBps, timestamp int64) StakeEvent {
	return StakeEvent{
		EventType:      eventType,
		Staker:         staker,
		Asset:          asset,
		Amount:         amount,
		TotalStaked:    totalStaked,
		VotingPowerBps: votingPowerBps,
		Timestamp:      timestamp,
	}
}

type VoteCastEvent struct {
	EventType   EventType `json:"event_type"` // always 5
	SubjectId   string    `json:"subject_id"`
	SubjectKind string    `json:"subject_kind"` // "proposal" or "guarantee"
	Voter       string    `json:"voter"`
	Support     bool      `json:"support"`
	PowerBps    int64     `json:"power_bps"`
	Resolved    bool      `json:"resolved"`
	Timestamp   int64     `json:"timestamp"`
}

func NewVoteCastEvent(subjectId, subjectKind, voter string, support bool, powerBps int64, resolved bool, timestamp int64) VoteCastEvent {
	return VoteCastEvent{
		EventType:   VoteCastEventType,
		SubjectId:   subjectId,
		SubjectKind: subjectKind,
		Voter:       voter,
		Support:     support,
		PowerBps:    powerBps,
		Resolved:    resolved,
		Timestamp:   timestamp,
	}
}

type GuaranteeStatusEvent struct {
	EventType   EventType `json:"event_type"` // always 7
	GuaranteeId string    `json:"guarantee_id"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	Actor       string    `json:"actor"`
	Timestamp   int64     `json:"timestamp"`
}

func NewGuaranteeStatusEvent(guaranteeId, fromStatus, toStatus, actor string, timestamp int64) GuaranteeStatusEvent {
	return GuaranteeStatusEvent{
		EventType:   GuaranteeStatusEventType,
		GuaranteeId: guaranteeId,
		FromStatus:  fromStatus,
		ToStatus:    toStatus,
		Actor:       actor,
		Timestamp:   timestamp,
	}
}
