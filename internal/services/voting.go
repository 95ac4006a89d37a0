package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/blockfinax/guarantee-api-service/internal/db"
	"github.com/blockfinax/guarantee-api-service/internal/db/model"
	"github.com/blockfinax/guarantee-api-service/internal/pool"
	"github.com/blockfinax/guarantee-api-service/internal/queue/client"
	"github.com/blockfinax/guarantee-api-service/internal/types"
	"github.com/blockfinax/guarantee-api-service/internal/utils"
)

const (
	subjectKindProposal  = "proposal"
	subjectKindGuarantee = "guarantee"
)

type ProposalPublic struct {
	Id              string `json:"id"`
	Proposer        string `json:"proposer"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	VotesForBps     int64  `json:"votes_for_bps"`
	VotesAgainstBps int64  `json:"votes_against_bps"`
	VotingDeadline  int64  `json:"voting_deadline"`
	Resolved        bool   `json:"resolved"`
	Approved        bool   `json:"approved"`
	VoterCount      int    `json:"voter_count"`
	CreatedAt       int64  `json:"created_at"`
}

// financierPower returns the voter's live voting power in power bps, summed
// over every active position the account holds. Power is always evaluated
// against the current pool total at cast time, never a snapshot taken when
// the subject opened.
func (s *Services) financierPower(ctx context.Context, voter string) (int64, *types.Error) {
	poolState, poolErr := s.loadPoolState(ctx)
	if poolErr != nil {
		return 0, poolErr
	}

	positions, err := s.DbClient.FindStakePositionsByStaker(ctx, voter)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching voter stake positions")
		return 0, types.NewInternalServiceError(err)
	}

	var usdSum int64
	for _, position := range positions {
		usdSum += position.UsdEquivalent
	}
	if usdSum < s.params.Staking.FinancierThreshold {
		return 0, types.NewErrorWithMsg(
			http.StatusForbidden, types.NotFinancier,
			"account stake is below the financier threshold",
		)
	}

	power := pool.VotingPowerBps(usdSum, poolState.TotalStakedUsd)
	if power == 0 {
		return 0, types.NewErrorWithMsg(
			http.StatusForbidden, types.NotFinancier, "account holds no voting power",
		)
	}
	return power, nil
}

// CreateProposal opens a governance proposal. Only financiers may propose.
func (s *Services) CreateProposal(
	ctx context.Context, proposer, title, description string,
) (*ProposalPublic, *types.Error) {
	if title == "" {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ValidationError, "proposal title cannot be empty")
	}
	if _, powerErr := s.financierPower(ctx, proposer); powerErr != nil {
		return nil, powerErr
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now().Unix()
	proposal := &model.ProposalDocument{
		Id:             uuid.NewString(),
		Proposer:       proposer,
		Title:          title,
		Description:    description,
		VotingDeadline: now + s.params.Voting.ProposalVotingDuration,
		Voters:         []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.DbClient.InsertProposal(ctx, proposal); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while inserting proposal")
		return nil, types.NewInternalServiceError(err)
	}
	return toProposalPublic(proposal), nil
}

// VoteOnProposal casts one weighted vote. The tally locks in the voter's power
// at cast time; resolution is checked synchronously so the approving vote is
// the one that resolves the proposal.
func (s *Services) VoteOnProposal(
	ctx context.Context, proposalId, voter string, support bool,
) (*ProposalPublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	proposal, findErr := s.findProposal(ctx, proposalId)
	if findErr != nil {
		return nil, findErr
	}

	now := s.now().Unix()
	if proposal.Resolved {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.SubjectAlreadyResolved, "proposal has already been resolved",
		)
	}
	if now > proposal.VotingDeadline {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.VotingPeriodEnded, "voting period for this proposal has ended",
		)
	}
	if utils.Contains(proposal.Voters, voter) {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.AlreadyVoted, "account has already voted on this proposal",
		)
	}

	power, powerErr := s.financierPower(ctx, voter)
	if powerErr != nil {
		return nil, powerErr
	}

	if support {
		proposal.VotesForBps += power
	} else {
		proposal.VotesAgainstBps += power
	}
	proposal.Voters = append(proposal.Voters, voter)

	// Proposals resolve on the share of cast votes: for / (for + against).
	totalCast := proposal.VotesForBps + proposal.VotesAgainstBps
	if totalCast > 0 {
		ratio := proposal.VotesForBps * pool.PowerBase / totalCast
		if ratio >= s.params.Voting.ProposalApprovalThresholdBps {
			proposal.Resolved = true
			proposal.Approved = true
		}
	}
	proposal.UpdatedAt = now

	if err := s.DbClient.UpdateProposal(ctx, proposal); err != nil {
		var notFoundErr *db.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, types.NewErrorWithMsg(
				http.StatusForbidden, types.SubjectAlreadyResolved, "proposal has already been resolved",
			)
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while updating proposal tally")
		return nil, types.NewInternalServiceError(err)
	}

	s.emitActivityEvent(ctx, client.VoteCastEventType, client.NewVoteCastEvent(
		proposal.Id, subjectKindProposal, voter, support, power, proposal.Resolved, now,
	))
	if proposal.Resolved {
		s.emitActivityEvent(ctx, client.ProposalResolvedEventType, client.NewVoteCastEvent(
			proposal.Id, subjectKindProposal, voter, support, power, true, now,
		))
	}
	return toProposalPublic(proposal), nil
}

// ExpireProposal closes out a proposal whose deadline passed without reaching
// the approval threshold. Anyone may trigger the close-out.
func (s *Services) ExpireProposal(ctx context.Context, proposalId string) (*ProposalPublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	proposal, findErr := s.findProposal(ctx, proposalId)
	if findErr != nil {
		return nil, findErr
	}

	now := s.now().Unix()
	if proposal.Resolved {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.SubjectAlreadyResolved, "proposal has already been resolved",
		)
	}
	if now <= proposal.VotingDeadline {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "voting period for this proposal is still open",
		)
	}

	proposal.Resolved = true
	proposal.Approved = false
	proposal.UpdatedAt = now

	if err := s.DbClient.UpdateProposal(ctx, proposal); err != nil {
		var notFoundErr *db.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, types.NewErrorWithMsg(
				http.StatusForbidden, types.SubjectAlreadyResolved, "proposal has already been resolved",
			)
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while expiring proposal")
		return nil, types.NewInternalServiceError(err)
	}

	s.emitActivityEvent(ctx, client.ProposalResolvedEventType, client.NewVoteCastEvent(
		proposal.Id, subjectKindProposal, "", false, 0, true, now,
	))
	return toProposalPublic(proposal), nil
}

func (s *Services) GetProposal(ctx context.Context, proposalId string) (*ProposalPublic, *types.Error) {
	proposal, findErr := s.findProposal(ctx, proposalId)
	if findErr != nil {
		return nil, findErr
	}
	return toProposalPublic(proposal), nil
}

func (s *Services) ListProposals(
	ctx context.Context, paginationToken string,
) ([]ProposalPublic, string, *types.Error) {
	resultMap, err := s.DbClient.FindProposals(ctx, paginationToken)
	if err != nil {
		if db.IsInvalidPaginationTokenError(err) {
			log.Ctx(ctx).Warn().Err(err).Msg("invalid pagination token while fetching proposals")
			return nil, "", types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching proposals")
		return nil, "", types.NewInternalServiceError(err)
	}

	proposals := make([]ProposalPublic, 0, len(resultMap.Data))
	for i := range resultMap.Data {
		proposals = append(proposals, *toProposalPublic(&resultMap.Data[i]))
	}
	return proposals, resultMap.PaginationToken, nil
}

func (s *Services) findProposal(ctx context.Context, proposalId string) (*model.ProposalDocument, *types.Error) {
	proposal, err := s.DbClient.FindProposalById(ctx, proposalId)
	if err != nil {
		var notFoundErr *db.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "proposal not found")
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching proposal")
		return nil, types.NewInternalServiceError(err)
	}
	return proposal, nil
}

func toProposalPublic(proposal *model.ProposalDocument) *ProposalPublic {
	return &ProposalPublic{
		Id:              proposal.Id,
		Proposer:        proposal.Proposer,
		Title:           proposal.Title,
		Description:     proposal.Description,
		VotesForBps:     proposal.VotesForBps,
		VotesAgainstBps: proposal.VotesAgainstBps,
		VotingDeadline:  proposal.VotingDeadline,
		Resolved:        proposal.Resolved,
		Approved:        proposal.Approved,
		VoterCount:      len(proposal.Voters),
		CreatedAt:       proposal.CreatedAt,
	}
}
