package db

import (
	"context"

	"github.com/blockfinax/guarantee-api-service/internal/db/model"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type DBClient interface {
	Ping(ctx context.Context) error

	// Stake ledger
	GetOrCreatePoolState(ctx context.Context, initialRateBps, now int64) (*model.PoolStateDocument, error)
	GetStakePosition(ctx context.Context, staker, asset string) (*model.StakePositionDocument, error)
	// SaveStakeState persists the pool accumulator and the mutated position in
	// one transaction so voting power and totals never diverge.
	SaveStakeState(ctx context.Context, pool *model.PoolStateDocument, position *model.StakePositionDocument) error
	FindActiveStakePositions(ctx context.Context) ([]model.StakePositionDocument, error)
	FindStakePositionsByStaker(ctx context.Context, staker string) ([]model.StakePositionDocument, error)

	// Proposals
	InsertProposal(ctx context.Context, proposal *model.ProposalDocument) error
	FindProposalById(ctx context.Context, id string) (*model.ProposalDocument, error)
	UpdateProposal(ctx context.Context, proposal *model.ProposalDocument) error
	FindProposals(ctx context.Context, paginationToken string) (*DbResultMap[model.ProposalDocument], error)

	// Guarantees
	InsertGuarantee(ctx context.Context, guarantee *model.GuaranteeDocument) error
	FindGuaranteeById(ctx context.Context, id string) (*model.GuaranteeDocument, error)
	// TransitionGuarantee replaces the guarantee document only when its stored
	// status is one of the eligible previous states; returns NotFoundError
	// otherwise, leaving the record untouched.
	TransitionGuarantee(ctx context.Context, guarantee *model.GuaranteeDocument, eligiblePreviousStates []types.GuaranteeStatus) error
	// FindGuaranteesByParty lists guarantees where the account is buyer, seller
	// or logistics partner, optionally narrowed to one status ("" means all).
	FindGuaranteesByParty(ctx context.Context, party string, status types.GuaranteeStatus, paginationToken string) (*DbResultMap[model.GuaranteeDocument], error)

	// Logistics partner allow-list
	SaveAuthorizedPartner(ctx context.Context, account, authorizedBy string, now int64) error
	DeleteAuthorizedPartner(ctx context.Context, account string) error
	IsAuthorizedPartner(ctx context.Context, account string) (bool, error)
	FindAuthorizedPartners(ctx context.Context) ([]model.AuthorizedPartnerDocument, error)

	// Event outbox
	SaveUnpublishedEvent(ctx context.Context, id string, eventType int, body string, now int64) error
	FindUnpublishedEvents(ctx context.Context) ([]model.UnpublishedEventDocument, error)
	DeleteUnpublishedEvent(ctx context.Context, id string) error
}
