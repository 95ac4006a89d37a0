package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/blockfinax/guarantee-api-service/internal/clients"
	"github.com/blockfinax/guarantee-api-service/internal/clients/assetledger"
	"github.com/blockfinax/guarantee-api-service/internal/config"
	"github.com/blockfinax/guarantee-api-service/internal/db"
	"github.com/blockfinax/guarantee-api-service/internal/db/model"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

// mockDbClient is an in-memory DBClient. Transitions and updates mirror the
// conditional-write semantics of the mongo implementation.
type mockDbClient struct {
	mu sync.Mutex

	poolState  *model.PoolStateDocument
	positions  map[string]*model.StakePositionDocument
	proposals  map[string]*model.ProposalDocument
	guarantees map[string]*model.GuaranteeDocument
	partners   map[string]*model.AuthorizedPartnerDocument
	outbox     map[string]*model.UnpublishedEventDocument
}

func newMockDbClient() *mockDbClient {
	return &mockDbClient{
		positions:  make(map[string]*model.StakePositionDocument),
		proposals:  make(map[string]*model.ProposalDocument),
		guarantees: make(map[string]*model.GuaranteeDocument),
		partners:   make(map[string]*model.AuthorizedPartnerDocument),
		outbox:     make(map[string]*model.UnpublishedEventDocument),
	}
}

func (m *mockDbClient) Ping(ctx context.Context) error { return nil }

func (m *mockDbClient) GetOrCreatePoolState(ctx context.Context, initialRateBps, now int64) (*model.PoolStateDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.poolState == nil {
		m.poolState = model.NewPoolStateDocument(initialRateBps, now)
	}
	copied := *m.poolState
	return &copied, nil
}

func (m *mockDbClient) GetStakePosition(ctx context.Context, staker, asset string) (*model.StakePositionDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	position, ok := m.positions[model.StakePositionId(staker, asset)]
	if !ok {
		return nil, &db.NotFoundError{Key: model.StakePositionId(staker, asset), Message: "Stake position not found"}
	}
	copied := *position
	return &copied, nil
}

func (m *mockDbClient) SaveStakeState(ctx context.Context, pool *model.PoolStateDocument, position *model.StakePositionDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	poolCopy := *pool
	positionCopy := *position
	m.poolState = &poolCopy
	m.positions[position.Id] = &positionCopy
	return nil
}

func (m *mockDbClient) FindActiveStakePositions(ctx context.Context) ([]model.StakePositionDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.StakePositionDocument
	for _, position := range m.positions {
		if position.Active {
			result = append(result, *position)
		}
	}
	return result, nil
}

func (m *mockDbClient) FindStakePositionsByStaker(ctx context.Context, staker string) ([]model.StakePositionDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.StakePositionDocument
	for _, position := range m.positions {
		if position.Staker == staker && position.Active {
			result = append(result, *position)
		}
	}
	return result, nil
}

func (m *mockDbClient) InsertProposal(ctx context.Context, proposal *model.ProposalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.proposals[proposal.Id]; ok {
		return &db.DuplicateKeyError{Key: proposal.Id, Message: "proposal already exists"}
	}
	copied := *proposal
	m.proposals[proposal.Id] = &copied
	return nil
}

func (m *mockDbClient) FindProposalById(ctx context.Context, id string) (*model.ProposalDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	proposal, ok := m.proposals[id]
	if !ok {
		return nil, &db.NotFoundError{Key: id, Message: "Proposal not found"}
	}
	copied := *proposal
	return &copied, nil
}

func (m *mockDbClient) UpdateProposal(ctx context.Context, proposal *model.ProposalDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.proposals[proposal.Id]
	if !ok || stored.Resolved {
		return &db.NotFoundError{Key: proposal.Id, Message: "Proposal not found or already resolved"}
	}
	copied := *proposal
	m.proposals[proposal.Id] = &copied
	return nil
}

func (m *mockDbClient) FindProposals(ctx context.Context, paginationToken string) (*db.DbResultMap[model.ProposalDocument], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.ProposalDocument
	for _, proposal := range m.proposals {
		result = append(result, *proposal)
	}
	return &db.DbResultMap[model.ProposalDocument]{Data: result}, nil
}

func (m *mockDbClient) InsertGuarantee(ctx context.Context, guarantee *model.GuaranteeDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.guarantees[guarantee.Id]; ok {
		return &db.DuplicateKeyError{Key: guarantee.Id, Message: "guarantee already exists"}
	}
	copied := *guarantee
	m.guarantees[guarantee.Id] = &copied
	return nil
}

func (m *mockDbClient) FindGuaranteeById(ctx context.Context, id string) (*model.GuaranteeDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	guarantee, ok := m.guarantees[id]
	if !ok {
		return nil, &db.NotFoundError{Key: id, Message: "Guarantee not found"}
	}
	copied := *guarantee
	return &copied, nil
}

func (m *mockDbClient) TransitionGuarantee(ctx context.Context, guarantee *model.GuaranteeDocument, eligiblePreviousStates []types.GuaranteeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.guarantees[guarantee.Id]
	if !ok {
		return &db.NotFoundError{Key: guarantee.Id, Message: "Guarantee not found"}
	}
	eligible := false
	for _, state := range eligiblePreviousStates {
		if stored.Status == state {
			eligible = true
			break
		}
	}
	if !eligible {
		return &db.NotFoundError{Key: guarantee.Id, Message: "Guarantee not in eligible state"}
	}
	copied := *guarantee
	m.guarantees[guarantee.Id] = &copied
	return nil
}

func (m *mockDbClient) FindGuaranteesByParty(ctx context.Context, party string, status types.GuaranteeStatus, paginationToken string) (*db.DbResultMap[model.GuaranteeDocument], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.GuaranteeDocument
	for _, guarantee := range m.guarantees {
		if guarantee.Buyer != party && guarantee.Seller != party && guarantee.LogisticsPartner != party {
			continue
		}
		if status != "" && guarantee.Status != status {
			continue
		}
		result = append(result, *guarantee)
	}
	return &db.DbResultMap[model.GuaranteeDocument]{Data: result}, nil
}

func (m *mockDbClient) SaveAuthorizedPartner(ctx context.Context, account, authorizedBy string, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partners[account]; ok {
		return nil
	}
	m.partners[account] = model.NewAuthorizedPartnerDocument(account, authorizedBy, now)
	return nil
}

func (m *mockDbClient) DeleteAuthorizedPartner(ctx context.Context, account string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partners[account]; !ok {
		return &db.NotFoundError{Key: account, Message: "Partner not found"}
	}
	delete(m.partners, account)
	return nil
}

func (m *mockDbClient) IsAuthorizedPartner(ctx context.Context, account string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.partners[account]
	return ok, nil
}

func (m *mockDbClient) FindAuthorizedPartners(ctx context.Context) ([]model.AuthorizedPartnerDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AuthorizedPartnerDocument
	for _, partner := range m.partners {
		result = append(result, *partner)
	}
	return result, nil
}

func (m *mockDbClient) SaveUnpublishedEvent(ctx context.Context, id string, eventType int, body string, now int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outbox[id] = model.NewUnpublishedEventDocument(id, eventType, body, now)
	return nil
}

func (m *mockDbClient) FindUnpublishedEvents(ctx context.Context) ([]model.UnpublishedEventDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.UnpublishedEventDocument
	for _, event := range m.outbox {
		result = append(result, *event)
	}
	return result, nil
}

func (m *mockDbClient) DeleteUnpublishedEvent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.outbox, id)
	return nil
}

// recordedTransfer is one call observed by the fake asset ledger.
type recordedTransfer struct {
	From      string
	To        string
	Asset     string
	Amount    int64
	Reference string
}

// fakeAssetLedger records transfers instead of calling the routing layer.
type fakeAssetLedger struct {
	mu        sync.Mutex
	transfers []recordedTransfer
	failNext  bool
}

func (f *fakeAssetLedger) GetBaseURL() string            { return "http://asset-ledger.local" }
func (f *fakeAssetLedger) GetDefaultRequestTimeout() int { return 1000 }
func (f *fakeAssetLedger) GetHttpClient() *http.Client   { return &http.Client{} }
func (f *fakeAssetLedger) PoolAccount() string           { return "platform:pool" }
func (f *fakeAssetLedger) EscrowAccount() string         { return "platform:escrow" }

func (f *fakeAssetLedger) Transfer(ctx context.Context, from, to, asset string, amount int64, reference string) *types.Error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return types.NewErrorWithMsg(http.StatusInternalServerError, types.InternalServiceError, "transfer failed")
	}
	f.transfers = append(f.transfers, recordedTransfer{
		From: from, To: to, Asset: asset, Amount: amount, Reference: reference,
	})
	return nil
}

func (f *fakeAssetLedger) lastTransfer() recordedTransfer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.transfers) == 0 {
		return recordedTransfer{}
	}
	return f.transfers[len(f.transfers)-1]
}

// fakeEmitter collects published event bodies, optionally failing every
// publish to exercise the outbox fallback.
type fakeEmitter struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (f *fakeEmitter) PublishActivityEvent(ctx context.Context, messageBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return fmt.Errorf("broker unavailable")
	}
	f.messages = append(f.messages, messageBody)
	return nil
}

func (f *fakeEmitter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

type testHarness struct {
	services *Services
	db       *mockDbClient
	ledger   *fakeAssetLedger
	emitter  *fakeEmitter
	clock    *testClock
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func defaultTestParams() *types.ProtocolParams {
	return &types.ProtocolParams{
		Staking: types.StakingParams{
			InitialAprBps:               1000,
			MinLockDuration:             86400,
			AprReductionPerThousand:     10,
			EmergencyWithdrawPenaltyBps: 1500,
			MinimumStake:                100_000_000,
			FinancierThreshold:          1_000_000_000,
		},
		Voting: types.VotingParams{
			ProposalApprovalThresholdBps:  500_000,
			GuaranteeApprovalThresholdBps: 500_000,
			ProposalVotingDuration:        604800,
			GuaranteeVotingDuration:       259200,
		},
		TreasuryAccount: "platform:treasury",
	}
}

func defaultTestConfig() *config.Config {
	cfg := &config.Config{
		Assets: config.AssetsConfig{
			Supported: []config.AssetConfig{
				{Symbol: "USDT", Decimals: 6, UsdPegged: true},
				{Symbol: "USDC", Decimals: 6, UsdPegged: true},
				{Symbol: "DAI", Decimals: 18, UsdPegged: true},
			},
		},
	}
	if err := cfg.Assets.Validate(); err != nil {
		panic(err)
	}
	return cfg
}

func newTestHarness() *testHarness {
	mockDb := newMockDbClient()
	ledger := &fakeAssetLedger{}
	emitter := &fakeEmitter{}
	clock := &testClock{now: time.Unix(1700000000, 0)}

	services := &Services{
		DbClient: mockDb,
		Clients:  &clients.Clients{AssetLedger: ledger},
		cfg:      defaultTestConfig(),
		params:   defaultTestParams(),
		emitter:  emitter,
		now:      clock.Now,
	}

	return &testHarness{
		services: services,
		db:       mockDb,
		ledger:   ledger,
		emitter:  emitter,
		clock:    clock,
	}
}

var _ assetledger.AssetLedgerClientInterface = (*fakeAssetLedger)(nil)
var _ db.DBClient = (*mockDbClient)(nil)
