package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

func stakeFinancier(t *testing.T, h *testHarness, account string, usdt int64) {
	t.Helper()
	_, err := h.services.Stake(context.Background(), account, "USDT", usdt*oneUsdt, lockYear)
	require.Nil(t, err)
}

func TestCreateProposalRequiresFinancier(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.CreateProposal(ctx, "nobody", "upgrade fees", "lower the issuance fee")
	require.NotNil(t, err)
	assert.Equal(t, types.NotFinancier, err.ErrorCode)

	// Below the financier threshold even with an active stake.
	stakeFinancier(t, h, "smallfish", 500)
	_, err = h.services.CreateProposal(ctx, "smallfish", "upgrade fees", "lower the issuance fee")
	require.NotNil(t, err)
	assert.Equal(t, types.NotFinancier, err.ErrorCode)
}

func TestProposalResolvesOnThresholdVote(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "alice", 1000)
	stakeFinancier(t, h, "bob", 3000)

	proposal, err := h.services.CreateProposal(ctx, "alice", "upgrade fees", "lower the issuance fee")
	require.Nil(t, err)
	assert.False(t, proposal.Resolved)

	// Bob alone holds 75% of the pool, above the 50% share threshold.
	proposal, err = h.services.VoteOnProposal(ctx, proposal.Id, "bob", true)
	require.Nil(t, err)
	assert.True(t, proposal.Resolved)
	assert.True(t, proposal.Approved)
	assert.Equal(t, int64(750_000), proposal.VotesForBps)
}

func TestProposalRejectedByMajorityAgainst(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "alice", 1000)
	stakeFinancier(t, h, "bob", 3000)

	proposal, err := h.services.CreateProposal(ctx, "alice", "upgrade fees", "")
	require.Nil(t, err)

	proposal, err = h.services.VoteOnProposal(ctx, proposal.Id, "bob", false)
	require.Nil(t, err)
	assert.False(t, proposal.Resolved, "a losing tally never resolves early")
	assert.Equal(t, int64(750_000), proposal.VotesAgainstBps)

	// Alice's 25% for-vote cannot reach the 50% share threshold.
	proposal, err = h.services.VoteOnProposal(ctx, proposal.Id, "alice", true)
	require.Nil(t, err)
	assert.False(t, proposal.Resolved)
	assert.False(t, proposal.Approved)
}

func TestDoubleVoteRejected(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "alice", 1000)
	stakeFinancier(t, h, "bob", 3000)

	proposal, err := h.services.CreateProposal(ctx, "alice", "upgrade fees", "")
	require.Nil(t, err)

	_, err = h.services.VoteOnProposal(ctx, proposal.Id, "alice", true)
	require.Nil(t, err)
	_, err = h.services.VoteOnProposal(ctx, proposal.Id, "alice", false)
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyVoted, err.ErrorCode)
}

func TestVoteAfterDeadlineRejected(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "alice", 2000)
	proposal, err := h.services.CreateProposal(ctx, "alice", "upgrade fees", "")
	require.Nil(t, err)

	h.clock.Advance(8 * 24 * time.Hour)
	_, err = h.services.VoteOnProposal(ctx, proposal.Id, "alice", true)
	require.NotNil(t, err)
	assert.Equal(t, types.VotingPeriodEnded, err.ErrorCode)
}

func TestVoteOnResolvedProposalRejected(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "alice", 1000)
	stakeFinancier(t, h, "bob", 3000)

	proposal, err := h.services.CreateProposal(ctx, "alice", "upgrade fees", "")
	require.Nil(t, err)
	_, err = h.services.VoteOnProposal(ctx, proposal.Id, "bob", true)
	require.Nil(t, err)

	_, err = h.services.VoteOnProposal(ctx, proposal.Id, "alice", true)
	require.NotNil(t, err)
	assert.Equal(t, types.SubjectAlreadyResolved, err.ErrorCode)
}

func TestExpireProposal(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "alice", 2000)
	proposal, err := h.services.CreateProposal(ctx, "alice", "upgrade fees", "")
	require.Nil(t, err)

	_, err = h.services.ExpireProposal(ctx, proposal.Id)
	require.NotNil(t, err)
	assert.Equal(t, types.ValidationError, err.ErrorCode)

	h.clock.Advance(8 * 24 * time.Hour)
	proposal, err = h.services.ExpireProposal(ctx, proposal.Id)
	require.Nil(t, err)
	assert.True(t, proposal.Resolved)
	assert.False(t, proposal.Approved)

	_, err = h.services.ExpireProposal(ctx, proposal.Id)
	require.NotNil(t, err)
	assert.Equal(t, types.SubjectAlreadyResolved, err.ErrorCode)
}

func TestVotePowerEvaluatedLiveAtCastTime(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "alice", 1000)
	proposal, err := h.services.CreateProposal(ctx, "alice", "upgrade fees", "")
	require.Nil(t, err)

	// Bob joins after the proposal opened; his power still counts in full
	// because there is no snapshot at proposal creation.
	stakeFinancier(t, h, "bob", 1000)
	proposal, err = h.services.VoteOnProposal(ctx, proposal.Id, "bob", true)
	require.Nil(t, err)
	assert.Equal(t, int64(500_000), proposal.VotesForBps)
	assert.True(t, proposal.Resolved)
}
