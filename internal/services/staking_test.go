package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

const (
	oneUsdt  = int64(1_000_000)
	lockYear = int64(31_536_000)
)

func TestStakeValidation(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 0, lockYear)
	require.NotNil(t, err)
	assert.Equal(t, types.ZeroAmount, err.ErrorCode)

	_, err = h.services.Stake(ctx, "alice", "USDT", 99*oneUsdt, lockYear)
	require.NotNil(t, err)
	assert.Equal(t, types.BelowMinimumStake, err.ErrorCode)

	_, err = h.services.Stake(ctx, "alice", "DOGE", 100*oneUsdt, lockYear)
	require.NotNil(t, err)
	assert.Equal(t, types.UnsupportedAsset, err.ErrorCode)

	_, err = h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, 60)
	require.NotNil(t, err)
	assert.Equal(t, types.ValidationError, err.ErrorCode)
}

func TestStakeOpensPositionAndPullsDeposit(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	position, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)

	assert.Equal(t, int64(100*oneUsdt), position.Amount)
	assert.True(t, position.Active)
	assert.Equal(t, int64(1_000_000), position.VotingPowerBps, "sole staker owns the whole pool")
	assert.False(t, position.IsFinancier, "100 USDT is below the financier threshold")

	transfer := h.ledger.lastTransfer()
	assert.Equal(t, "alice", transfer.From)
	assert.Equal(t, "platform:pool", transfer.To)
	assert.Equal(t, int64(100*oneUsdt), transfer.Amount)

	stats, statsErr := h.services.GetPoolStats(ctx)
	require.Nil(t, statsErr)
	assert.Equal(t, int64(100*oneUsdt), stats.TotalStaked)
	assert.Equal(t, int64(1), stats.ActiveProviderCount)
	assert.Equal(t, int64(1000), stats.CurrentRewardRateBps)

	assert.Equal(t, 1, h.emitter.count())
}

func TestStakeExtensionKeepsLaterLockDeadline(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)

	h.clock.Advance(time.Hour)
	position, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, 86400)
	require.Nil(t, err)

	assert.Equal(t, int64(200*oneUsdt), position.Amount)
	firstDeadline := int64(1700000000) + lockYear
	assert.Equal(t, firstDeadline, position.LockDeadline, "shorter extension must not shrink the lock")
}

func TestRewardsAccrueOverTime(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)

	// A year at 10% APR on 100 USDT accrues 10 USDT.
	h.clock.Advance(time.Duration(lockYear) * time.Second)
	view, err := h.services.GetStake(ctx, "alice", "USDT")
	require.Nil(t, err)
	assert.Equal(t, int64(10*oneUsdt), view.AccruedRewards)
}

func TestUnstakeBeforeLockDeadline(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)

	_, err = h.services.Unstake(ctx, "alice", "USDT", 50*oneUsdt)
	require.NotNil(t, err)
	assert.Equal(t, types.LockDurationNotMet, err.ErrorCode)
	assert.Equal(t, http.StatusForbidden, err.StatusCode)
}

func TestFullUnstakePaysRewardsAndDeactivates(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)

	h.clock.Advance(time.Duration(lockYear) * time.Second)
	result, err := h.services.Unstake(ctx, "alice", "USDT", 100*oneUsdt)
	require.Nil(t, err)

	assert.Equal(t, int64(100*oneUsdt), result.AmountPaid)
	assert.Equal(t, int64(10*oneUsdt), result.RewardsPaid)

	transfer := h.ledger.lastTransfer()
	assert.Equal(t, "platform:pool", transfer.From)
	assert.Equal(t, "alice", transfer.To)
	assert.Equal(t, int64(110*oneUsdt), transfer.Amount)

	view, err := h.services.GetStake(ctx, "alice", "USDT")
	require.Nil(t, err)
	assert.False(t, view.Active)
	assert.Equal(t, int64(0), view.VotingPowerBps)

	stats, statsErr := h.services.GetPoolStats(ctx)
	require.Nil(t, statsErr)
	assert.Equal(t, int64(0), stats.TotalStaked)
	assert.Equal(t, int64(0), stats.ActiveProviderCount)
}

func TestUnstakeWithoutActivePosition(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Unstake(ctx, "ghost", "USDT", oneUsdt)
	require.NotNil(t, err)
	assert.Equal(t, types.NoActiveStake, err.ErrorCode)
}

func TestEmergencyWithdrawKeepsPenaltyAndForfeitsRewards(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 1000*oneUsdt, lockYear)
	require.Nil(t, err)

	h.clock.Advance(30 * 24 * time.Hour)
	result, err := h.services.EmergencyWithdraw(ctx, "alice", "USDT")
	require.Nil(t, err)

	// 15% penalty on 1000 USDT.
	assert.Equal(t, int64(150*oneUsdt), result.PenaltyAmount)
	assert.Equal(t, int64(850*oneUsdt), result.AmountPaid)
	assert.Equal(t, int64(0), result.RewardsPaid)

	// Payout to the staker, then the penalty routed to the treasury.
	require.GreaterOrEqual(t, len(h.ledger.transfers), 3)
	payout := h.ledger.transfers[len(h.ledger.transfers)-2]
	assert.Equal(t, "alice", payout.To)
	assert.Equal(t, int64(850*oneUsdt), payout.Amount)
	penalty := h.ledger.lastTransfer()
	assert.Equal(t, "platform:treasury", penalty.To)
	assert.Equal(t, int64(150*oneUsdt), penalty.Amount)

	view, err := h.services.GetStake(ctx, "alice", "USDT")
	require.Nil(t, err)
	assert.False(t, view.Active)
	assert.Equal(t, int64(0), view.AccruedRewards)
}

func TestClaimRewardsWithNothingAccrued(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)

	_, err = h.services.ClaimRewards(ctx, "alice", "USDT")
	require.NotNil(t, err)
	assert.Equal(t, types.NoRewardsToClaim, err.ErrorCode)
}

func TestClaimRewardsPaysOutAndResets(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)

	h.clock.Advance(time.Duration(lockYear) * time.Second)
	result, err := h.services.ClaimRewards(ctx, "alice", "USDT")
	require.Nil(t, err)
	assert.Equal(t, int64(10*oneUsdt), result.RewardsPaid)

	view, err := h.services.GetStake(ctx, "alice", "USDT")
	require.Nil(t, err)
	assert.Equal(t, int64(0), view.AccruedRewards)
	assert.Equal(t, int64(100*oneUsdt), view.Amount, "principal untouched by the claim")
}

func TestVotingPowerReflectsCurrentPoolShares(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 1000*oneUsdt, lockYear)
	require.Nil(t, err)
	_, err = h.services.Stake(ctx, "bob", "USDC", 3000*oneUsdt, lockYear)
	require.Nil(t, err)

	aliceView, err := h.services.GetStake(ctx, "alice", "USDT")
	require.Nil(t, err)
	bobView, err := h.services.GetStake(ctx, "bob", "USDC")
	require.Nil(t, err)

	assert.Equal(t, int64(250_000), aliceView.VotingPowerBps)
	assert.Equal(t, int64(750_000), bobView.VotingPowerBps)
}

func TestViewsAreIdempotentWithoutMutation(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err)
	h.clock.Advance(30 * 24 * time.Hour)

	firstView, err := h.services.GetStake(ctx, "alice", "USDT")
	require.Nil(t, err)
	secondView, err := h.services.GetStake(ctx, "alice", "USDT")
	require.Nil(t, err)
	assert.Equal(t, firstView, secondView)

	firstStats, statsErr := h.services.GetPoolStats(ctx)
	require.Nil(t, statsErr)
	secondStats, statsErr := h.services.GetPoolStats(ctx)
	require.Nil(t, statsErr)
	assert.Equal(t, firstStats, secondStats)

	firstConfig, cfgErr := h.services.GetStakingConfig(ctx)
	require.Nil(t, cfgErr)
	secondConfig, cfgErr := h.services.GetStakingConfig(ctx)
	require.Nil(t, cfgErr)
	assert.Equal(t, firstConfig, secondConfig)
}

func TestFullUnstakeClearsUsdDust(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	// 18-decimal asset: 1.5 micro-USD per stake truncates to 1 in the USD
	// equivalent, so the two deposits record 2 while the combined amount
	// normalizes to 3.
	oneAndAHalfMicroDai := int64(1_500_000_000_000)
	_, err := h.services.Stake(ctx, "alice", "DAI", oneAndAHalfMicroDai, lockYear)
	require.Nil(t, err)
	h.clock.Advance(time.Hour)
	_, err = h.services.Stake(ctx, "alice", "DAI", oneAndAHalfMicroDai, lockYear)
	require.Nil(t, err)

	h.clock.Advance(time.Duration(lockYear)*time.Second + 2*time.Hour)
	_, err = h.services.Unstake(ctx, "alice", "DAI", 2*oneAndAHalfMicroDai)
	require.Nil(t, err)

	view, err := h.services.GetStake(ctx, "alice", "DAI")
	require.Nil(t, err)
	assert.False(t, view.Active)
	assert.Equal(t, int64(0), view.UsdEquivalent)

	stats, statsErr := h.services.GetPoolStats(ctx)
	require.Nil(t, statsErr)
	assert.Equal(t, int64(0), stats.TotalStaked)
	assert.Equal(t, int64(0), stats.TotalStakedUsd, "no residual USD equivalent after full exit")
}

func TestVotingPowerRebalancesAfterEmergencyExit(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	for _, staker := range []string{"alice", "bob", "carol"} {
		_, err := h.services.Stake(ctx, staker, "USDT", 1000*oneUsdt, lockYear)
		require.Nil(t, err)
	}

	_, err := h.services.EmergencyWithdraw(ctx, "alice", "USDT")
	require.Nil(t, err)

	bobView, err := h.services.GetStake(ctx, "bob", "USDT")
	require.Nil(t, err)
	carolView, err := h.services.GetStake(ctx, "carol", "USDT")
	require.Nil(t, err)

	assert.Equal(t, int64(500_000), bobView.VotingPowerBps)
	assert.Equal(t, int64(500_000), carolView.VotingPowerBps)

	stats, statsErr := h.services.GetPoolStats(ctx)
	require.Nil(t, statsErr)
	assert.Equal(t, int64(2), stats.ActiveProviderCount)
	assert.Equal(t, int64(2), stats.FinancierCount, "both remaining stakers sit at the financier threshold")
}

func TestRewardRateDecaysWithPoolGrowth(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	// 5000 whole USD staked crosses five reduction thousands: 1000 - 5*10.
	_, err := h.services.Stake(ctx, "alice", "USDT", 5000*oneUsdt, lockYear)
	require.Nil(t, err)

	stats, statsErr := h.services.GetPoolStats(ctx)
	require.Nil(t, statsErr)
	assert.Equal(t, int64(950), stats.CurrentRewardRateBps)
}

func TestFailedPublishFallsBackToOutbox(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()
	h.emitter.fail = true

	_, err := h.services.Stake(ctx, "alice", "USDT", 100*oneUsdt, lockYear)
	require.Nil(t, err, "publish failure must not fail the stake")

	events, dbErr := h.db.FindUnpublishedEvents(ctx)
	require.NoError(t, dbErr)
	require.Len(t, events, 1)

	h.emitter.fail = false
	require.NoError(t, h.services.ReplayUnpublishedEvents(ctx))

	events, dbErr = h.db.FindUnpublishedEvents(ctx)
	require.NoError(t, dbErr)
	assert.Empty(t, events)
	assert.Equal(t, 1, h.emitter.count())
}
