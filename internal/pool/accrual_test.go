package pool

import (
	"testing"

	"github.com/blockfinax/guarantee-api-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStakingParams() types.StakingParams {
	return types.StakingParams{
		InitialAprBps:               1000, // 10% APR
		MinLockDuration:             86400,
		AprReductionPerThousand:     10,
		EmergencyWithdrawPenaltyBps: 1500, // 15%
		MinimumStake:                100_000_000,
		FinancierThreshold:          500_000_000,
	}
}

func TestRewardRateDecaysAsPoolGrows(t *testing.T) {
	cfg := testStakingParams()

	// Empty pool earns the full initial APR.
	assert.Equal(t, int64(1000), RewardRateBps(cfg, 0))

	// 1,000 whole USD staked reduces the rate by one step.
	oneThousandUsd := int64(1000) * PowerBase
	assert.Equal(t, int64(990), RewardRateBps(cfg, oneThousandUsd))

	// 50,000 USD -> 50 steps.
	assert.Equal(t, int64(500), RewardRateBps(cfg, 50*oneThousandUsd))

	// The rate floors at zero rather than going negative.
	assert.Equal(t, int64(0), RewardRateBps(cfg, 1_000_000*oneThousandUsd))
}

func TestAdvanceIndexIsMonotonic(t *testing.T) {
	index := int64(0)
	for i := 0; i < 10; i++ {
		next := AdvanceIndex(index, 1000, 3600)
		require.Greater(t, next, index)
		index = next
	}

	// Zero rate or zero elapsed time leaves the index untouched.
	assert.Equal(t, index, AdvanceIndex(index, 0, 3600))
	assert.Equal(t, index, AdvanceIndex(index, 1000, 0))
}

func TestAccruedRewardsForConstantStake(t *testing.T) {
	// 10% APR over a full year on 1,000 units should accrue ~100 units.
	index := AdvanceIndex(0, 1000, SecondsPerYear)
	accrued := AccruedDelta(1000_000000, index, 0)
	assert.InDelta(t, 100_000000, accrued, 1_000, "one year at 10%% APR accrues ~10%%")

	// Accrual grows monotonically with elapsed time.
	prev := int64(0)
	idx := int64(0)
	for day := 1; day <= 30; day++ {
		idx = AdvanceIndex(idx, 1000, 86400)
		accrued := AccruedDelta(1000_000000, idx, 0)
		require.Greater(t, accrued, prev)
		prev = accrued
	}
}

func TestAccrualAcrossRateChange(t *testing.T) {
	const amount = int64(10_000_000000)

	// Half a year at 10%, then half a year at 5%: the rate change must only
	// affect rewards accrued after it.
	index := AdvanceIndex(0, 1000, SecondsPerYear/2)
	firstHalf := AccruedDelta(amount, index, 0)

	index = AdvanceIndex(index, 500, SecondsPerYear/2)
	total := AccruedDelta(amount, index, 0)
	secondHalf := total - firstHalf

	assert.InDelta(t, float64(firstHalf)/2, float64(secondHalf), float64(firstHalf)/100,
		"second half at half the rate accrues half the rewards")

	// The same period priced naively at either single rate would misprice it.
	flatHigh := AccruedDelta(amount, AdvanceIndex(0, 1000, SecondsPerYear), 0)
	assert.Less(t, total, flatHigh)
	flatLow := AccruedDelta(amount, AdvanceIndex(0, 500, SecondsPerYear), 0)
	assert.Greater(t, total, flatLow)
}

func TestVotingPowerShares(t *testing.T) {
	// Scenario: A stakes 1,000 and B stakes 3,000 of the same asset.
	a := int64(1000_000000)
	b := int64(3000_000000)
	total := a + b

	powerA := VotingPowerBps(a, total)
	powerB := VotingPowerBps(b, total)

	assert.InDelta(t, 250_000, powerA, 2_500, "A holds ~25%% of the pool")
	assert.InDelta(t, 750_000, powerB, 7_500, "B holds ~75%% of the pool")
	assert.LessOrEqual(t, powerA+powerB, int64(PowerBase))
	assert.InDelta(t, PowerBase, powerA+powerB, 2, "shares sum to the power base within rounding")
}

func TestVotingPowerRecomputesAfterExit(t *testing.T) {
	// Three equal stakes, then one exits: the survivors recompute to 50/50.
	each := int64(2000_000000)
	total := 3 * each
	assert.InDelta(t, 333_333, VotingPowerBps(each, total), 2)

	total -= each
	assert.Equal(t, int64(500_000), VotingPowerBps(each, total))
}

func TestVotingPowerEmptyPool(t *testing.T) {
	assert.Equal(t, int64(0), VotingPowerBps(0, 0))
	assert.Equal(t, int64(0), VotingPowerBps(1000, 0))
}

func TestNormalizeUsd(t *testing.T) {
	// 6-decimal asset maps 1:1.
	assert.Equal(t, int64(1_500000), NormalizeUsd(1_500000, 6))
	// 8-decimal asset scales down.
	assert.Equal(t, int64(1_500000), NormalizeUsd(150_000000, 8))
	// 2-decimal asset scales up.
	assert.Equal(t, int64(1_500000), NormalizeUsd(150, 2))

	assert.Equal(t, int64(0), NormalizeUsd(0, 6))
	assert.Equal(t, int64(0), NormalizeUsd(-5, 6))
}

func TestPenaltyAmount(t *testing.T) {
	// Scenario: stake 1,000, emergency withdraw at 15% penalty -> 150 withheld.
	penalty := PenaltyAmount(1000_000000, 1500)
	assert.Equal(t, int64(150_000000), penalty)
	assert.Equal(t, int64(850_000000), 1000_000000-penalty)

	assert.Equal(t, int64(0), PenaltyAmount(0, 1500))
	assert.Equal(t, int64(0), PenaltyAmount(1000, 0))
}
