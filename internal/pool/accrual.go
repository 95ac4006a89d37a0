// Package pool implements the arithmetic core of the staking pool: the
// decaying reward-rate curve, the pool-wide reward index accumulator and the
// normalized voting-power share. All functions are pure; callers are expected
// to feed them current ledger state and persist the results atomically.
package pool

import (
	"math/big"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

const (
	// PowerBase is the voting power denominator: 1,000,000 bps = 100% of the pool.
	PowerBase = 1_000_000
	// BpsBase is the denominator for rate and penalty basis points.
	BpsBase = 10_000
	// IndexScale is the fixed-point scale of the reward index accumulator.
	IndexScale = 1_000_000_000_000
	// SecondsPerYear annualizes the reward rate (365 days).
	SecondsPerYear = 31_536_000
	// UsdDecimals is the normalized precision of USD-equivalent amounts.
	UsdDecimals = 6
)

// RewardRateBps returns the current annualized reward rate for the pool:
// max(0, initialAprBps - (totalStakedUsd in whole USD / 1000) * aprReductionPerThousand).
// The rate must be recomputed on every change to totalStakedUsd.
func RewardRateBps(cfg types.StakingParams, totalStakedUsd int64) int64 {
	thousands := totalStakedUsd / PowerBase / 1000
	rate := cfg.InitialAprBps - thousands*cfg.AprReductionPerThousand
	if rate < 0 {
		return 0
	}
	return rate
}

// AdvanceIndex moves the pool-wide reward index forward by
// rateBps * elapsed / secondsPerYear, in IndexScale fixed point. The index is
// monotonically non-decreasing; a rate change only affects accrual after the
// index was last settled at the old rate.
func AdvanceIndex(index, rateBps, elapsedSeconds int64) int64 {
	if rateBps <= 0 || elapsedSeconds <= 0 {
		return index
	}
	delta := new(big.Int).Mul(big.NewInt(rateBps), big.NewInt(elapsedSeconds))
	delta.Mul(delta, big.NewInt(IndexScale))
	delta.Quo(delta, big.NewInt(int64(BpsBase)*SecondsPerYear))
	return index + delta.Int64()
}

// AccruedDelta returns the rewards earned by a position of the given amount
// between its last checkpoint and the current index.
func AccruedDelta(amount, index, checkpoint int64) int64 {
	if amount <= 0 || index <= checkpoint {
		return 0
	}
	accrued := new(big.Int).Mul(big.NewInt(amount), big.NewInt(index-checkpoint))
	accrued.Quo(accrued, big.NewInt(IndexScale))
	return accrued.Int64()
}

// VotingPowerBps returns the account's share of the pool in power bps:
// amountUsd * 1,000,000 / totalStakedUsd. Zero when the pool is empty.
func VotingPowerBps(amountUsd, totalStakedUsd int64) int64 {
	if amountUsd <= 0 || totalStakedUsd <= 0 {
		return 0
	}
	power := new(big.Int).Mul(big.NewInt(amountUsd), big.NewInt(PowerBase))
	power.Quo(power, big.NewInt(totalStakedUsd))
	return power.Int64()
}

// NormalizeUsd scales a smallest-unit amount of a USD-pegged asset with the
// given number of decimals to the 6-decimal USD equivalent used for voting
// power and threshold math.
func NormalizeUsd(amount int64, assetDecimals int) int64 {
	if amount <= 0 {
		return 0
	}
	switch {
	case assetDecimals == UsdDecimals:
		return amount
	case assetDecimals > UsdDecimals:
		div := pow10(assetDecimals - UsdDecimals)
		return amount / div
	default:
		mul := pow10(UsdDecimals - assetDecimals)
		return amount * mul
	}
}

// PenaltyAmount returns the emergency withdraw penalty for the given principal.
func PenaltyAmount(amount, penaltyBps int64) int64 {
	if amount <= 0 || penaltyBps <= 0 {
		return 0
	}
	penalty := new(big.Int).Mul(big.NewInt(amount), big.NewInt(penaltyBps))
	penalty.Quo(penalty, big.NewInt(BpsBase))
	return penalty.Int64()
}

func pow10(n int) int64 {
	result := int64(1)
	for i := 0; i < n; i++ {
		result *= 10
	}
	return result
}
