package model

import "fmt"

const (
	StakePositionCollection = "stake_positions"
	PoolStateCollection     = "pool_state"
)

// PoolStateDocId is the _id of the singleton pool state document.
const PoolStateDocId = "pool"

// StakePositionDocument is one ledger entry per (staker, asset). The stored
// VotingPowerBps is the share computed at this position's last mutation; reads
// must recompute it against the current pool total because every other
// position's share goes stale whenever the denominator changes.
type StakePositionDocument struct {
	Id            string `bson:"_id"` // staker:asset
	Staker        string `bson:"staker"`
	Asset         string `bson:"asset"`
	Amount        int64  `bson:"amount"`
	UsdEquivalent int64  `bson:"usd_equivalent"`
	LockDeadline  int64  `bson:"lock_deadline"`
	// IndexCheckpoint is the pool reward index at the last accrual settlement.
	IndexCheckpoint int64 `bson:"index_checkpoint"`
	LastAccrualTime int64 `bson:"last_accrual_time"`
	AccruedRewards  int64 `bson:"accrued_rewards"`
	VotingPowerBps  int64 `bson:"voting_power_bps"`
	Active          bool  `bson:"active"`
	IsFinancier     bool  `bson:"is_financier"`
	CreatedAt       int64 `bson:"created_at"`
	UpdatedAt       int64 `bson:"updated_at"`
}

func StakePositionId(staker, asset string) string {
	return fmt.Sprintf("%s:%s", staker, asset)
}

// PoolStateDocument is the singleton pool accumulator. RewardIndex is in
// 1e12 fixed point; TotalStakedUsd in 6-decimal USD equivalent.
type PoolStateDocument struct {
	Id                   string `bson:"_id"`
	TotalStaked          int64  `bson:"total_staked"`
	TotalStakedUsd       int64  `bson:"total_staked_usd"`
	ActiveProviderCount  int64  `bson:"active_provider_count"`
	CurrentRewardRateBps int64  `bson:"current_reward_rate_bps"`
	RewardIndex          int64  `bson:"reward_index"`
	LastIndexUpdate      int64  `bson:"last_index_update"`
}

func NewPoolStateDocument(initialRateBps, now int64) *PoolStateDocument {
	return &PoolStateDocument{
		Id:                   PoolStateDocId,
		CurrentRewardRateBps: initialRateBps,
		LastIndexUpdate:      now,
	}
}
