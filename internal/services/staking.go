package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/blockfinax/guarantee-api-service/internal/config"
	"github.com/blockfinax/guarantee-api-service/internal/db"
	"github.com/blockfinax/guarantee-api-service/internal/db/model"
	"github.com/blockfinax/guarantee-api-service/internal/pool"
	"github.com/blockfinax/guarantee-api-service/internal/queue/client"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type StakePositionPublic struct {
	Staker         string `json:"staker"`
	Asset          string `json:"asset"`
	Amount         int64  `json:"amount"`
	UsdEquivalent  int64  `json:"usd_equivalent"`
	LockDeadline   int64  `json:"lock_deadline"`
	AccruedRewards int64  `json:"accrued_rewards"`
	VotingPowerBps int64  `json:"voting_power_bps"`
	IsFinancier    bool   `json:"is_financier"`
	Active         bool   `json:"active"`
}

type PoolStatsPublic struct {
	TotalStaked          int64 `json:"total_staked"`
	TotalStakedUsd       int64 `json:"total_staked_usd"`
	ActiveProviderCount  int64 `json:"active_provider_count"`
	FinancierCount       int64 `json:"financier_count"`
	CurrentRewardRateBps int64 `json:"current_reward_rate_bps"`
	RewardIndex          int64 `json:"reward_index"`
}

type StakingConfigPublic struct {
	InitialAprBps               int64 `json:"initial_apr_bps"`
	MinLockDuration             int64 `json:"min_lock_duration"`
	AprReductionPerThousand     int64 `json:"apr_reduction_per_thousand"`
	EmergencyWithdrawPenaltyBps int64 `json:"emergency_withdraw_penalty_bps"`
	MinimumStake                int64 `json:"minimum_stake"`
	FinancierThreshold          int64 `json:"financier_threshold"`
}

// WithdrawResultPublic reports what an unstake or emergency withdraw actually
// paid out, penalty included for the emergency path.
type WithdrawResultPublic struct {
	Staker        string `json:"staker"`
	Asset         string `json:"asset"`
	AmountPaid    int64  `json:"amount_paid"`
	RewardsPaid   int64  `json:"rewards_paid"`
	PenaltyAmount int64  `json:"penalty_amount,omitempty"`
}

// settleIndex advances the pool reward index to now at the current rate. Must
// run before any mutation that changes the rate or a position's balance.
func settleIndex(poolState *model.PoolStateDocument, now int64) {
	elapsed := now - poolState.LastIndexUpdate
	poolState.RewardIndex = pool.AdvanceIndex(poolState.RewardIndex, poolState.CurrentRewardRateBps, elapsed)
	poolState.LastIndexUpdate = now
}

// settlePosition folds the index delta since the position's checkpoint into
// its accrued rewards. The pool index must already be settled to now.
func settlePosition(poolState *model.PoolStateDocument, position *model.StakePositionDocument, now int64) {
	delta := pool.AccruedDelta(position.Amount, poolState.RewardIndex, position.IndexCheckpoint)
	position.AccruedRewards += delta
	position.IndexCheckpoint = poolState.RewardIndex
	position.LastAccrualTime = now
}

// refreshDerived recomputes everything downstream of a balance change: the
// pool reward rate, the position's voting power share and its financier flag.
func (s *Services) refreshDerived(poolState *model.PoolStateDocument, position *model.StakePositionDocument) {
	poolState.CurrentRewardRateBps = pool.RewardRateBps(s.params.Staking, poolState.TotalStakedUsd)
	if position.Active {
		position.VotingPowerBps = pool.VotingPowerBps(position.UsdEquivalent, poolState.TotalStakedUsd)
		position.IsFinancier = position.UsdEquivalent >= s.params.Staking.FinancierThreshold
	} else {
		position.VotingPowerBps = 0
		position.IsFinancier = false
	}
}

func (s *Services) resolveAsset(asset string) (config.AssetConfig, *types.Error) {
	assetCfg, ok := s.cfg.Assets.Lookup(asset)
	if !ok || !assetCfg.UsdPegged {
		return config.AssetConfig{}, types.NewErrorWithMsg(
			http.StatusBadRequest, types.UnsupportedAsset,
			fmt.Sprintf("asset %s is not a supported USD-pegged asset", asset),
		)
	}
	return assetCfg, nil
}

func (s *Services) loadPoolState(ctx context.Context) (*model.PoolStateDocument, *types.Error) {
	initialRate := pool.RewardRateBps(s.params.Staking, 0)
	poolState, err := s.DbClient.GetOrCreatePoolState(ctx, initialRate, s.now().Unix())
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching pool state")
		return nil, types.NewInternalServiceError(err)
	}
	return poolState, nil
}

// Stake opens or extends the (staker, asset) position. The deposit is pulled
// from the staker on the asset ledger before any ledger state is written.
func (s *Services) Stake(
	ctx context.Context, staker, asset string, amount, lockDuration int64,
) (*StakePositionPublic, *types.Error) {
	if amount <= 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroAmount, "stake amount must be positive")
	}
	if amount < s.params.Staking.MinimumStake {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.BelowMinimumStake,
			fmt.Sprintf("stake amount is below the minimum of %d", s.params.Staking.MinimumStake),
		)
	}
	if lockDuration < s.params.Staking.MinLockDuration {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError,
			fmt.Sprintf("lock duration must be at least %d seconds", s.params.Staking.MinLockDuration),
		)
	}
	assetCfg, valErr := s.resolveAsset(asset)
	if valErr != nil {
		return nil, valErr
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now().Unix()
	poolState, poolErr := s.loadPoolState(ctx)
	if poolErr != nil {
		return nil, poolErr
	}

	position, err := s.DbClient.GetStakePosition(ctx, staker, asset)
	if err != nil {
		var notFoundErr *db.NotFoundError
		if !errors.As(err, &notFoundErr) {
			log.Ctx(ctx).Error().Err(err).Msg("error while fetching stake position")
			return nil, types.NewInternalServiceError(err)
		}
		position = &model.StakePositionDocument{
			Id:        model.StakePositionId(staker, asset),
			Staker:    staker,
			Asset:     asset,
			CreatedAt: now,
		}
	}

	// Pull the deposit first so we never record a stake that was not funded.
	transferErr := s.Clients.AssetLedger.Transfer(
		ctx, staker, s.Clients.AssetLedger.PoolAccount(), asset, amount, position.Id,
	)
	if transferErr != nil {
		return nil, transferErr
	}

	settleIndex(poolState, now)
	settlePosition(poolState, position, now)

	usdDelta := pool.NormalizeUsd(amount, assetCfg.Decimals)
	position.Amount += amount
	position.UsdEquivalent += usdDelta
	poolState.TotalStaked += amount
	poolState.TotalStakedUsd += usdDelta

	if !position.Active {
		position.Active = true
		poolState.ActiveProviderCount++
	}
	lockDeadline := now + lockDuration
	if lockDeadline > position.LockDeadline {
		position.LockDeadline = lockDeadline
	}
	position.UpdatedAt = now

	s.refreshDerived(poolState, position)

	if err := s.DbClient.SaveStakeState(ctx, poolState, position); err != nil {
		// Funds already moved to the pool account; flag for reconciliation.
		log.Ctx(ctx).Error().Err(err).
			Str("transfer_reference", position.Id).
			Msg("error while saving stake state after deposit transfer")
		return nil, types.NewInternalServiceError(err)
	}

	s.emitActivityEvent(ctx, client.StakeEventType, client.NewStakeEvent(
		client.StakeEventType, staker, asset, amount,
		poolState.TotalStaked, position.VotingPowerBps, now,
	))

	return toStakePositionPublic(position), nil
}

// Unstake withdraws principal after the lock deadline, paying out all accrued
// rewards alongside. A full withdrawal deactivates the position.
func (s *Services) Unstake(
	ctx context.Context, staker, asset string, amount int64,
) (*WithdrawResultPublic, *types.Error) {
	if amount <= 0 {
		return nil, types.NewErrorWithMsg(http.StatusBadRequest, types.ZeroAmount, "unstake amount must be positive")
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now().Unix()
	poolState, position, loadErr := s.loadActivePosition(ctx, staker, asset)
	if loadErr != nil {
		return nil, loadErr
	}
	if now < position.LockDeadline {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.LockDurationNotMet,
			fmt.Sprintf("stake is locked until %d", position.LockDeadline),
		)
	}
	if amount > position.Amount {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError,
			fmt.Sprintf("unstake amount %d exceeds staked amount %d", amount, position.Amount),
		)
	}
	assetCfg, valErr := s.resolveAsset(asset)
	if valErr != nil {
		return nil, valErr
	}

	settleIndex(poolState, now)
	settlePosition(poolState, position, now)

	rewardsPaid := position.AccruedRewards
	position.AccruedRewards = 0

	usdDelta := pool.NormalizeUsd(amount, assetCfg.Decimals)
	if amount == position.Amount {
		// Sub-USD truncation dust must not outlive the position in the
		// pool denominator.
		usdDelta = position.UsdEquivalent
	}
	position.Amount -= amount
	position.UsdEquivalent -= usdDelta
	poolState.TotalStaked -= amount
	poolState.TotalStakedUsd -= usdDelta

	if position.Amount == 0 {
		position.Active = false
		poolState.ActiveProviderCount--
	}
	position.UpdatedAt = now

	s.refreshDerived(poolState, position)

	if err := s.DbClient.SaveStakeState(ctx, poolState, position); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving stake state for unstake")
		return nil, types.NewInternalServiceError(err)
	}

	payout := amount + rewardsPaid
	transferErr := s.Clients.AssetLedger.Transfer(
		ctx, s.Clients.AssetLedger.PoolAccount(), staker, asset, payout, position.Id,
	)
	if transferErr != nil {
		// State already reflects the withdrawal; flag for reconciliation.
		log.Ctx(ctx).Error().Err(transferErr.Err).
			Str("transfer_reference", position.Id).
			Msg("error while paying out unstake")
		return nil, transferErr
	}

	s.emitActivityEvent(ctx, client.UnstakeEventType, client.NewStakeEvent(
		client.UnstakeEventType, staker, asset, amount,
		poolState.TotalStaked, position.VotingPowerBps, now,
	))

	return &WithdrawResultPublic{
		Staker:      staker,
		Asset:       asset,
		AmountPaid:  amount,
		RewardsPaid: rewardsPaid,
	}, nil
}

// EmergencyWithdraw exits the full position before the lock deadline. The
// configured penalty is kept back and routed to the treasury; accrued rewards
// are forfeited entirely.
func (s *Services) EmergencyWithdraw(
	ctx context.Context, staker, asset string,
) (*WithdrawResultPublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now().Unix()
	poolState, position, loadErr := s.loadActivePosition(ctx, staker, asset)
	if loadErr != nil {
		return nil, loadErr
	}
	assetCfg, valErr := s.resolveAsset(asset)
	if valErr != nil {
		return nil, valErr
	}

	settleIndex(poolState, now)

	principal := position.Amount
	penalty := pool.PenaltyAmount(principal, s.params.Staking.EmergencyWithdrawPenaltyBps)
	returned := principal - penalty

	usdDelta := pool.NormalizeUsd(principal, assetCfg.Decimals)
	position.Amount = 0
	position.UsdEquivalent = 0
	position.AccruedRewards = 0
	position.IndexCheckpoint = poolState.RewardIndex
	position.LastAccrualTime = now
	position.Active = false
	position.UpdatedAt = now
	poolState.TotalStaked -= principal
	poolState.TotalStakedUsd -= usdDelta
	poolState.ActiveProviderCount--

	s.refreshDerived(poolState, position)

	if err := s.DbClient.SaveStakeState(ctx, poolState, position); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving stake state for emergency withdraw")
		return nil, types.NewInternalServiceError(err)
	}

	transferErr := s.Clients.AssetLedger.Transfer(
		ctx, s.Clients.AssetLedger.PoolAccount(), staker, asset, returned, position.Id,
	)
	if transferErr != nil {
		log.Ctx(ctx).Error().Err(transferErr.Err).
			Str("transfer_reference", position.Id).
			Msg("error while paying out emergency withdraw")
		return nil, transferErr
	}
	if penalty > 0 && s.params.TreasuryAccount != "" {
		treasuryErr := s.Clients.AssetLedger.Transfer(
			ctx, s.Clients.AssetLedger.PoolAccount(), s.params.TreasuryAccount, asset, penalty, position.Id,
		)
		if treasuryErr != nil {
			// Penalty stays parked in the pool account until reconciliation.
			log.Ctx(ctx).Error().Err(treasuryErr.Err).
				Str("transfer_reference", position.Id).
				Msg("error while routing emergency withdraw penalty to treasury")
		}
	}

	s.emitActivityEvent(ctx, client.EmergencyWithdrawEventType, client.NewStakeEvent(
		client.EmergencyWithdrawEventType, staker, asset, principal,
		poolState.TotalStaked, 0, now,
	))

	return &WithdrawResultPublic{
		Staker:        staker,
		Asset:         asset,
		AmountPaid:    returned,
		PenaltyAmount: penalty,
	}, nil
}

// ClaimRewards pays out the accrued rewards without touching the principal.
func (s *Services) ClaimRewards(
	ctx context.Context, staker, asset string,
) (*WithdrawResultPublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now().Unix()
	poolState, position, loadErr := s.loadActivePosition(ctx, staker, asset)
	if loadErr != nil {
		return nil, loadErr
	}

	settleIndex(poolState, now)
	settlePosition(poolState, position, now)

	if position.AccruedRewards == 0 {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.NoRewardsToClaim, "no rewards accrued to claim",
		)
	}

	rewardsPaid := position.AccruedRewards
	position.AccruedRewards = 0
	position.UpdatedAt = now

	if err := s.DbClient.SaveStakeState(ctx, poolState, position); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while saving stake state for rewards claim")
		return nil, types.NewInternalServiceError(err)
	}

	transferErr := s.Clients.AssetLedger.Transfer(
		ctx, s.Clients.AssetLedger.PoolAccount(), staker, asset, rewardsPaid, position.Id,
	)
	if transferErr != nil {
		log.Ctx(ctx).Error().Err(transferErr.Err).
			Str("transfer_reference", position.Id).
			Msg("error while paying out claimed rewards")
		return nil, transferErr
	}

	s.emitActivityEvent(ctx, client.RewardsClaimedEventType, client.NewStakeEvent(
		client.RewardsClaimedEventType, staker, asset, rewardsPaid,
		poolState.TotalStaked, position.VotingPowerBps, now,
	))

	return &WithdrawResultPublic{
		Staker:      staker,
		Asset:       asset,
		RewardsPaid: rewardsPaid,
	}, nil
}

// GetStake returns the position view with accrual simulated to now and voting
// power recomputed against the current pool total. The stored snapshot goes
// stale whenever any other position changes the denominator.
func (s *Services) GetStake(ctx context.Context, staker, asset string) (*StakePositionPublic, *types.Error) {
	position, err := s.DbClient.GetStakePosition(ctx, staker, asset)
	if err != nil {
		var notFoundErr *db.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "stake position not found")
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching stake position")
		return nil, types.NewInternalServiceError(err)
	}

	poolState, poolErr := s.loadPoolState(ctx)
	if poolErr != nil {
		return nil, poolErr
	}

	view := toStakePositionPublic(position)
	now := s.now().Unix()
	projected := pool.AdvanceIndex(
		poolState.RewardIndex, poolState.CurrentRewardRateBps, now-poolState.LastIndexUpdate,
	)
	view.AccruedRewards += pool.AccruedDelta(position.Amount, projected, position.IndexCheckpoint)
	if position.Active {
		view.VotingPowerBps = pool.VotingPowerBps(position.UsdEquivalent, poolState.TotalStakedUsd)
	}
	return view, nil
}

func (s *Services) GetPoolStats(ctx context.Context) (*PoolStatsPublic, *types.Error) {
	poolState, poolErr := s.loadPoolState(ctx)
	if poolErr != nil {
		return nil, poolErr
	}

	positions, err := s.DbClient.FindActiveStakePositions(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching active stake positions")
		return nil, types.NewInternalServiceError(err)
	}
	// Financier status is per account, aggregated across that account's
	// active positions, same as the vote eligibility check.
	usdByStaker := make(map[string]int64)
	for i := range positions {
		usdByStaker[positions[i].Staker] += positions[i].UsdEquivalent
	}
	var financierCount int64
	for _, usd := range usdByStaker {
		if usd >= s.params.Staking.FinancierThreshold {
			financierCount++
		}
	}

	return &PoolStatsPublic{
		TotalStaked:          poolState.TotalStaked,
		TotalStakedUsd:       poolState.TotalStakedUsd,
		ActiveProviderCount:  poolState.ActiveProviderCount,
		FinancierCount:       financierCount,
		CurrentRewardRateBps: poolState.CurrentRewardRateBps,
		RewardIndex:          poolState.RewardIndex,
	}, nil
}

func (s *Services) GetStakingConfig(ctx context.Context) (*StakingConfigPublic, *types.Error) {
	staking := s.params.Staking
	return &StakingConfigPublic{
		InitialAprBps:               staking.InitialAprBps,
		MinLockDuration:             staking.MinLockDuration,
		AprReductionPerThousand:     staking.AprReductionPerThousand,
		EmergencyWithdrawPenaltyBps: staking.EmergencyWithdrawPenaltyBps,
		MinimumStake:                staking.MinimumStake,
		FinancierThreshold:          staking.FinancierThreshold,
	}, nil
}

// loadActivePosition fetches the pool state and the staker's active position,
// mapping a missing or deactivated position to NO_ACTIVE_STAKE.
func (s *Services) loadActivePosition(
	ctx context.Context, staker, asset string,
) (*model.PoolStateDocument, *model.StakePositionDocument, *types.Error) {
	poolState, poolErr := s.loadPoolState(ctx)
	if poolErr != nil {
		return nil, nil, poolErr
	}

	position, err := s.DbClient.GetStakePosition(ctx, staker, asset)
	if err != nil {
		var notFoundErr *db.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, nil, types.NewErrorWithMsg(
				http.StatusForbidden, types.NoActiveStake, "no active stake position for this account and asset",
			)
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching stake position")
		return nil, nil, types.NewInternalServiceError(err)
	}
	if !position.Active {
		return nil, nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.NoActiveStake, "no active stake position for this account and asset",
		)
	}
	return poolState, position, nil
}

func toStakePositionPublic(position *model.StakePositionDocument) *StakePositionPublic {
	return &StakePositionPublic{
		Staker:         position.Staker,
		Asset:          position.Asset,
		Amount:         position.Amount,
		UsdEquivalent:  position.UsdEquivalent,
		LockDeadline:   position.LockDeadline,
		AccruedRewards: position.AccruedRewards,
		VotingPowerBps: position.VotingPowerBps,
		IsFinancier:    position.IsFinancier,
		Active:         position.Active,
	}
}
