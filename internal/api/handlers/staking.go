package handlers

import (
	"net/http"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type stakeRequestPayload struct {
	Staker       string `json:"staker"`
	Asset        string `json:"asset"`
	Amount       int64  `json:"amount"`
	LockDuration int64  `json:"lock_duration"`
}

type unstakeRequestPayload struct {
	Staker string `json:"staker"`
	Asset  string `json:"asset"`
	Amount int64  `json:"amount"`
}

type positionRequestPayload struct {
	Staker string `json:"staker"`
	Asset  string `json:"asset"`
}

func parsePositionIdentity(staker, asset string) (string, string, *types.Error) {
	staker, err := parseAccountId(staker, "staker")
	if err != nil {
		return "", "", err
	}
	asset, err = parseAssetSymbol(asset)
	if err != nil {
		return "", "", err
	}
	return staker, asset, nil
}

// Stake @Summary Stake into the liquidity pool
// @Description Opens or extends the staker's position for the given USD-pegged asset
// @Accept json
// @Produce json
// @Param request body stakeRequestPayload true "Stake request"
// @Success 200 {object} PublicResponse[services.StakePositionPublic] "Updated stake position"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/staking/stake [post]
func (h *Handler) Stake(request *http.Request) (*Result, *types.Error) {
	payload := &stakeRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	staker, asset, err := parsePositionIdentity(payload.Staker, payload.Asset)
	if err != nil {
		return nil, err
	}

	position, err := h.services.Stake(request.Context(), staker, asset, payload.Amount, payload.LockDuration)
	if err != nil {
		return nil, err
	}
	return NewResult(position), nil
}

// Unstake @Summary Withdraw staked principal
// @Description Withdraws principal after the lock deadline, paying out accrued rewards
// @Accept json
// @Produce json
// @Param request body unstakeRequestPayload true "Unstake request"
// @Success 200 {object} PublicResponse[services.WithdrawResultPublic] "Withdraw result"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/staking/unstake [post]
func (h *Handler) Unstake(request *http.Request) (*Result, *types.Error) {
	payload := &unstakeRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	staker, asset, err := parsePositionIdentity(payload.Staker, payload.Asset)
	if err != nil {
		return nil, err
	}

	result, err := h.services.Unstake(request.Context(), staker, asset, payload.Amount)
	if err != nil {
		return nil, err
	}
	return NewResult(result), nil
}

// EmergencyWithdraw @Summary Exit the pool before the lock deadline
// @Description Withdraws the full position immediately, forfeiting rewards and paying the penalty
// @Accept json
// @Produce json
// @Param request body positionRequestPayload true "Emergency withdraw request"
// @Success 200 {object} PublicResponse[services.WithdrawResultPublic] "Withdraw result with penalty"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/staking/emergency-withdraw [post]
func (h *Handler) EmergencyWithdraw(request *http.Request) (*Result, *types.Error) {
	payload := &positionRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	staker, asset, err := parsePositionIdentity(payload.Staker, payload.Asset)
	if err != nil {
		return nil, err
	}

	result, err := h.services.EmergencyWithdraw(request.Context(), staker, asset)
	if err != nil {
		return nil, err
	}
	return NewResult(result), nil
}

// ClaimRewards @Summary Claim accrued rewards
// @Description Pays out accrued rewards without touching the staked principal
// @Accept json
// @Produce json
// @Param request body positionRequestPayload true "Claim request"
// @Success 200 {object} PublicResponse[services.WithdrawResultPublic] "Claimed rewards"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/staking/claim-rewards [post]
func (h *Handler) ClaimRewards(request *http.Request) (*Result, *types.Error) {
	payload := &positionRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	staker, asset, err := parsePositionIdentity(payload.Staker, payload.Asset)
	if err != nil {
		return nil, err
	}

	result, err := h.services.ClaimRewards(request.Context(), staker, asset)
	if err != nil {
		return nil, err
	}
	return NewResult(result), nil
}

// GetStake @Summary Get a stake position
// @Description Retrieves the position with accrual projected to now and live voting power
// @Produce json
// @Param staker query string true "Staker account id"
// @Param asset query string true "Asset symbol"
// @Success 200 {object} PublicResponse[services.StakePositionPublic] "Stake position"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/staking/position [get]
func (h *Handler) GetStake(request *http.Request) (*Result, *types.Error) {
	staker, asset, err := parsePositionIdentity(
		request.URL.Query().Get("staker"), request.URL.Query().Get("asset"),
	)
	if err != nil {
		return nil, err
	}

	position, err := h.services.GetStake(request.Context(), staker, asset)
	if err != nil {
		return nil, err
	}
	return NewResult(position), nil
}

// GetPoolStats @Summary Get pool statistics
// @Description Retrieves pool totals, the active provider count and the current reward rate
// @Produce json
// @Success 200 {object} PublicResponse[services.PoolStatsPublic] "Pool stats"
// @Router /v1/staking/pool-stats [get]
func (h *Handler) GetPoolStats(request *http.Request) (*Result, *types.Error) {
	stats, err := h.services.GetPoolStats(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(stats), nil
}

// GetStakingConfig @Summary Get staking configuration
// @Description Retrieves the immutable staking pool parameters
// @Produce json
// @Success 200 {object} PublicResponse[services.StakingConfigPublic] "Staking config"
// @Router /v1/staking/config [get]
func (h *Handler) GetStakingConfig(request *http.Request) (*Result, *types.Error) {
	cfg, err := h.services.GetStakingConfig(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(cfg), nil
}
