package types

import (
	"encoding/json"
	"fmt"
	"os"
)

// StakingParams is the immutable staking pool configuration. All rates are in
// basis points (1/100th of a percent), amounts in the asset's smallest unit and
// durations in seconds.
type StakingParams struct {
	InitialAprBps               int64 `json:"initial_apr_bps"`
	MinLockDuration             int64 `json:"min_lock_duration"`
	AprReductionPerThousand     int64 `json:"apr_reduction_per_thousand"`
	EmergencyWithdrawPenaltyBps int64 `json:"emergency_withdraw_penalty_bps"`
	MinimumStake                int64 `json:"minimum_stake"`
	// FinancierThreshold is the minimum USD-equivalent stake (6 decimals) an
	// account must hold to vote on proposals and guarantees.
	FinancierThreshold int64 `json:"financier_threshold"`
}

// VotingParams configures the weighted voting protocol for both subject types.
// Thresholds are expressed against the voting power base (1,000,000 = 100%).
type VotingParams struct {
	ProposalApprovalThresholdBps  int64 `json:"proposal_approval_threshold_bps"`
	GuaranteeApprovalThresholdBps int64 `json:"guarantee_approval_threshold_bps"`
	ProposalVotingDuration        int64 `json:"proposal_voting_duration"`
	GuaranteeVotingDuration       int64 `json:"guarantee_voting_duration"`
}

type ProtocolParams struct {
	Staking StakingParams `json:"staking"`
	Voting  VotingParams  `json:"voting"`
	// TreasuryAccount receives issuance fees and emergency withdraw penalties.
	// Fee routing fails with TREASURY_NOT_SET when empty.
	TreasuryAccount string `json:"treasury_account"`
}

func NewProtocolParams(filePath string) (*ProtocolParams, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var params ProtocolParams
	err = json.Unmarshal(data, &params)
	if err != nil {
		return nil, err
	}
	err = ValidateProtocolParams(&params)
	if err != nil {
		return nil, err
	}

	return &params, nil
}

// ValidateProtocolParams validates the protocol params file
func ValidateProtocolParams(p *ProtocolParams) error {
	s := p.Staking
	if s.InitialAprBps <= 0 {
		return fmt.Errorf("initial-apr-bps must be positive")
	}
	if s.MinLockDuration <= 0 {
		return fmt.Errorf("min-lock-duration must be positive")
	}
	if s.AprReductionPerThousand < 0 {
		return fmt.Errorf("apr-reduction-per-thousand cannot be negative")
	}
	if s.EmergencyWithdrawPenaltyBps < 0 || s.EmergencyWithdrawPenaltyBps > 10_000 {
		return fmt.Errorf("emergency-withdraw-penalty-bps must be between 0 and 10000")
	}
	if s.MinimumStake <= 0 {
		return fmt.Errorf("minimum-stake must be positive")
	}
	if s.FinancierThreshold < s.MinimumStake {
		return fmt.Errorf("financier-threshold cannot be below minimum-stake")
	}

	v := p.Voting
	if v.ProposalApprovalThresholdBps <= 0 || v.ProposalApprovalThresholdBps > 1_000_000 {
		return fmt.Errorf("proposal-approval-threshold-bps must be between 1 and 1000000")
	}
	if v.GuaranteeApprovalThresholdBps <= 0 || v.GuaranteeApprovalThresholdBps > 1_000_000 {
		return fmt.Errorf("guarantee-approval-threshold-bps must be between 1 and 1000000")
	}
	if v.ProposalVotingDuration <= 0 {
		return fmt.Errorf("proposal-voting-duration must be positive")
	}
	if v.GuaranteeVotingDuration <= 0 {
		return fmt.Errorf("guarantee-voting-duration must be positive")
	}

	return nil
}
