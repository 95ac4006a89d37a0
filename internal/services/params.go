package services

import (
	"context"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type VotingConfigPublic struct {
	ProposalApprovalThresholdBps  int64 `json:"proposal_approval_threshold_bps"`
	GuaranteeApprovalThresholdBps int64 `json:"guarantee_approval_threshold_bps"`
	ProposalVotingDuration        int64 `json:"proposal_voting_duration"`
	GuaranteeVotingDuration       int64 `json:"guarantee_voting_duration"`
}

type ProtocolParamsPublic struct {
	Staking         StakingConfigPublic `json:"staking"`
	Voting          VotingConfigPublic  `json:"voting"`
	TreasuryAccount string              `json:"treasury_account"`
}

func (s *Services) GetProtocolParams(ctx context.Context) (*ProtocolParamsPublic, *types.Error) {
	staking, err := s.GetStakingConfig(ctx)
	if err != nil {
		return nil, err
	}
	voting := s.params.Voting
	return &ProtocolParamsPublic{
		Staking: *staking,
		Voting: VotingConfigPublic{
			ProposalApprovalThresholdBps:  voting.ProposalApprovalThresholdBps,
			GuaranteeApprovalThresholdBps: voting.GuaranteeApprovalThresholdBps,
			ProposalVotingDuration:        voting.ProposalVotingDuration,
			GuaranteeVotingDuration:       voting.GuaranteeVotingDuration,
		},
		TreasuryAccount: s.params.TreasuryAccount,
	}, nil
}
