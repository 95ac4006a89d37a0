package api

import (
	"github.com/go-chi/chi"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/blockfinax/guarantee-api-service/docs"
)

func (a *Server) SetupRoutes(r *chi.Mux) {
	handlers := a.handlers
	r.Get("/healthcheck", registerHandler(handlers.HealthCheck))

	r.Post("/v1/staking/stake", registerHandler(handlers.Stake))
	r.Post("/v1/staking/unstake", registerHandler(handlers.Unstake))
	r.Post("/v1/staking/emergency-withdraw", registerHandler(handlers.EmergencyWithdraw))
	r.Post("/v1/staking/claim-rewards", registerHandler(handlers.ClaimRewards))
	r.Get("/v1/staking/position", registerHandler(handlers.GetStake))
	r.Get("/v1/staking/pool-stats", registerHandler(handlers.GetPoolStats))
	r.Get("/v1/staking/config", registerHandler(handlers.GetStakingConfig))

	r.Post("/v1/proposals", registerHandler(handlers.CreateProposal))
	r.Get("/v1/proposals", registerHandler(handlers.ListProposals))
	r.Get("/v1/proposals/{proposalId}", registerHandler(handlers.GetProposal))
	r.Post("/v1/proposals/{proposalId}/votes", registerHandler(handlers.VoteOnProposal))
	r.Post("/v1/proposals/{proposalId}/expire", registerHandler(handlers.ExpireProposal))

	r.Post("/v1/guarantees", registerHandler(handlers.CreateGuarantee))
	r.Get("/v1/guarantees", registerHandler(handlers.ListGuarantees))
	r.Get("/v1/guarantees/{guaranteeId}", registerHandler(handlers.GetGuarantee))
	r.Post("/v1/guarantees/{guaranteeId}/votes", registerHandler(handlers.VoteOnGuarantee))
	r.Post("/v1/guarantees/{guaranteeId}/expire", registerHandler(handlers.ExpireGuaranteeVote))
	r.Post("/v1/guarantees/{guaranteeId}/seller-approve", registerHandler(handlers.SellerApprove))
	r.Post("/v1/guarantees/{guaranteeId}/pay-collateral", registerHandler(handlers.PayCollateral))
	r.Post("/v1/guarantees/{guaranteeId}/pay-issuance-fee", registerHandler(handlers.PayIssuanceFee))
	r.Post("/v1/guarantees/{guaranteeId}/take-up", registerHandler(handlers.TakeUpGuarantee))
	r.Post("/v1/guarantees/{guaranteeId}/confirm-shipped", registerHandler(handlers.ConfirmShipped))
	r.Post("/v1/guarantees/{guaranteeId}/confirm-delivered", registerHandler(handlers.ConfirmDelivered))
	r.Post("/v1/guarantees/{guaranteeId}/pay-balance", registerHandler(handlers.PayBalance))
	r.Post("/v1/guarantees/{guaranteeId}/issue-certificate", registerHandler(handlers.IssueCertificate))

	r.Post("/v1/partners", registerHandler(handlers.AuthorizePartner))
	r.Get("/v1/partners", registerHandler(handlers.ListPartners))
	r.Delete("/v1/partners/{account}", registerHandler(handlers.DeauthorizePartner))

	r.Get("/v1/params", registerHandler(handlers.GetProtocolParams))

	r.Get("/swagger/*", httpSwagger.WrapHandler)
}
