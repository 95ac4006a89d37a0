package model

import (
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

const GuaranteeCollection = "guarantees"

// GuaranteeDocument is one guarantee agreement (PGA) record. It is never
// deleted, only advanced or terminated; the embedded vote tally gates the
// created -> guarantee_approved transition.
type GuaranteeDocument struct {
	Id               string `bson:"_id"`
	Buyer            string `bson:"buyer"`
	Seller           string `bson:"seller"`
	LogisticsPartner string `bson:"logistics_partner,omitempty"`
	Asset            string `bson:"asset"`

	// Financial terms, in the asset's smallest unit.
	TradeValue       int64 `bson:"trade_value"`
	GuaranteeAmount  int64 `bson:"guarantee_amount"`
	CollateralAmount int64 `bson:"collateral_amount"`
	IssuanceFee      int64 `bson:"issuance_fee"`
	EscrowBalance    int64 `bson:"escrow_balance"`

	// Milestone flags, audit-visible alongside the status.
	CollateralPaid     bool `bson:"collateral_paid"`
	IssuanceFeePaid    bool `bson:"issuance_fee_paid"`
	BalancePaymentPaid bool `bson:"balance_payment_paid"`
	GoodsShipped       bool `bson:"goods_shipped"`
	GoodsDelivered     bool `bson:"goods_delivered"`
	CertificateIssued  bool `bson:"certificate_issued"`

	Status types.GuaranteeStatus `bson:"status"`

	// Financier vote tally (see ProposalDocument for tally semantics).
	VotesForBps     int64    `bson:"votes_for_bps"`
	VotesAgainstBps int64    `bson:"votes_against_bps"`
	VotingDeadline  int64    `bson:"voting_deadline"`
	VoteResolved    bool     `bson:"vote_resolved"`
	Voters          []string `bson:"voters"`

	// Audit metadata, carried but never used for logic.
	CompanyName      string   `bson:"company_name"`
	TradeDescription string   `bson:"trade_description"`
	DocumentRefs     []string `bson:"document_refs,omitempty"`

	CreatedAt int64 `bson:"created_at"`
	UpdatedAt int64 `bson:"updated_at"`
}

type GuaranteePagination struct {
	CreatedAt int64  `json:"created_at"`
	Id        string `json:"id"`
}

func BuildGuaranteePaginationToken(d GuaranteeDocument) (string, error) {
	page := GuaranteePagination{
		CreatedAt: d.CreatedAt,
		Id:        d.Id,
	}
	return GetPaginationToken(page)
}
