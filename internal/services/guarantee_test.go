package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

func newTestGuaranteeRequest() *CreateGuaranteeRequest {
	return &CreateGuaranteeRequest{
		Buyer:            "buyer-co",
		Seller:           "seller-co",
		Asset:            "USDT",
		TradeValue:       10_000 * oneUsdt,
		GuaranteeAmount:  8_000 * oneUsdt,
		CollateralAmount: 3_000 * oneUsdt,
		IssuanceFee:      100 * oneUsdt,
		CompanyName:      "Acme Trading Ltd",
		TradeDescription: "2000 units of industrial pumps",
		DocumentRefs:     []string{"doc:invoice-114"},
	}
}

// approveGuarantee stakes a majority financier and passes the vote.
func approveGuarantee(t *testing.T, h *testHarness, guaranteeId string) {
	t.Helper()
	ctx := context.Background()
	stakeFinancier(t, h, "financier-1", 5000)
	guarantee, err := h.services.VoteOnGuarantee(ctx, guaranteeId, "financier-1", true)
	require.Nil(t, err)
	require.Equal(t, types.GuaranteeApproved.ToString(), guarantee.Status)
}

func TestCreateGuaranteeValidation(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	req := newTestGuaranteeRequest()
	req.Seller = req.Buyer
	_, err := h.services.CreateGuarantee(ctx, req)
	require.NotNil(t, err)
	assert.Equal(t, types.ValidationError, err.ErrorCode)

	req = newTestGuaranteeRequest()
	req.CollateralAmount = req.TradeValue
	_, err = h.services.CreateGuarantee(ctx, req)
	require.NotNil(t, err)
	assert.Equal(t, types.ValidationError, err.ErrorCode)

	req = newTestGuaranteeRequest()
	req.CompanyName = ""
	_, err = h.services.CreateGuarantee(ctx, req)
	require.NotNil(t, err)
	assert.Equal(t, types.ValidationError, err.ErrorCode)

	req = newTestGuaranteeRequest()
	req.Asset = "DOGE"
	_, err = h.services.CreateGuarantee(ctx, req)
	require.NotNil(t, err)
	assert.Equal(t, types.UnsupportedAsset, err.ErrorCode)
}

func TestGuaranteeVoteApprovesAtTotalPowerThreshold(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	stakeFinancier(t, h, "financier-1", 1000)
	stakeFinancier(t, h, "financier-2", 3000)

	guarantee, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	assert.Equal(t, types.GuaranteeCreated.ToString(), guarantee.Status)

	// 25% of total pool power is below the 50% threshold.
	guarantee, err = h.services.VoteOnGuarantee(ctx, guarantee.Id, "financier-1", true)
	require.Nil(t, err)
	assert.Equal(t, types.GuaranteeCreated.ToString(), guarantee.Status)
	assert.False(t, guarantee.VoteResolved)

	// 75% more crosses it.
	guarantee, err = h.services.VoteOnGuarantee(ctx, guarantee.Id, "financier-2", true)
	require.Nil(t, err)
	assert.Equal(t, types.GuaranteeApproved.ToString(), guarantee.Status)
	assert.True(t, guarantee.VoteResolved)
}

func TestGuaranteeLifecycleHappyPath(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	req := newTestGuaranteeRequest()
	created, err := h.services.CreateGuarantee(ctx, req)
	require.Nil(t, err)
	approveGuarantee(t, h, created.Id)

	guarantee, err := h.services.SellerApprove(ctx, created.Id, "seller-co")
	require.Nil(t, err)
	assert.Equal(t, types.SellerApproved.ToString(), guarantee.Status)

	guarantee, err = h.services.PayCollateral(ctx, created.Id, "buyer-co")
	require.Nil(t, err)
	assert.Equal(t, types.CollateralPaid.ToString(), guarantee.Status)
	assert.Equal(t, req.CollateralAmount, guarantee.EscrowBalance)
	collateral := h.ledger.lastTransfer()
	assert.Equal(t, "buyer-co", collateral.From)
	assert.Equal(t, "platform:escrow", collateral.To)
	assert.Equal(t, req.CollateralAmount, collateral.Amount)

	guarantee, err = h.services.PayIssuanceFee(ctx, created.Id, "buyer-co")
	require.Nil(t, err)
	assert.Equal(t, types.LogisticsNotified.ToString(), guarantee.Status)
	assert.Equal(t, req.CollateralAmount, guarantee.EscrowBalance, "fee never enters escrow")
	fee := h.ledger.lastTransfer()
	assert.Equal(t, "platform:treasury", fee.To)
	assert.Equal(t, req.IssuanceFee, fee.Amount)

	require.Nil(t, h.services.AuthorizePartner(ctx, "fastfreight", "platform-admin"))
	guarantee, err = h.services.TakeUpGuarantee(ctx, created.Id, "fastfreight")
	require.Nil(t, err)
	assert.Equal(t, types.LogisticsTakeup.ToString(), guarantee.Status)
	assert.Equal(t, "fastfreight", guarantee.LogisticsPartner)

	guarantee, err = h.services.ConfirmShipped(ctx, created.Id, "fastfreight")
	require.Nil(t, err)
	assert.Equal(t, types.GoodsShipped.ToString(), guarantee.Status)

	guarantee, err = h.services.ConfirmDelivered(ctx, created.Id, "fastfreight")
	require.Nil(t, err)
	assert.Equal(t, types.GoodsDelivered.ToString(), guarantee.Status)

	guarantee, err = h.services.PayBalance(ctx, created.Id, "buyer-co")
	require.Nil(t, err)
	assert.Equal(t, types.BalancePaymentPaid.ToString(), guarantee.Status)
	assert.Equal(t, req.TradeValue, guarantee.EscrowBalance, "escrow holds collateral plus balance")
	balance := h.ledger.lastTransfer()
	assert.Equal(t, req.TradeValue-req.CollateralAmount, balance.Amount)

	guarantee, err = h.services.IssueCertificate(ctx, created.Id, "buyer-co")
	require.Nil(t, err)
	assert.Equal(t, types.GuaranteeCompleted.ToString(), guarantee.Status)
	assert.Equal(t, int64(0), guarantee.EscrowBalance)
	release := h.ledger.lastTransfer()
	assert.Equal(t, "platform:escrow", release.From)
	assert.Equal(t, "seller-co", release.To)
	assert.Equal(t, req.TradeValue, release.Amount)
}

func TestPayCollateralOutOfOrder(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)

	// Vote not passed yet, seller not approved.
	_, err = h.services.PayCollateral(ctx, created.Id, "buyer-co")
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidStatus, err.ErrorCode)
}

func TestGuaranteePartyAuthorization(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	approveGuarantee(t, h, created.Id)

	_, err = h.services.SellerApprove(ctx, created.Id, "buyer-co")
	require.NotNil(t, err)
	assert.Equal(t, types.OnlySellerAllowed, err.ErrorCode)

	_, err = h.services.SellerApprove(ctx, created.Id, "seller-co")
	require.Nil(t, err)

	_, err = h.services.PayCollateral(ctx, created.Id, "seller-co")
	require.NotNil(t, err)
	assert.Equal(t, types.OnlyBuyerAllowed, err.ErrorCode)
}

func TestTakeUpRequiresAuthorizedPartner(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	approveGuarantee(t, h, created.Id)
	_, err = h.services.SellerApprove(ctx, created.Id, "seller-co")
	require.Nil(t, err)
	_, err = h.services.PayCollateral(ctx, created.Id, "buyer-co")
	require.Nil(t, err)
	_, err = h.services.PayIssuanceFee(ctx, created.Id, "buyer-co")
	require.Nil(t, err)

	_, err = h.services.TakeUpGuarantee(ctx, created.Id, "randomco")
	require.NotNil(t, err)
	assert.Equal(t, types.NotAuthorizedPartner, err.ErrorCode)
}

func TestOnlyTakeupPartnerConfirmsMilestones(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	approveGuarantee(t, h, created.Id)
	_, err = h.services.SellerApprove(ctx, created.Id, "seller-co")
	require.Nil(t, err)
	_, err = h.services.PayCollateral(ctx, created.Id, "buyer-co")
	require.Nil(t, err)
	_, err = h.services.PayIssuanceFee(ctx, created.Id, "buyer-co")
	require.Nil(t, err)

	require.Nil(t, h.services.AuthorizePartner(ctx, "fastfreight", "platform-admin"))
	require.Nil(t, h.services.AuthorizePartner(ctx, "slowfreight", "platform-admin"))
	_, err = h.services.TakeUpGuarantee(ctx, created.Id, "fastfreight")
	require.Nil(t, err)

	// Another authorized partner is still not the takeup partner.
	_, err = h.services.ConfirmShipped(ctx, created.Id, "slowfreight")
	require.NotNil(t, err)
	assert.Equal(t, types.NotTakeupPartner, err.ErrorCode)
}

func TestIssuanceFeeDoublePayment(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	approveGuarantee(t, h, created.Id)
	_, err = h.services.SellerApprove(ctx, created.Id, "seller-co")
	require.Nil(t, err)
	_, err = h.services.PayCollateral(ctx, created.Id, "buyer-co")
	require.Nil(t, err)
	_, err = h.services.PayIssuanceFee(ctx, created.Id, "buyer-co")
	require.Nil(t, err)

	// Status already moved on, the replay is rejected before any transfer.
	_, err = h.services.PayIssuanceFee(ctx, created.Id, "buyer-co")
	require.NotNil(t, err)
	assert.Equal(t, types.InvalidStatus, err.ErrorCode)
}

func TestIssuanceFeeRequiresTreasury(t *testing.T) {
	h := newTestHarness()
	h.services.params.TreasuryAccount = ""
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	approveGuarantee(t, h, created.Id)
	_, err = h.services.SellerApprove(ctx, created.Id, "seller-co")
	require.Nil(t, err)
	_, err = h.services.PayCollateral(ctx, created.Id, "buyer-co")
	require.Nil(t, err)

	_, err = h.services.PayIssuanceFee(ctx, created.Id, "buyer-co")
	require.NotNil(t, err)
	assert.Equal(t, types.TreasuryNotSet, err.ErrorCode)
}

func TestExpireGuaranteeVote(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)

	_, err = h.services.ExpireGuaranteeVote(ctx, created.Id)
	require.NotNil(t, err)
	assert.Equal(t, types.ValidationError, err.ErrorCode)

	h.clock.Advance(4 * 24 * time.Hour)
	guarantee, err := h.services.ExpireGuaranteeVote(ctx, created.Id)
	require.Nil(t, err)
	assert.Equal(t, types.GuaranteeExpired.ToString(), guarantee.Status)
	assert.True(t, guarantee.VoteResolved)

	// Expired guarantees accept no further votes.
	stakeFinancier(t, h, "financier-1", 5000)
	_, err = h.services.VoteOnGuarantee(ctx, created.Id, "financier-1", true)
	require.NotNil(t, err)
	assert.Equal(t, types.SubjectAlreadyResolved, err.ErrorCode)
}

func TestListGuaranteesByParty(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	_, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	otherReq := newTestGuaranteeRequest()
	otherReq.Buyer = "other-buyer"
	_, err = h.services.CreateGuarantee(ctx, otherReq)
	require.Nil(t, err)

	guarantees, _, err := h.services.ListGuarantees(ctx, "buyer-co", "", "")
	require.Nil(t, err)
	assert.Len(t, guarantees, 1)

	guarantees, _, err = h.services.ListGuarantees(ctx, "seller-co", "", "")
	require.Nil(t, err)
	assert.Len(t, guarantees, 2, "seller is party to both agreements")
}

func TestListGuaranteesFilteredByStatus(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	created, err := h.services.CreateGuarantee(ctx, newTestGuaranteeRequest())
	require.Nil(t, err)
	otherReq := newTestGuaranteeRequest()
	otherReq.Buyer = "other-buyer"
	_, err = h.services.CreateGuarantee(ctx, otherReq)
	require.Nil(t, err)

	approveGuarantee(t, h, created.Id)

	guarantees, _, err := h.services.ListGuarantees(ctx, "seller-co", types.GuaranteeApproved, "")
	require.Nil(t, err)
	require.Len(t, guarantees, 1)
	assert.Equal(t, created.Id, guarantees[0].Id)

	guarantees, _, err = h.services.ListGuarantees(ctx, "seller-co", types.GuaranteeCreated, "")
	require.Nil(t, err)
	assert.Len(t, guarantees, 1)

	guarantees, _, err = h.services.ListGuarantees(ctx, "seller-co", types.GuaranteeCompleted, "")
	require.Nil(t, err)
	assert.Empty(t, guarantees)
}
