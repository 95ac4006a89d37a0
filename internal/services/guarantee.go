package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/blockfinax/guarantee-api-service/internal/db"
	"github.com/blockfinax/guarantee-api-service/internal/db/model"
	"github.com/blockfinax/guarantee-api-service/internal/observability/metrics"
	"github.com/blockfinax/guarantee-api-service/internal/queue/client"
	"github.com/blockfinax/guarantee-api-service/internal/types"
	"github.com/blockfinax/guarantee-api-service/internal/utils"
)

type GuaranteePublic struct {
	Id               string `json:"id"`
	Buyer            string `json:"buyer"`
	Seller           string `json:"seller"`
	LogisticsPartner string `json:"logistics_partner,omitempty"`
	Asset            string `json:"asset"`

	TradeValue       int64 `json:"trade_value"`
	GuaranteeAmount  int64 `json:"guarantee_amount"`
	CollateralAmount int64 `json:"collateral_amount"`
	IssuanceFee      int64 `json:"issuance_fee"`
	EscrowBalance    int64 `json:"escrow_balance"`

	Status string `json:"status"`

	VotesForBps     int64 `json:"votes_for_bps"`
	VotesAgainstBps int64 `json:"votes_against_bps"`
	VotingDeadline  int64 `json:"voting_deadline"`
	VoteResolved    bool  `json:"vote_resolved"`

	CompanyName      string   `json:"company_name"`
	TradeDescription string   `json:"trade_description"`
	DocumentRefs     []string `json:"document_refs,omitempty"`

	CreatedAt int64 `json:"created_at"`
}

type CreateGuaranteeRequest struct {
	Buyer            string
	Seller           string
	Asset            string
	TradeValue       int64
	GuaranteeAmount  int64
	CollateralAmount int64
	IssuanceFee      int64
	CompanyName      string
	TradeDescription string
	DocumentRefs     []string
}

func invalidStatusError(expected, actual types.GuaranteeStatus) *types.Error {
	return types.NewErrorWithMsg(
		http.StatusForbidden, types.InvalidStatus,
		fmt.Sprintf("guarantee must be in status %s, current status is %s", expected, actual),
	)
}

// CreateGuarantee opens a new guarantee agreement in the created status and
// starts its financier voting window. No funds move at creation.
func (s *Services) CreateGuarantee(
	ctx context.Context, req *CreateGuaranteeRequest,
) (*GuaranteePublic, *types.Error) {
	if req.Buyer == req.Seller {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "buyer and seller cannot be the same account",
		)
	}
	if req.TradeValue <= 0 || req.GuaranteeAmount <= 0 {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "trade value and guarantee amount must be positive",
		)
	}
	if req.CollateralAmount <= 0 || req.CollateralAmount >= req.TradeValue {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "collateral amount must be positive and below the trade value",
		)
	}
	if req.IssuanceFee < 0 {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "issuance fee cannot be negative",
		)
	}
	if req.CompanyName == "" || req.TradeDescription == "" {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "company name and trade description cannot be empty",
		)
	}
	if _, valErr := s.resolveAsset(req.Asset); valErr != nil {
		return nil, valErr
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	now := s.now().Unix()
	guarantee := &model.GuaranteeDocument{
		Id:               uuid.NewString(),
		Buyer:            req.Buyer,
		Seller:           req.Seller,
		Asset:            req.Asset,
		TradeValue:       req.TradeValue,
		GuaranteeAmount:  req.GuaranteeAmount,
		CollateralAmount: req.CollateralAmount,
		IssuanceFee:      req.IssuanceFee,
		Status:           types.GuaranteeCreated,
		VotingDeadline:   now + s.params.Voting.GuaranteeVotingDuration,
		Voters:           []string{},
		CompanyName:      req.CompanyName,
		TradeDescription: req.TradeDescription,
		DocumentRefs:     req.DocumentRefs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.DbClient.InsertGuarantee(ctx, guarantee); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while inserting guarantee")
		return nil, types.NewInternalServiceError(err)
	}

	s.emitStatusEvent(ctx, guarantee.Id, "", guarantee.Status, req.Buyer, now)
	return toGuaranteePublic(guarantee), nil
}

// VoteOnGuarantee casts one financier vote on a pending guarantee. Approval
// requires the for-tally to reach the configured share of the TOTAL pool
// power, so abstaining counts against approval.
func (s *Services) VoteOnGuarantee(
	ctx context.Context, guaranteeId, voter string, support bool,
) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}

	now := s.now().Unix()
	if guarantee.VoteResolved || guarantee.Status != types.GuaranteeCreated {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.SubjectAlreadyResolved, "guarantee vote has already been resolved",
		)
	}
	if now > guarantee.VotingDeadline {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.VotingPeriodEnded, "voting period for this guarantee has ended",
		)
	}
	if utils.Contains(guarantee.Voters, voter) {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.AlreadyVoted, "account has already voted on this guarantee",
		)
	}

	power, powerErr := s.financierPower(ctx, voter)
	if powerErr != nil {
		return nil, powerErr
	}

	if support {
		guarantee.VotesForBps += power
	} else {
		guarantee.VotesAgainstBps += power
	}
	guarantee.Voters = append(guarantee.Voters, voter)
	guarantee.UpdatedAt = now

	fromStatus := guarantee.Status
	approved := guarantee.VotesForBps >= s.params.Voting.GuaranteeApprovalThresholdBps
	if approved {
		guarantee.VoteResolved = true
		guarantee.Status = types.GuaranteeApproved
	}

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToGuaranteeApproved()); err != nil {
		return nil, err
	}

	s.emitActivityEvent(ctx, client.VoteCastEventType, client.NewVoteCastEvent(
		guarantee.Id, subjectKindGuarantee, voter, support, power, guarantee.VoteResolved, now,
	))
	if approved {
		s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, voter, now)
	}
	return toGuaranteePublic(guarantee), nil
}

// SellerApprove records the seller's acceptance of the agreement terms after
// the financier vote passed.
func (s *Services) SellerApprove(ctx context.Context, guaranteeId, caller string) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if caller != guarantee.Seller {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.OnlySellerAllowed, "only the seller can approve the agreement",
		)
	}
	if guarantee.Status != types.GuaranteeApproved {
		return nil, invalidStatusError(types.GuaranteeApproved, guarantee.Status)
	}

	now := s.now().Unix()
	fromStatus := guarantee.Status
	guarantee.Status = types.SellerApproved
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToSellerApproved()); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, caller, now)
	return toGuaranteePublic(guarantee), nil
}

// PayCollateral pulls the buyer's collateral into escrow.
func (s *Services) PayCollateral(ctx context.Context, guaranteeId, caller string) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if caller != guarantee.Buyer {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.OnlyBuyerAllowed, "only the buyer can pay the collateral",
		)
	}
	if guarantee.Status != types.SellerApproved {
		return nil, invalidStatusError(types.SellerApproved, guarantee.Status)
	}

	transferErr := s.Clients.AssetLedger.Transfer(
		ctx, guarantee.Buyer, s.Clients.AssetLedger.EscrowAccount(),
		guarantee.Asset, guarantee.CollateralAmount, guarantee.Id,
	)
	if transferErr != nil {
		return nil, transferErr
	}

	now := s.now().Unix()
	fromStatus := guarantee.Status
	guarantee.EscrowBalance += guarantee.CollateralAmount
	guarantee.CollateralPaid = true
	guarantee.Status = types.CollateralPaid
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToCollateralPaid()); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, caller, now)
	return toGuaranteePublic(guarantee), nil
}

// PayIssuanceFee routes the issuance fee from the buyer to the treasury and
// notifies the logistics network. The fee never enters escrow.
func (s *Services) PayIssuanceFee(ctx context.Context, guaranteeId, caller string) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if caller != guarantee.Buyer {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.OnlyBuyerAllowed, "only the buyer can pay the issuance fee",
		)
	}
	if guarantee.Status != types.CollateralPaid {
		return nil, invalidStatusError(types.CollateralPaid, guarantee.Status)
	}
	if guarantee.IssuanceFeePaid {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.IssuanceFeeAlreadyPaid, "issuance fee has already been paid",
		)
	}
	if guarantee.IssuanceFee > 0 && s.params.TreasuryAccount == "" {
		return nil, types.NewErrorWithMsg(
			http.StatusInternalServerError, types.TreasuryNotSet, "treasury account is not configured",
		)
	}

	if guarantee.IssuanceFee > 0 {
		transferErr := s.Clients.AssetLedger.Transfer(
			ctx, guarantee.Buyer, s.params.TreasuryAccount,
			guarantee.Asset, guarantee.IssuanceFee, guarantee.Id,
		)
		if transferErr != nil {
			return nil, transferErr
		}
	}

	now := s.now().Unix()
	fromStatus := guarantee.Status
	guarantee.IssuanceFeePaid = true
	guarantee.Status = types.LogisticsNotified
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToLogisticsNotified()); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, caller, now)
	return toGuaranteePublic(guarantee), nil
}

// TakeUpGuarantee lets an authorized logistics partner claim the shipment job.
// First claim wins; the partner is then the only account that can confirm
// shipment milestones.
func (s *Services) TakeUpGuarantee(ctx context.Context, guaranteeId, partner string) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	authorized, err := s.DbClient.IsAuthorizedPartner(ctx, partner)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while checking partner authorization")
		return nil, types.NewInternalServiceError(err)
	}
	if !authorized {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.NotAuthorizedPartner, "account is not an authorized logistics partner",
		)
	}

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if guarantee.Status != types.LogisticsNotified {
		return nil, invalidStatusError(types.LogisticsNotified, guarantee.Status)
	}

	now := s.now().Unix()
	fromStatus := guarantee.Status
	guarantee.LogisticsPartner = partner
	guarantee.Status = types.LogisticsTakeup
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToLogisticsTakeup()); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, partner, now)
	return toGuaranteePublic(guarantee), nil
}

// ConfirmShipped records the takeup partner's shipment confirmation.
func (s *Services) ConfirmShipped(ctx context.Context, guaranteeId, caller string) (*GuaranteePublic, *types.Error) {
	return s.confirmLogisticsMilestone(
		ctx, guaranteeId, caller,
		types.LogisticsTakeup, types.GoodsShipped, utils.QualifiedStatesToGoodsShipped(),
	)
}

// ConfirmDelivered records the takeup partner's delivery confirmation.
func (s *Services) ConfirmDelivered(ctx context.Context, guaranteeId, caller string) (*GuaranteePublic, *types.Error) {
	return s.confirmLogisticsMilestone(
		ctx, guaranteeId, caller,
		types.GoodsShipped, types.GoodsDelivered, utils.QualifiedStatesToGoodsDelivered(),
	)
}

func (s *Services) confirmLogisticsMilestone(
	ctx context.Context, guaranteeId, caller string,
	expected, next types.GuaranteeStatus, eligible []types.GuaranteeStatus,
) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if guarantee.Status != expected {
		return nil, invalidStatusError(expected, guarantee.Status)
	}
	if caller != guarantee.LogisticsPartner {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.NotTakeupPartner, "only the takeup partner can confirm this milestone",
		)
	}

	now := s.now().Unix()
	fromStatus := guarantee.Status
	guarantee.Status = next
	switch next {
	case types.GoodsShipped:
		guarantee.GoodsShipped = true
	case types.GoodsDelivered:
		guarantee.GoodsDelivered = true
	}
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, eligible); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, caller, now)
	return toGuaranteePublic(guarantee), nil
}

// PayBalance pulls the remaining trade value from the buyer into escrow after
// delivery was confirmed.
func (s *Services) PayBalance(ctx context.Context, guaranteeId, caller string) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if caller != guarantee.Buyer {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.OnlyBuyerAllowed, "only the buyer can pay the balance",
		)
	}
	if guarantee.Status != types.GoodsDelivered {
		return nil, invalidStatusError(types.GoodsDelivered, guarantee.Status)
	}

	balance := guarantee.TradeValue - guarantee.CollateralAmount
	transferErr := s.Clients.AssetLedger.Transfer(
		ctx, guarantee.Buyer, s.Clients.AssetLedger.EscrowAccount(),
		guarantee.Asset, balance, guarantee.Id,
	)
	if transferErr != nil {
		return nil, transferErr
	}

	now := s.now().Unix()
	fromStatus := guarantee.Status
	guarantee.EscrowBalance += balance
	guarantee.BalancePaymentPaid = true
	guarantee.Status = types.BalancePaymentPaid
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToBalancePaymentPaid()); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, caller, now)
	return toGuaranteePublic(guarantee), nil
}

// IssueCertificate closes the agreement: the full escrow balance is released
// to the seller and the guarantee completes.
func (s *Services) IssueCertificate(ctx context.Context, guaranteeId, caller string) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if caller != guarantee.Buyer {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.OnlyBuyerAllowed, "only the buyer can issue the certificate",
		)
	}
	if !utils.Contains(utils.QualifiedStatesToCompleted(), guarantee.Status) {
		return nil, invalidStatusError(types.BalancePaymentPaid, guarantee.Status)
	}

	payout := guarantee.EscrowBalance
	if payout > 0 {
		transferErr := s.Clients.AssetLedger.Transfer(
			ctx, s.Clients.AssetLedger.EscrowAccount(), guarantee.Seller,
			guarantee.Asset, payout, guarantee.Id,
		)
		if transferErr != nil {
			return nil, transferErr
		}
	}

	now := s.now().Unix()
	fromStatus := guarantee.Status
	guarantee.EscrowBalance = 0
	guarantee.CertificateIssued = true
	guarantee.Status = types.GuaranteeCompleted
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToCompleted()); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, caller, now)
	return toGuaranteePublic(guarantee), nil
}

// ExpireGuaranteeVote closes out a guarantee whose financier vote missed its
// deadline without reaching the threshold. Anyone may trigger the close-out.
func (s *Services) ExpireGuaranteeVote(ctx context.Context, guaranteeId string) (*GuaranteePublic, *types.Error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	if guarantee.Status != types.GuaranteeCreated {
		return nil, types.NewErrorWithMsg(
			http.StatusForbidden, types.SubjectAlreadyResolved, "guarantee vote has already been resolved",
		)
	}
	now := s.now().Unix()
	if now <= guarantee.VotingDeadline {
		return nil, types.NewErrorWithMsg(
			http.StatusBadRequest, types.ValidationError, "voting period for this guarantee is still open",
		)
	}

	fromStatus := guarantee.Status
	guarantee.VoteResolved = true
	guarantee.Status = types.GuaranteeExpired
	guarantee.UpdatedAt = now

	if err := s.transitionGuarantee(ctx, guarantee, utils.QualifiedStatesToExpired()); err != nil {
		return nil, err
	}
	s.emitStatusEvent(ctx, guarantee.Id, fromStatus, guarantee.Status, "", now)
	return toGuaranteePublic(guarantee), nil
}

func (s *Services) GetGuarantee(ctx context.Context, guaranteeId string) (*GuaranteePublic, *types.Error) {
	guarantee, findErr := s.findGuarantee(ctx, guaranteeId)
	if findErr != nil {
		return nil, findErr
	}
	return toGuaranteePublic(guarantee), nil
}

func (s *Services) ListGuarantees(
	ctx context.Context, party string, status types.GuaranteeStatus, paginationToken string,
) ([]GuaranteePublic, string, *types.Error) {
	resultMap, err := s.DbClient.FindGuaranteesByParty(ctx, party, status, paginationToken)
	if err != nil {
		if db.IsInvalidPaginationTokenError(err) {
			log.Ctx(ctx).Warn().Err(err).Msg("invalid pagination token while fetching guarantees")
			return nil, "", types.NewError(http.StatusBadRequest, types.BadRequest, err)
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching guarantees")
		return nil, "", types.NewInternalServiceError(err)
	}

	guarantees := make([]GuaranteePublic, 0, len(resultMap.Data))
	for i := range resultMap.Data {
		guarantees = append(guarantees, *toGuaranteePublic(&resultMap.Data[i]))
	}
	return guarantees, resultMap.PaginationToken, nil
}

func (s *Services) findGuarantee(ctx context.Context, guaranteeId string) (*model.GuaranteeDocument, *types.Error) {
	guarantee, err := s.DbClient.FindGuaranteeById(ctx, guaranteeId)
	if err != nil {
		var notFoundErr *db.NotFoundError
		if errors.As(err, &notFoundErr) {
			return nil, types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "guarantee not found")
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching guarantee")
		return nil, types.NewInternalServiceError(err)
	}
	return guarantee, nil
}

// transitionGuarantee persists the mutated guarantee, requiring the stored
// status to still be one of the eligible previous states. A status raced
// forward by another writer surfaces as INVALID_STATUS, not as a silent
// overwrite.
func (s *Services) transitionGuarantee(
	ctx context.Context, guarantee *model.GuaranteeDocument, eligiblePreviousStates []types.GuaranteeStatus,
) *types.Error {
	err := s.DbClient.TransitionGuarantee(ctx, guarantee, eligiblePreviousStates)
	if err != nil {
		var notFoundErr *db.NotFoundError
		if errors.As(err, &notFoundErr) {
			return types.NewErrorWithMsg(
				http.StatusForbidden, types.InvalidStatus, "guarantee status changed concurrently",
			)
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while transitioning guarantee status")
		return types.NewInternalServiceError(err)
	}
	return nil
}

func (s *Services) emitStatusEvent(
	ctx context.Context, guaranteeId string, from, to types.GuaranteeStatus, actor string, now int64,
) {
	metrics.RecordGuaranteeStatusTransition(from.ToString(), to.ToString())
	s.emitActivityEvent(ctx, client.GuaranteeStatusEventType, client.NewGuaranteeStatusEvent(
		guaranteeId, from.ToString(), to.ToString(), actor, now,
	))
}

func toGuaranteePublic(guarantee *model.GuaranteeDocument) *GuaranteePublic {
	return &GuaranteePublic{
		Id:               guarantee.Id,
		Buyer:            guarantee.Buyer,
		Seller:           guarantee.Seller,
		LogisticsPartner: guarantee.LogisticsPartner,
		Asset:            guarantee.Asset,
		TradeValue:       guarantee.TradeValue,
		GuaranteeAmount:  guarantee.GuaranteeAmount,
		CollateralAmount: guarantee.CollateralAmount,
		IssuanceFee:      guarantee.IssuanceFee,
		EscrowBalance:    guarantee.EscrowBalance,
		Status:           guarantee.Status.ToString(),
		VotesForBps:      guarantee.VotesForBps,
		VotesAgainstBps:  guarantee.VotesAgainstBps,
		VotingDeadline:   guarantee.VotingDeadline,
		VoteResolved:     guarantee.VoteResolved,
		CompanyName:      guarantee.CompanyName,
		TradeDescription: guarantee.TradeDescription,
		DocumentRefs:     guarantee.DocumentRefs,
		CreatedAt:        guarantee.CreatedAt,
	}
}
