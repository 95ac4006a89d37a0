package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/blockfinax/guarantee-api-service/internal/services"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type createGuaranteeRequestPayload struct {
	Buyer            string   `json:"buyer"`
	Seller           string   `json:"seller"`
	Asset            string   `json:"asset"`
	TradeValue       int64    `json:"trade_value"`
	GuaranteeAmount  int64    `json:"guarantee_amount"`
	CollateralAmount int64    `json:"collateral_amount"`
	IssuanceFee      int64    `json:"issuance_fee"`
	CompanyName      string   `json:"company_name"`
	TradeDescription string   `json:"trade_description"`
	DocumentRefs     []string `json:"document_refs"`
}

type guaranteeActionPayload struct {
	Caller string `json:"caller"`
}

// parseGuaranteeAction extracts the guarantee id from the url path and the
// acting account from the request body, shared by every lifecycle action.
func (h *Handler) parseGuaranteeAction(request *http.Request) (string, string, *types.Error) {
	guaranteeId, err := parseSubjectId(chi.URLParam(request, "guaranteeId"), "guaranteeId")
	if err != nil {
		return "", "", err
	}
	payload := &guaranteeActionPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return "", "", err
	}
	caller, err := parseAccountId(payload.Caller, "caller")
	if err != nil {
		return "", "", err
	}
	return guaranteeId, caller, nil
}

// CreateGuarantee @Summary Create a guarantee agreement
// @Description Opens a guarantee in the created status and starts its financier voting window
// @Accept json
// @Produce json
// @Param request body createGuaranteeRequestPayload true "Guarantee request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Created guarantee"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/guarantees [post]
func (h *Handler) CreateGuarantee(request *http.Request) (*Result, *types.Error) {
	payload := &createGuaranteeRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	buyer, err := parseAccountId(payload.Buyer, "buyer")
	if err != nil {
		return nil, err
	}
	seller, err := parseAccountId(payload.Seller, "seller")
	if err != nil {
		return nil, err
	}
	asset, err := parseAssetSymbol(payload.Asset)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.CreateGuarantee(request.Context(), &services.CreateGuaranteeRequest{
		Buyer:            buyer,
		Seller:           seller,
		Asset:            asset,
		TradeValue:       payload.TradeValue,
		GuaranteeAmount:  payload.GuaranteeAmount,
		CollateralAmount: payload.CollateralAmount,
		IssuanceFee:      payload.IssuanceFee,
		CompanyName:      payload.CompanyName,
		TradeDescription: payload.TradeDescription,
		DocumentRefs:     payload.DocumentRefs,
	})
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// VoteOnGuarantee @Summary Vote on a guarantee
// @Description Casts one weighted financier vote; approval requires the configured share of total pool power
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body voteRequestPayload true "Vote request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/votes [post]
func (h *Handler) VoteOnGuarantee(request *http.Request) (*Result, *types.Error) {
	guaranteeId, err := parseSubjectId(chi.URLParam(request, "guaranteeId"), "guaranteeId")
	if err != nil {
		return nil, err
	}
	payload := &voteRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	voter, err := parseAccountId(payload.Voter, "voter")
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.VoteOnGuarantee(request.Context(), guaranteeId, voter, payload.Support)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// ExpireGuaranteeVote @Summary Close out an expired guarantee vote
// @Description Expires a guarantee whose financier vote missed its deadline
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Expired guarantee"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/guarantees/{guaranteeId}/expire [post]
func (h *Handler) ExpireGuaranteeVote(request *http.Request) (*Result, *types.Error) {
	guaranteeId, err := parseSubjectId(chi.URLParam(request, "guaranteeId"), "guaranteeId")
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.ExpireGuaranteeVote(request.Context(), guaranteeId)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// SellerApprove @Summary Seller approves the agreement
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/seller-approve [post]
func (h *Handler) SellerApprove(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.SellerApprove(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// PayCollateral @Summary Buyer pays the collateral into escrow
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/pay-collateral [post]
func (h *Handler) PayCollateral(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.PayCollateral(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// PayIssuanceFee @Summary Buyer pays the issuance fee
// @Description Routes the fee to the treasury and notifies the logistics network
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/pay-issuance-fee [post]
func (h *Handler) PayIssuanceFee(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.PayIssuanceFee(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// TakeUpGuarantee @Summary Logistics partner claims the shipment job
// @Description First authorized partner to take up the guarantee wins the job
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/take-up [post]
func (h *Handler) TakeUpGuarantee(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.TakeUpGuarantee(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// ConfirmShipped @Summary Takeup partner confirms shipment
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/confirm-shipped [post]
func (h *Handler) ConfirmShipped(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.ConfirmShipped(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// ConfirmDelivered @Summary Takeup partner confirms delivery
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/confirm-delivered [post]
func (h *Handler) ConfirmDelivered(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.ConfirmDelivered(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// PayBalance @Summary Buyer pays the balance into escrow
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Updated guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/pay-balance [post]
func (h *Handler) PayBalance(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.PayBalance(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// IssueCertificate @Summary Issue the certificate and complete the guarantee
// @Description Releases the full escrow balance to the seller and completes the agreement
// @Accept json
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Param request body guaranteeActionPayload true "Action request"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Completed guarantee"
// @Failure 403 {object} types.Error "Error: Forbidden"
// @Router /v1/guarantees/{guaranteeId}/issue-certificate [post]
func (h *Handler) IssueCertificate(request *http.Request) (*Result, *types.Error) {
	guaranteeId, caller, err := h.parseGuaranteeAction(request)
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.IssueCertificate(request.Context(), guaranteeId, caller)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// GetGuarantee @Summary Get a guarantee
// @Produce json
// @Param guaranteeId path string true "Guarantee id"
// @Success 200 {object} PublicResponse[services.GuaranteePublic] "Guarantee"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/guarantees/{guaranteeId} [get]
func (h *Handler) GetGuarantee(request *http.Request) (*Result, *types.Error) {
	guaranteeId, err := parseSubjectId(chi.URLParam(request, "guaranteeId"), "guaranteeId")
	if err != nil {
		return nil, err
	}

	guarantee, err := h.services.GetGuarantee(request.Context(), guaranteeId)
	if err != nil {
		return nil, err
	}
	return NewResult(guarantee), nil
}

// ListGuarantees @Summary List guarantees for a party
// @Description Retrieves guarantees where the account is buyer, seller or logistics partner
// @Produce json
// @Param party query string true "Party account id"
// @Param status query string false "Filter by guarantee status"
// @Param pagination_key query string false "Pagination key to fetch the next page of guarantees"
// @Success 200 {object} PublicResponse[[]services.GuaranteePublic]{array} "List of guarantees and pagination token"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/guarantees [get]
func (h *Handler) ListGuarantees(request *http.Request) (*Result, *types.Error) {
	party, err := parseAccountId(request.URL.Query().Get("party"), "party")
	if err != nil {
		return nil, err
	}
	var status types.GuaranteeStatus
	if rawStatus := request.URL.Query().Get("status"); rawStatus != "" {
		parsed, parseErr := types.FromStringToGuaranteeStatus(rawStatus)
		if parseErr != nil {
			return nil, types.NewError(http.StatusBadRequest, types.BadRequest, parseErr)
		}
		status = parsed
	}
	paginationKey := request.URL.Query().Get("pagination_key")

	guarantees, newPaginationKey, err := h.services.ListGuarantees(request.Context(), party, status, paginationKey)
	if err != nil {
		return nil, err
	}
	return NewResultWithPagination(guarantees, newPaginationKey), nil
}
