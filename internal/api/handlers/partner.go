package handlers

import (
	"net/http"

	"github.com/go-chi/chi"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type authorizePartnerRequestPayload struct {
	Account      string `json:"account"`
	AuthorizedBy string `json:"authorized_by"`
}

// AuthorizePartner @Summary Authorize a logistics partner
// @Description Adds an account to the logistics partner allow-list; re-authorizing is a no-op
// @Accept json
// @Produce json
// @Param request body authorizePartnerRequestPayload true "Authorize request"
// @Success 200 {object} PublicResponse[string] "Authorization result"
// @Failure 400 {object} types.Error "Error: Bad Request"
// @Router /v1/partners [post]
func (h *Handler) AuthorizePartner(request *http.Request) (*Result, *types.Error) {
	payload := &authorizePartnerRequestPayload{}
	if err := parseJSONRequest(request, payload); err != nil {
		return nil, err
	}
	account, err := parseAccountId(payload.Account, "account")
	if err != nil {
		return nil, err
	}
	authorizedBy, err := parseAccountId(payload.AuthorizedBy, "authorized_by")
	if err != nil {
		return nil, err
	}

	if err := h.services.AuthorizePartner(request.Context(), account, authorizedBy); err != nil {
		return nil, err
	}
	return NewResult("Partner authorized"), nil
}

// DeauthorizePartner @Summary Remove a logistics partner
// @Description Removes an account from the allow-list; existing takeups are unaffected
// @Produce json
// @Param account path string true "Partner account id"
// @Success 200 {object} PublicResponse[string] "Deauthorization result"
// @Failure 404 {object} types.Error "Error: Not Found"
// @Router /v1/partners/{account} [delete]
func (h *Handler) DeauthorizePartner(request *http.Request) (*Result, *types.Error) {
	account, err := parseAccountId(chi.URLParam(request, "account"), "account")
	if err != nil {
		return nil, err
	}

	if err := h.services.DeauthorizePartner(request.Context(), account); err != nil {
		return nil, err
	}
	return NewResult("Partner deauthorized"), nil
}

// ListPartners @Summary List authorized logistics partners
// @Produce json
// @Success 200 {object} PublicResponse[[]services.AuthorizedPartnerPublic] "List of authorized partners"
// @Router /v1/partners [get]
func (h *Handler) ListPartners(request *http.Request) (*Result, *types.Error) {
	partners, err := h.services.ListPartners(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(partners), nil
}
