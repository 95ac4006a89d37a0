package handlers

import (
	"net/http"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

// GetProtocolParams @Summary Get protocol parameters
// @Description Retrieves the staking, voting and treasury configuration
// @Produce json
// @Success 200 {object} PublicResponse[services.ProtocolParamsPublic] "Protocol params"
// @Router /v1/params [get]
func (h *Handler) GetProtocolParams(request *http.Request) (*Result, *types.Error) {
	params, err := h.services.GetProtocolParams(request.Context())
	if err != nil {
		return nil, err
	}
	return NewResult(params), nil
}
