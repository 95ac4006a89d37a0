package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/blockfinax/guarantee-api-service/internal/config"
	"github.com/blockfinax/guarantee-api-service/internal/services"
	"github.com/blockfinax/guarantee-api-service/internal/types"
	"github.com/blockfinax/guarantee-api-service/internal/utils"
)

type Handler struct {
	config   *config.Config
	services *services.Services
}

type paginationResponse struct {
	NextKey string `json:"next_key"`
}

type PublicResponse[T any] struct {
	Data       T                   `json:"data"`
	Pagination *paginationResponse `json:"pagination,omitempty"`
}

type Result struct {
	Data   interface{}
	Status int
}

// NewResult returns a successful result, with default status code 200
func NewResultWithPagination[T any](data T, pageToken string) *Result {
	res := &PublicResponse[T]{Data: data, Pagination: &paginationResponse{NextKey: pageToken}}
	return &Result{Data: res, Status: http.StatusOK}
}

func NewResult[T any](data T) *Result {
	res := &PublicResponse[T]{Data: data}
	return &Result{Data: res, Status: http.StatusOK}
}

func New(
	ctx context.Context, cfg *config.Config, services *services.Services,
) (*Handler, error) {
	return &Handler{
		config:   cfg,
		services: services,
	}, nil
}

// parseJSONRequest decodes the request body into the given payload.
func parseJSONRequest(request *http.Request, payload interface{}) *types.Error {
	if err := json.NewDecoder(request.Body).Decode(payload); err != nil {
		return types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid request payload")
	}
	return nil
}

// parseAccountId validates an account identifier from a request field.
func parseAccountId(account, fieldName string) (string, *types.Error) {
	if account == "" {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, fieldName+" is required")
	}
	if !utils.IsValidAccountId(account) {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid "+fieldName)
	}
	return account, nil
}

// parseAssetSymbol validates an asset symbol from a request field.
func parseAssetSymbol(asset string) (string, *types.Error) {
	if asset == "" {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "asset is required")
	}
	if !utils.IsValidAssetSymbol(asset) {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid asset symbol")
	}
	return asset, nil
}

// parseSubjectId validates a proposal or guarantee id from the url path.
func parseSubjectId(id, fieldName string) (string, *types.Error) {
	if id == "" {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, fieldName+" is required")
	}
	if !utils.IsValidSubjectId(id) {
		return "", types.NewErrorWithMsg(http.StatusBadRequest, types.BadRequest, "invalid "+fieldName)
	}
	return id, nil
}
