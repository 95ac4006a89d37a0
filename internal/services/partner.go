package services

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/blockfinax/guarantee-api-service/internal/db"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type AuthorizedPartnerPublic struct {
	Account      string `json:"account"`
	AuthorizedBy string `json:"authorized_by"`
	CreatedAt    int64  `json:"created_at"`
}

// AuthorizePartner adds an account to the logistics partner allow-list.
// Re-authorizing an existing partner is a no-op.
func (s *Services) AuthorizePartner(ctx context.Context, account, authorizedBy string) *types.Error {
	err := s.DbClient.SaveAuthorizedPartner(ctx, account, authorizedBy, s.now().Unix())
	if err != nil {
		if db.IsDuplicateKeyError(err) {
			return nil
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while saving authorized partner")
		return types.NewInternalServiceError(err)
	}
	return nil
}

// DeauthorizePartner removes an account from the allow-list. Guarantees the
// partner already took up are unaffected; the takeup binding is per-record.
func (s *Services) DeauthorizePartner(ctx context.Context, account string) *types.Error {
	err := s.DbClient.DeleteAuthorizedPartner(ctx, account)
	if err != nil {
		if db.IsNotFoundError(err) {
			return types.NewErrorWithMsg(http.StatusNotFound, types.NotFound, "authorized partner not found")
		}
		log.Ctx(ctx).Error().Err(err).Msg("error while deleting authorized partner")
		return types.NewInternalServiceError(err)
	}
	return nil
}

func (s *Services) ListPartners(ctx context.Context) ([]AuthorizedPartnerPublic, *types.Error) {
	partners, err := s.DbClient.FindAuthorizedPartners(ctx)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("error while fetching authorized partners")
		return nil, types.NewInternalServiceError(err)
	}

	result := make([]AuthorizedPartnerPublic, 0, len(partners))
	for _, partner := range partners {
		result = append(result, AuthorizedPartnerPublic{
			Account:      partner.Account,
			AuthorizedBy: partner.AuthorizedBy,
			CreatedAt:    partner.CreatedAt,
		})
	}
	return result, nil
}
