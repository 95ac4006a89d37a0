package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

func TestAuthorizePartnerIsIdempotent(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	require.Nil(t, h.services.AuthorizePartner(ctx, "fastfreight", "platform-admin"))
	require.Nil(t, h.services.AuthorizePartner(ctx, "fastfreight", "someone-else"))

	partners, err := h.services.ListPartners(ctx)
	require.Nil(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "platform-admin", partners[0].AuthorizedBy, "first authorization wins")
}

func TestDeauthorizePartner(t *testing.T) {
	h := newTestHarness()
	ctx := context.Background()

	require.Nil(t, h.services.AuthorizePartner(ctx, "fastfreight", "platform-admin"))
	require.Nil(t, h.services.DeauthorizePartner(ctx, "fastfreight"))

	err := h.services.DeauthorizePartner(ctx, "fastfreight")
	require.NotNil(t, err)
	assert.Equal(t, types.NotFound, err.ErrorCode)

	partners, listErr := h.services.ListPartners(ctx)
	require.Nil(t, listErr)
	assert.Empty(t, partners)
}
