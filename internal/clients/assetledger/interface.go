package assetledger

import (
	"context"
	"net/http"

	"github.com/blockfinax/guarantee-api-service/internal/types"
)

// AssetLedgerClientInterface is the boundary to the platform's asset routing
// layer. Transfers are atomic on the ledger side: a non-nil error means no
// funds moved.
type AssetLedgerClientInterface interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() int
	GetHttpClient() *http.Client
	// Transfer moves amount of asset (smallest unit) between platform
	// accounts. Transfer-in requires the source account to have pre-authorized
	// the pull.
	Transfer(ctx context.Context, from, to, asset string, amount int64, reference string) *types.Error
	PoolAccount() string
	EscrowAccount() string
}
