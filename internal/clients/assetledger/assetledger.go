package assetledger

import (
	"context"
	"net/http"

	baseclient "github.com/blockfinax/guarantee-api-service/internal/clients/base"
	"github.com/blockfinax/guarantee-api-service/internal/config"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

type AssetLedgerClient struct {
	config     *config.AssetLedgerConfig
	httpClient *http.Client
}

func NewAssetLedgerClient(cfg *config.AssetLedgerConfig) *AssetLedgerClient {
	httpClient := &http.Client{}
	return &AssetLedgerClient{
		cfg,
		httpClient,
	}
}

// Necessary for the BaseClient interface
func (c *AssetLedgerClient) GetBaseURL() string {
	return c.config.BaseUrl
}

func (c *AssetLedgerClient) GetDefaultRequestTimeout() int {
	return c.config.Timeout
}

func (c *AssetLedgerClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *AssetLedgerClient) PoolAccount() string {
	return c.config.PoolAccount
}

func (c *AssetLedgerClient) EscrowAccount() string {
	return c.config.EscrowAccount
}

type transferRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Asset     string `json:"asset"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

type transferResponse struct {
	TransferId string `json:"transfer_id"`
	Status     string `json:"status"`
}

// Transfer executes an atomic balance movement on the platform ledger. The
// reference ties the movement back to the operation that caused it (stake id,
// guarantee id) for reconciliation.
func (c *AssetLedgerClient) Transfer(
	ctx context.Context, from, to, asset string, amount int64, reference string,
) *types.Error {
	payload := &transferRequest{
		From:      from,
		To:        to,
		Asset:     asset,
		Amount:    amount,
		Reference: reference,
	}

	opts := &baseclient.BaseClientOptions{
		Path:    "/v1/transfers",
		Headers: map[string]string{"Content-Type": "application/json"},
	}

	_, err := baseclient.SendRequest[transferRequest, transferResponse](
		ctx, c, http.MethodPost, opts, payload,
	)
	return err
}
