package clients

import (
	"github.com/blockfinax/guarantee-api-service/internal/clients/assetledger"
	"github.com/blockfinax/guarantee-api-service/internal/config"
)

type Clients struct {
	AssetLedger assetledger.AssetLedgerClientInterface
}

func New(cfg *config.Config) *Clients {
	assetLedgerClient := assetledger.NewAssetLedgerClient(&cfg.AssetLedger)

	return &Clients{
		AssetLedger: assetLedgerClient,
	}
}
