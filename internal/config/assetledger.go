package config

import (
	"errors"
	"net/url"
)

// AssetLedgerConfig points at the platform's asset routing layer, which moves
// fungible asset balances on our behalf as part of each operation.
type AssetLedgerConfig struct {
	BaseUrl string `mapstructure:"base-url"`
	// Timeout for a single asset ledger call, in milliseconds.
	Timeout int `mapstructure:"timeout"`
	// PoolAccount holds staked principal; EscrowAccount holds guarantee escrow.
	PoolAccount   string `mapstructure:"pool-account"`
	EscrowAccount string `mapstructure:"escrow-account"`
}

func (cfg *AssetLedgerConfig) Validate() error {
	if cfg.BaseUrl == "" {
		return errors.New("asset-ledger base-url cannot be empty")
	}

	parsedURL, err := url.ParseRequestURI(cfg.BaseUrl)
	if err != nil {
		return errors.New("invalid asset-ledger base-url")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("asset-ledger base-url must start with http or https")
	}

	if cfg.Timeout <= 0 {
		return errors.New("asset-ledger timeout cannot be smaller or equal to 0")
	}

	if cfg.PoolAccount == "" {
		return errors.New("asset-ledger pool-account cannot be empty")
	}

	if cfg.EscrowAccount == "" {
		return errors.New("asset-ledger escrow-account cannot be empty")
	}

	return nil
}
