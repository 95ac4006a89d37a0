package config

import (
	"errors"
	"fmt"
)

// AssetConfig describes one stakeable asset. Only USD-pegged assets are
// accepted; voting power and threshold math normalize amounts to a 6-decimal
// USD equivalent.
type AssetConfig struct {
	Symbol    string `mapstructure:"symbol"`
	Decimals  int    `mapstructure:"decimals"`
	UsdPegged bool   `mapstructure:"usd-pegged"`
}

type AssetsConfig struct {
	Supported []AssetConfig `mapstructure:"supported"`

	bySymbol map[string]AssetConfig
}

func (cfg *AssetsConfig) Validate() error {
	if len(cfg.Supported) == 0 {
		return errors.New("at least one supported asset must be configured")
	}

	cfg.bySymbol = make(map[string]AssetConfig, len(cfg.Supported))
	for _, asset := range cfg.Supported {
		if asset.Symbol == "" {
			return errors.New("asset symbol cannot be empty")
		}
		if asset.Decimals < 0 || asset.Decimals > 18 {
			return fmt.Errorf("asset %s decimals must be between 0 and 18", asset.Symbol)
		}
		if _, ok := cfg.bySymbol[asset.Symbol]; ok {
			return fmt.Errorf("duplicate asset symbol: %s", asset.Symbol)
		}
		cfg.bySymbol[asset.Symbol] = asset
	}

	return nil
}

// Lookup returns the configuration for the given asset symbol.
func (cfg *AssetsConfig) Lookup(symbol string) (AssetConfig, bool) {
	asset, ok := cfg.bySymbol[symbol]
	return asset, ok
}
