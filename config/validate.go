package config

import (
	"errors"
	"fmt"
	"math"
)

// Validate ensures the configuration can enter the trading loop.
// Failures here are fatal at startup; the loop is never started on bad config.
func Validate(cfg AppConfig) error {
	if cfg.Asset == "" {
		return errors.New("asset is required")
	}
	numerics := map[string]float64{
		"strategy.orderSize":      cfg.Strategy.OrderSize,
		"strategy.spreadBps":      cfg.Strategy.SpreadBps,
		"strategy.skewBpsPerUnit": cfg.Strategy.SkewBpsPerUnit,
		"risk.maxPositionAbs":     cfg.Risk.MaxPositionAbs,
		"exchange.tickSize":       cfg.Exchange.TickSize,
	}
	for name, v := range numerics {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", name)
		}
		if v < 0 {
			return fmt.Errorf("%s must be >= 0", name)
		}
	}
	if cfg.Strategy.UpdateIntervalMs <= 0 {
		return errors.New("strategy.updateIntervalMs must be > 0")
	}
	if cfg.Paper {
		if cfg.Feed.StartMid <= 0 {
			return errors.New("feed.startMid must be > 0 in paper mode")
		}
		if cfg.Feed.VolBpsPerSec < 0 {
			return errors.New("feed.volBpsPerSec must be >= 0")
		}
		return nil
	}
	if cfg.Exchange.Network != "mainnet" && cfg.Exchange.Network != "testnet" {
		return fmt.Errorf("exchange.network %q must be mainnet or testnet", cfg.Exchange.Network)
	}
	if cfg.Exchange.AccountAddress == "" || cfg.Exchange.PrivateKey == "" {
		return errors.New("live mode requires exchange.accountAddress and exchange.privateKey (or HL_ACCOUNT_ADDRESS / HL_PRIVATE_KEY)")
	}
	return nil
}
