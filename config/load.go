package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bigjud/HL/infrastructure/logger"
)

// AppConfig holds the main runtime configuration.
type AppConfig struct {
	Env         string         `yaml:"env"`
	Asset       string         `yaml:"asset"`
	Paper       bool           `yaml:"paper"`
	MetricsAddr string         `yaml:"metricsAddr"`
	Exchange    ExchangeConfig `yaml:"exchange"`
	Strategy    StrategyConfig `yaml:"strategy"`
	Risk        RiskConfig     `yaml:"risk"`
	Feed        FeedConfig     `yaml:"feed"`
	Log         logger.Config  `yaml:"log"`
}

type ExchangeConfig struct {
	Network        string  `yaml:"network"` // mainnet / testnet
	AccountAddress string  `yaml:"accountAddress"`
	PrivateKey     string  `yaml:"privateKey"`
	TickSize       float64 `yaml:"tickSize"` // 最小报价步长，0 表示不取整
}

type StrategyConfig struct {
	OrderSize        float64 `yaml:"orderSize"`        // 双边下单数量（基础资产）
	SpreadBps        float64 `yaml:"spreadBps"`        // 半边基础价差（bps）
	SkewBpsPerUnit   float64 `yaml:"skewBpsPerUnit"`   // 每单位库存倾斜（bps）
	UpdateIntervalMs int     `yaml:"updateIntervalMs"` // 报价周期（毫秒）
}

// UpdateInterval returns the quote cycle interval as a duration.
func (c StrategyConfig) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMs) * time.Millisecond
}

type RiskConfig struct {
	MaxPositionAbs float64 `yaml:"maxPositionAbs"` // 绝对仓位上限（基础资产）
}

// FeedConfig 合成 mid 源参数（paper 模式）。
type FeedConfig struct {
	StartMid     float64 `yaml:"startMid"`
	VolBpsPerSec float64 `yaml:"volBpsPerSec"`
}

// Default returns the built-in configuration for paper trading.
func Default() AppConfig {
	return AppConfig{
		Env:         "dev",
		Asset:       "BTC",
		Paper:       true,
		MetricsAddr: ":9100",
		Exchange:    ExchangeConfig{Network: "testnet"},
		Strategy: StrategyConfig{
			OrderSize:        0.001,
			SpreadBps:        10,
			SkewBpsPerUnit:   3,
			UpdateIntervalMs: 1000,
		},
		Risk: RiskConfig{MaxPositionAbs: 0.01},
		Feed: FeedConfig{StartMid: 50000, VolBpsPerSec: 5},
		Log:  logger.DefaultConfig(),
	}
}

// Load reads YAML config from path on top of defaults and validates it.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads config then overrides fields from env vars if present.
// Env names follow the original deployment: HL_* for credentials, QUOTE_* / RISK_*
// for strategy knobs.
func LoadWithEnvOverrides(path string) (AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return cfg, err
	}
	ApplyEnvOverrides(&cfg)
	return cfg, Validate(cfg)
}

// ApplyEnvOverrides mutates cfg in place from the process environment.
func ApplyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("HYPERLIQUID_NETWORK"); v != "" {
		cfg.Exchange.Network = v
	}
	if v := os.Getenv("HL_ACCOUNT_ADDRESS"); v != "" {
		cfg.Exchange.AccountAddress = v
	}
	if v := os.Getenv("HL_PRIVATE_KEY"); v != "" {
		cfg.Exchange.PrivateKey = v
	}
	if v, ok := envFloat("QUOTE_SIZE"); ok {
		cfg.Strategy.OrderSize = v
	}
	if v, ok := envFloat("QUOTE_SPREAD_BPS"); ok {
		cfg.Strategy.SpreadBps = v
	}
	if v, ok := envFloat("QUOTE_SKEW_BPS_PER_UNIT"); ok {
		cfg.Strategy.SkewBpsPerUnit = v
	}
	if v, ok := envFloat("QUOTE_UPDATE_INTERVAL"); ok {
		cfg.Strategy.UpdateIntervalMs = int(v * 1000) // 秒 -> 毫秒
	}
	if v, ok := envFloat("RISK_MAX_POSITION"); ok {
		cfg.Risk.MaxPositionAbs = v
	}
}

func envFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
