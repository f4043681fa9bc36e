package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validYAML = `
env: test
asset: ETH
paper: true
strategy:
  orderSize: 0.01
  spreadBps: 8
  skewBpsPerUnit: 2
  updateIntervalMs: 500
risk:
  maxPositionAbs: 0.1
feed:
  startMid: 2500
  volBpsPerSec: 4
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Asset != "ETH" {
		t.Fatalf("asset: got %q", cfg.Asset)
	}
	if cfg.Strategy.SpreadBps != 8 || cfg.Strategy.UpdateIntervalMs != 500 {
		t.Fatalf("strategy: %+v", cfg.Strategy)
	}
	if cfg.Risk.MaxPositionAbs != 0.1 {
		t.Fatalf("risk: %+v", cfg.Risk)
	}
	// 缺省字段回落到内置默认值
	if cfg.MetricsAddr != ":9100" {
		t.Fatalf("metricsAddr default: got %q", cfg.MetricsAddr)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("QUOTE_SPREAD_BPS", "25")
	t.Setenv("RISK_MAX_POSITION", "0.5")
	t.Setenv("QUOTE_UPDATE_INTERVAL", "2.5")

	cfg, err := LoadWithEnvOverrides(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Strategy.SpreadBps != 25 {
		t.Fatalf("env spread override: got %v", cfg.Strategy.SpreadBps)
	}
	if cfg.Risk.MaxPositionAbs != 0.5 {
		t.Fatalf("env risk override: got %v", cfg.Risk.MaxPositionAbs)
	}
	if cfg.Strategy.UpdateIntervalMs != 2500 {
		t.Fatalf("env interval override: got %v ms", cfg.Strategy.UpdateIntervalMs)
	}
}

func TestValidate(t *testing.T) {
	base := Default()

	cfg := base
	cfg.Asset = ""
	if err := Validate(cfg); err == nil {
		t.Fatal("empty asset should fail")
	}

	cfg = base
	cfg.Strategy.SpreadBps = -1
	if err := Validate(cfg); err == nil {
		t.Fatal("negative spread should fail")
	}

	cfg = base
	cfg.Strategy.UpdateIntervalMs = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("zero interval should fail")
	}

	// 实盘缺少凭据属于启动期致命配置错误
	cfg = base
	cfg.Paper = false
	if err := Validate(cfg); err == nil {
		t.Fatal("live mode without credentials should fail")
	}
	cfg.Exchange.AccountAddress = "0xabc"
	cfg.Exchange.PrivateKey = "key"
	if err := Validate(cfg); err != nil {
		t.Fatalf("live mode with credentials: %v", err)
	}
}

func TestLoad_BadFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file should fail")
	}
	if _, err := Load(writeConfig(t, "asset: [broken")); err == nil {
		t.Fatal("broken yaml should fail")
	}
}
