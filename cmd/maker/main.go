package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/bigjud/HL/config"
	"github.com/bigjud/HL/exchange"
	"github.com/bigjud/HL/feed"
	"github.com/bigjud/HL/gateway"
	"github.com/bigjud/HL/infrastructure/logger"
	"github.com/bigjud/HL/maker"
	"github.com/bigjud/HL/metrics"
	"github.com/bigjud/HL/risk"
	"github.com/bigjud/HL/strategy"
)

func main() {
	cfgPath := flag.String("config", "", "配置文件路径（可选，缺省用内置默认值）")
	asset := flag.String("asset", "", "资产符号，如 BTC")
	size := flag.Float64("size", 0, "下单数量（基础资产）")
	spreadBps := flag.Float64("spreadBps", 0, "半边价差（bps）")
	skewBps := flag.Float64("skewBpsPerUnit", 0, "每单位库存倾斜（bps）")
	updateInterval := flag.Float64("updateInterval", 0, "报价周期（秒）")
	maxPosition := flag.Float64("maxPosition", 0, "绝对仓位上限（基础资产）")
	paper := flag.Bool("paper", false, "paper 模式（内存交易所 + 合成行情）")
	metricsAddr := flag.String("metricsAddr", "", "Prometheus metrics 监听地址，留空用配置值")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("加载配置失败: %v", err)
		}
	}
	config.ApplyEnvOverrides(&cfg)

	// 显式传入的命令行参数优先于文件与环境变量。
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "asset":
			cfg.Asset = *asset
		case "size":
			cfg.Strategy.OrderSize = *size
		case "spreadBps":
			cfg.Strategy.SpreadBps = *spreadBps
		case "skewBpsPerUnit":
			cfg.Strategy.SkewBpsPerUnit = *skewBps
		case "updateInterval":
			cfg.Strategy.UpdateIntervalMs = int(*updateInterval * 1000)
		case "maxPosition":
			cfg.Risk.MaxPositionAbs = *maxPosition
		case "paper":
			cfg.Paper = *paper
		case "metricsAddr":
			cfg.MetricsAddr = *metricsAddr
		}
	})

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	met := metrics.New(prometheus.DefaultRegisterer)
	metrics.Serve(cfg.MetricsAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ex exchange.Exchange
	var src feed.PriceSource
	if cfg.Paper {
		ex = exchange.NewPaper(zlog)
		src = feed.NewRandomWalk(cfg.Feed.StartMid, cfg.Feed.VolBpsPerSec, nil)
	} else {
		client := gateway.NewClient(cfg.Exchange.Network)
		ws := gateway.NewWS(cfg.Exchange.Network)
		go runWS(ctx, ws, zlog)
		hl := exchange.NewHyperliquid(client, cfg.Exchange.AccountAddress, zlog)
		hl.TickSize = cfg.Exchange.TickSize
		ex = hl
		src = &feed.Live{Asset: cfg.Asset, WS: ws, Client: client}
	}

	if *cfgPath != "" {
		w := config.Watcher{Path: *cfgPath}
		go func() {
			_ = w.Start(ctx, func(config.AppConfig) {
				zlog.Warn("config file changed on disk; restart to apply")
			})
		}()
	}

	m, err := maker.New(maker.Config{
		Asset: cfg.Asset,
		Params: strategy.Params{
			SpreadBps:      cfg.Strategy.SpreadBps,
			SkewBpsPerUnit: cfg.Strategy.SkewBpsPerUnit,
			OrderSize:      cfg.Strategy.OrderSize,
		},
		Limits:         risk.Limits{MaxPositionAbs: cfg.Risk.MaxPositionAbs},
		UpdateInterval: cfg.Strategy.UpdateInterval(),
		Paper:          cfg.Paper,
	}, ex, src, zlog, met)
	if err != nil {
		log.Fatalf("初始化 maker 失败: %v", err)
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	runErr := m.Run(ctx)
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	if runErr != nil {
		zlog.Error("maker exited", zap.Error(runErr))
	}
}

// runWS 维持 allMids 订阅；断线后退避重连，ctx 结束即退出。
func runWS(ctx context.Context, ws *gateway.WS, zlog *zap.Logger) {
	for ctx.Err() == nil {
		if err := ws.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Warn("ws disconnected, reconnecting", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(3 * time.Second):
		}
	}
}
