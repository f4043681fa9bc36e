// Package maker 实现做市控制循环：每周期取参考价、同步仓位、计算报价、
// 撤旧单、逐边风控后下新单，paper 模式下再做一次成交模拟。
package maker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/bigjud/HL/exchange"
	"github.com/bigjud/HL/feed"
	"github.com/bigjud/HL/inventory"
	"github.com/bigjud/HL/metrics"
	"github.com/bigjud/HL/risk"
	"github.com/bigjud/HL/strategy"
)

// Config 控制循环配置；数值来自启动时校验过的 AppConfig，循环内不再变化。
type Config struct {
	Asset          string
	Params         strategy.Params
	Limits         risk.Limits
	UpdateInterval time.Duration
	Paper          bool
}

// Maker 单资产做市循环。仓位快照 pos 仅在周期开始同步一次，周期内只读。
type Maker struct {
	cfg     Config
	ex      exchange.Exchange
	src     feed.PriceSource
	quoter  *strategy.InventorySkewedQuoter
	checker *risk.Checker
	pos     inventory.Position

	log *zap.Logger
	met *metrics.Metrics
}

// New 组装循环；ex/src 必须非空，met 可为 nil（仅测试/脚本场景）。
func New(cfg Config, ex exchange.Exchange, src feed.PriceSource, log *zap.Logger, met *metrics.Metrics) (*Maker, error) {
	if ex == nil {
		return nil, errors.New("exchange required")
	}
	if src == nil {
		return nil, errors.New("price source required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Maker{
		cfg:     cfg,
		ex:      ex,
		src:     src,
		quoter:  strategy.NewInventorySkewedQuoter(cfg.Params),
		checker: risk.NewChecker(cfg.Limits),
		log:     log,
		met:     met,
	}, nil
}

// Run 长驻循环：仅在 ctx 取消时退出；任何单步失败记录后进入下一周期。
// 取消检查发生在取价（即挂起等待）期间，不会打断进行中的周期。
func (m *Maker) Run(ctx context.Context) error {
	m.log.Info("maker starting",
		zap.String("asset", m.cfg.Asset),
		zap.Bool("paper", m.cfg.Paper),
		zap.Float64("order_size", m.cfg.Params.OrderSize),
		zap.Float64("spread_bps", m.cfg.Params.SpreadBps),
		zap.Float64("skew_bps_per_unit", m.cfg.Params.SkewBpsPerUnit),
		zap.Float64("max_position_abs", m.cfg.Limits.MaxPositionAbs))

	for {
		mid, err := m.src.Next(ctx, m.cfg.UpdateInterval)
		if err != nil {
			if ctx.Err() != nil {
				m.log.Info("shutdown signal received, exiting loop")
				return nil
			}
			m.log.Warn("price fetch failed, skipping cycle", zap.Error(err))
			continue
		}
		m.OnTick(ctx, mid)
	}
}

// OnTick 执行一个完整周期；供 Run 与本地模拟驱动。
func (m *Maker) OnTick(ctx context.Context, mid float64) {
	if m.met != nil {
		m.met.Cycles.Inc()
		m.met.Mid.Set(mid)
	}

	// 1. 同步仓位（失败时沿用上一周期快照）
	m.syncPosition(ctx)

	// 2. 计算报价
	quote := m.quoter.ComputeQuote(mid, m.pos)
	if m.met != nil {
		m.met.Quotes.Inc()
	}
	m.log.Debug("quote computed",
		zap.Float64("mid", mid),
		zap.Float64("position", m.pos.Base),
		zap.Float64("bid_px", quote.BidPx),
		zap.Float64("ask_px", quote.AskPx))

	// 3. 撤销上一周期挂单
	if err := m.ex.CancelAll(ctx, m.cfg.Asset); err != nil {
		if m.met != nil {
			m.met.VenueErrors.Inc()
		}
		m.log.Error("cancel all failed", zap.Error(err))
	}

	// 4. 双边独立风控并下单；两边都使用周期开始的仓位快照评估
	m.placeSide(ctx, true, quote.BidPx, quote.BidSz)
	m.placeSide(ctx, false, quote.AskPx, quote.AskSz)

	// 5. paper 模式：按本周期 mid 模拟成交
	if m.cfg.Paper {
		if sim, ok := m.ex.(exchange.FillSimulator); ok {
			sim.SimulateFills(mid)
		}
	}
}

// Position 返回循环当前持有的仓位快照。
func (m *Maker) Position() inventory.Position {
	return m.pos
}

func (m *Maker) syncPosition(ctx context.Context) {
	pos, err := m.ex.GetPosition(ctx, m.cfg.Asset)
	if err != nil {
		if m.met != nil {
			m.met.VenueErrors.Inc()
		}
		m.log.Warn("position sync failed, keeping last snapshot",
			zap.Float64("last_base", m.pos.Base),
			zap.Error(err))
		return
	}
	m.pos = pos
	if m.met != nil {
		m.met.Position.Set(pos.Base)
	}
}

func (m *Maker) placeSide(ctx context.Context, isBuy bool, price, size float64) {
	side := "SELL"
	if isBuy {
		side = "BUY"
	}
	if !m.checker.CanPlace(m.pos, isBuy, size) {
		if m.met != nil {
			m.met.RiskBlocked.WithLabelValues(side).Inc()
		}
		m.log.Debug("side blocked by position limit",
			zap.String("side", side),
			zap.Float64("position", m.pos.Base),
			zap.Float64("size", size),
			zap.Float64("max_position_abs", m.cfg.Limits.MaxPositionAbs))
		return
	}

	orderID, err := m.ex.PlaceLimit(ctx, m.cfg.Asset, isBuy, price, size)
	if err != nil {
		if m.met != nil {
			m.met.PlacementErrors.Inc()
		}
		var pe *exchange.PlacementError
		if errors.As(err, &pe) {
			m.log.Error("order rejected",
				zap.String("side", side),
				zap.Float64("price", price),
				zap.Float64("size", size),
				zap.String("reason", pe.Reason))
			return
		}
		m.log.Error("order placement failed",
			zap.String("side", side),
			zap.Float64("price", price),
			zap.Float64("size", size),
			zap.Error(err))
		return
	}
	if m.met != nil {
		m.met.OrdersPlaced.WithLabelValues(side).Inc()
	}
	m.log.Debug("order placed",
		zap.String("side", side),
		zap.Float64("price", price),
		zap.Float64("size", size),
		zap.String("order_id", orderID))
}
