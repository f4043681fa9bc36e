package exchange

import (
	"context"
	"math"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/bigjud/HL/inventory"
)

// LiveOrder 是 paper 交易所内部的一张挂单；由交易所独占持有，
// 撤单或模拟成交时销毁。
type LiveOrder struct {
	OrderID string
	Asset   string
	IsBuy   bool
	Price   float64
	Size    float64
}

// Paper 内存交易所：持有权威仓位与挂单集合，内部互斥串行化撤单/下单/成交，
// 保证 GetPosition 不会观察到中间状态。
type Paper struct {
	mu     sync.Mutex
	pos    *inventory.Tracker
	orders map[string]LiveOrder
	nextID int64

	log *zap.Logger
}

func NewPaper(log *zap.Logger) *Paper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Paper{
		pos:    &inventory.Tracker{},
		orders: make(map[string]LiveOrder),
		nextID: 1,
		log:    log,
	}
}

// GetPosition 返回当前仓位快照；paper 模式不会失败。
func (p *Paper) GetPosition(ctx context.Context, asset string) (inventory.Position, error) {
	return p.pos.Snapshot(), nil
}

// CancelAll 清空全部挂单；无挂单时为 no-op。
func (p *Paper) CancelAll(ctx context.Context, asset string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := len(p.orders); n > 0 {
		p.log.Info("[paper] cancel orders", zap.Int("count", n))
	}
	p.orders = make(map[string]LiveOrder)
	return nil
}

// PlaceLimit 登记一张挂单并返回严格递增的整数 id（从 1 起，永不复用）。
func (p *Paper) PlaceLimit(ctx context.Context, asset string, isBuy bool, price, size float64) (string, error) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return "", &PlacementError{Asset: asset, IsBuy: isBuy, Price: price, Size: size, Reason: "invalid price"}
	}
	if size <= 0 || math.IsNaN(size) || math.IsInf(size, 0) {
		return "", &PlacementError{Asset: asset, IsBuy: isBuy, Price: price, Size: size, Reason: "invalid size"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	orderID := strconv.FormatInt(p.nextID, 10)
	p.nextID++
	p.orders[orderID] = LiveOrder{OrderID: orderID, Asset: asset, IsBuy: isBuy, Price: price, Size: size}

	side := "SELL"
	if isBuy {
		side = "BUY"
	}
	p.log.Info("[paper] place order",
		zap.String("asset", asset),
		zap.String("side", side),
		zap.Float64("size", size),
		zap.Float64("price", price),
		zap.String("order_id", orderID))
	return orderID, nil
}

// SimulateFills 按 mid 对全部挂单做全额成交判定：买单在 mid >= 价格时成交，
// 卖单在 mid <= 价格时成交；成交后调整仓位并移除挂单。无可成交单时为 no-op。
func (p *Paper) SimulateFills(midPx float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for orderID, o := range p.orders {
		switch {
		case o.IsBuy && midPx >= o.Price:
			p.pos.Apply(o.Size, o.Price)
			p.log.Debug("[paper] filled BUY", zap.Float64("size", o.Size), zap.Float64("price", o.Price))
			delete(p.orders, orderID)
		case !o.IsBuy && midPx <= o.Price:
			p.pos.Apply(-o.Size, o.Price)
			p.log.Debug("[paper] filled SELL", zap.Float64("size", o.Size), zap.Float64("price", o.Price))
			delete(p.orders, orderID)
		}
	}
}

// OpenOrders 返回当前挂单数量。
func (p *Paper) OpenOrders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.orders)
}
