package exchange

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/bigjud/HL/gateway"
	"github.com/bigjud/HL/inventory"
	"github.com/bigjud/HL/strategy"
)

// Hyperliquid 实盘适配器：仓位查询走公共 info 端点；下单/撤单属于需要钱包
// 签名的 exchange 动作，接入签名器之前仅记录意图并返回占位 id，不发真实请求。
type Hyperliquid struct {
	client  *gateway.Client
	account string
	log     *zap.Logger

	// TickSize 为该资产的最小报价步长，> 0 时对委托价向下取整。
	TickSize float64

	mu      sync.Mutex
	lastPos inventory.Position
	nextID  int64
}

func NewHyperliquid(client *gateway.Client, account string, log *zap.Logger) *Hyperliquid {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hyperliquid{client: client, account: account, log: log}
}

// GetPosition 查询清算所仓位；瞬时失败时记录降级并返回上次已知快照，不向上传播。
func (h *Hyperliquid) GetPosition(ctx context.Context, asset string) (inventory.Position, error) {
	szi, err := h.client.PositionSize(ctx, h.account, asset)
	if err != nil {
		h.mu.Lock()
		last := h.lastPos
		h.mu.Unlock()
		h.log.Warn("[hl] position fetch failed, using last known",
			zap.String("asset", asset),
			zap.Float64("last_base", last.Base),
			zap.Error(err))
		return last, nil
	}
	pos := inventory.Position{Base: szi}
	h.mu.Lock()
	h.lastPos = pos
	h.mu.Unlock()
	return pos, nil
}

// CancelAll 撤销该资产全部挂单（签名动作占位）。
func (h *Hyperliquid) CancelAll(ctx context.Context, asset string) error {
	h.log.Info("[hl] cancel_all", zap.String("asset", asset))
	return nil
}

// PlaceLimit 提交限价挂单（签名动作占位，返回本地 id）。
func (h *Hyperliquid) PlaceLimit(ctx context.Context, asset string, isBuy bool, price, size float64) (string, error) {
	side := "SELL"
	if isBuy {
		side = "BUY"
	}
	price = strategy.RoundToTick(price, h.TickSize)
	orderID := fmt.Sprintf("hl-%d", atomic.AddInt64(&h.nextID, 1))
	h.log.Info("[hl] place order",
		zap.String("asset", asset),
		zap.String("side", side),
		zap.Float64("size", size),
		zap.Float64("price", price),
		zap.String("order_id", orderID))
	return orderID, nil
}
