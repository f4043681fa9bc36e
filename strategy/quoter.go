package strategy

import (
	"math"

	"github.com/bigjud/HL/inventory"
)

// Params 策略参数，进程生命周期内不变。
type Params struct {
	SpreadBps      float64 // 半边基础价差（bps）
	SkewBpsPerUnit float64 // 每单位库存的倾斜（bps）
	OrderSize      float64 // 双边统一下单数量
}

// Quote 单周期的双边报价；每周期重算，不持久化。
type Quote struct {
	BidPx float64
	AskPx float64
	BidSz float64
	AskSz float64
}

// InventorySkewedQuoter 根据库存倾斜报价：持多时压低买价（抑制继续买入），
// 卖价保持贴近 mid（促进减仓）；空头反之。这是库存均值回归的唯一杠杆。
type InventorySkewedQuoter struct {
	params Params
}

func NewInventorySkewedQuoter(params Params) *InventorySkewedQuoter {
	return &InventorySkewedQuoter{params: params}
}

// ComputeQuote 纯函数：由 mid 与仓位快照推导双边报价。
func (q *InventorySkewedQuoter) ComputeQuote(mid float64, pos inventory.Position) Quote {
	baseSpread := BpsToDecimal(q.params.SpreadBps)
	skew := BpsToDecimal(q.params.SkewBpsPerUnit) * pos.Base
	bidEdge := baseSpread + math.Max(0, skew)
	askEdge := baseSpread + math.Max(0, -skew)
	return Quote{
		BidPx: mid * (1 - bidEdge),
		AskPx: mid * (1 + askEdge),
		BidSz: q.params.OrderSize,
		AskSz: q.params.OrderSize,
	}
}

// BpsToDecimal 把 bps 转为小数，如 10 bps -> 0.001。
func BpsToDecimal(bps float64) float64 {
	return bps / 10000.0
}

// RoundToTick 向下取整到 tick；tick <= 0 时原样返回。
func RoundToTick(price, tick float64) float64 {
	if tick <= 0 {
		return price
	}
	return math.Floor(price/tick) * tick
}
