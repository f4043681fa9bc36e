package risk

import (
	"github.com/bigjud/HL/inventory"
)

// epsilon 吸收浮点累加误差，使边界仓位不被误拒。
const epsilon = 1e-12

// Limits 仓位限制配置，进程生命周期内不变。
type Limits struct {
	MaxPositionAbs float64
}

// Checker 下单前校验绝对仓位上限；无状态、无副作用，双边独立评估。
//
// 注意：同一周期内买卖双边都以周期开始的仓位快照评估，不为另一边的挂单
// 预留库存；两边在同周期内同时成交可能短暂越限，下一次刷新后收敛。
type Checker struct {
	limits Limits
}

func NewChecker(limits Limits) *Checker {
	return &Checker{limits: limits}
}

// CanPlace 判断按 size 下单（正买负卖由 isBuy 决定）后是否仍在绝对仓位上限内。
func (c *Checker) CanPlace(pos inventory.Position, isBuy bool, size float64) bool {
	tentative := pos.Base - size
	if isBuy {
		tentative = pos.Base + size
	}
	return abs(tentative) <= c.limits.MaxPositionAbs+epsilon
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
