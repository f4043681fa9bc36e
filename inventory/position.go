package inventory

import "sync"

// Position 是仓位的只读快照，单位为基础资产。正数为净多头，负数为净空头。
// 控制循环每周期从交易所刷新一次，周期内不再变化。
type Position struct {
	Base float64
}

// Tracker 维护净仓位与加权平均成本；由持有方（paper 交易所）串行化写入。
type Tracker struct {
	mu   sync.RWMutex
	base float64
	cost float64
}

// Apply 根据成交数量调整仓位（正买负卖），price 为成交价。
func (t *Tracker) Apply(deltaQty, price float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	totalValue := t.cost*t.base + price*deltaQty
	t.base += deltaQty
	if t.base != 0 {
		t.cost = totalValue / t.base
	} else {
		t.cost = 0
	}
}

// Snapshot 返回当前仓位快照。
func (t *Tracker) Snapshot() Position {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Position{Base: t.base}
}

func (t *Tracker) Base() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.base
}

func (t *Tracker) AvgCost() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cost
}
