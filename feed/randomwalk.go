package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// minPrice 随机游走的价格下限，避免走到零或负数。
const minPrice = 0.0001

// RandomWalk 合成 mid 源：每步按高斯扰动（bps 计）演化价格。
// 可重入：每次 Next 推进一步，序列无限、可随时重启消费。
type RandomWalk struct {
	mu     sync.Mutex
	mid    float64
	volBps float64
	rng    *rand.Rand
}

// NewRandomWalk 构造随机游走源；rng 传 nil 时使用时间种子，测试可注入定值种子。
func NewRandomWalk(startMid, volBpsPerSec float64, rng *rand.Rand) *RandomWalk {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomWalk{mid: startMid, volBps: volBpsPerSec, rng: rng}
}

// Next 挂起 interval 后产出下一个价格。
func (w *RandomWalk) Next(ctx context.Context, interval time.Duration) (float64, error) {
	if err := sleep(ctx, interval); err != nil {
		return 0, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	move := w.rng.NormFloat64() * w.volBps / 10000.0
	w.mid = w.mid * (1.0 + move)
	if w.mid < minPrice {
		w.mid = minPrice
	}
	return w.mid, nil
}
