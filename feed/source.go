// Package feed 提供控制循环的参考价来源：拉取式接口，每周期取一个值。
package feed

import (
	"context"
	"time"
)

// PriceSource 挂起 interval 后产出下一个参考价；ctx 结束时立即返回其错误。
// 这是循环唯一的节拍点：关停发生在等待期间时，当前周期不会开始。
type PriceSource interface {
	Next(ctx context.Context, interval time.Duration) (float64, error)
}

// sleep 等待 d 或 ctx 结束，以先到者为准。
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
