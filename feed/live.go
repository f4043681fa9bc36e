package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/bigjud/HL/gateway"
)

// Live 实盘 mid 源：优先读 websocket 缓存，未就绪时回退 REST 查询。
// 与 RandomWalk 一样按拉取节拍工作，先挂起 interval 再取值。
type Live struct {
	Asset  string
	WS     *gateway.WS     // 可选
	Client *gateway.Client // 可选；两者至少一个
}

func (l *Live) Next(ctx context.Context, interval time.Duration) (float64, error) {
	if err := sleep(ctx, interval); err != nil {
		return 0, err
	}
	if l.WS != nil {
		if px, ok := l.WS.Mid(l.Asset); ok {
			return px, nil
		}
	}
	if l.Client != nil {
		return l.Client.MidPrice(ctx, l.Asset)
	}
	return 0, fmt.Errorf("no mid available for %s", l.Asset)
}
