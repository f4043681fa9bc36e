package exchange

import (
	"context"
	"fmt"

	"github.com/bigjud/HL/inventory"
)

// Exchange 是执行端的能力接口，实盘与 paper 实现都要满足：
//   - GetPosition 返回权威仓位；瞬时失败由实现内部重试或返回上次已知值并记日志，
//     不得把单次轮询失败抛给调用方打断循环。
//   - CancelAll 尽力撤销该资产全部挂单；无挂单时为幂等 no-op。
//   - PlaceLimit 提交一张限价挂单并返回交易所分配的 id；被拒时返回 *PlacementError。
type Exchange interface {
	GetPosition(ctx context.Context, asset string) (inventory.Position, error)
	CancelAll(ctx context.Context, asset string) error
	PlaceLimit(ctx context.Context, asset string, isBuy bool, price, size float64) (string, error)
}

// FillSimulator 是仅模拟盘具备的能力；控制循环在 paper 模式下断言该接口。
type FillSimulator interface {
	SimulateFills(midPx float64)
}

// PlacementError 表示交易所拒单（保证金不足、非法价格/数量、连接失败等）。
// 调用方应捕获并记录，跳过该边，等待下一周期，不得终止循环。
type PlacementError struct {
	Asset  string
	IsBuy  bool
	Price  float64
	Size   float64
	Reason string
	Err    error
}

func (e *PlacementError) Error() string {
	side := "SELL"
	if e.IsBuy {
		side = "BUY"
	}
	msg := fmt.Sprintf("place %s %s %v @ %v rejected: %s", e.Asset, side, e.Size, e.Price, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *PlacementError) Unwrap() error { return e.Err }
