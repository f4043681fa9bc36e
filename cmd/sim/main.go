package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"

	"go.uber.org/zap"

	"github.com/bigjud/HL/exchange"
	"github.com/bigjud/HL/feed"
	"github.com/bigjud/HL/maker"
	"github.com/bigjud/HL/risk"
	"github.com/bigjud/HL/strategy"
)

// 一个极简的本地模拟：随机游走生成 mid，驱动报价/风控/下单/成交链路。
// 仅用于演示与手动观察，不连接真实交易所。
func main() {
	asset := flag.String("asset", "BTC", "asset symbol")
	ticks := flag.Int("ticks", 10, "number of cycles to simulate")
	size := flag.Float64("size", 0.001, "order size in base units")
	spreadBps := flag.Float64("spreadBps", 10, "half spread in bps")
	skewBps := flag.Float64("skewBpsPerUnit", 3, "inventory skew in bps per base unit")
	maxPosition := flag.Float64("maxPosition", 0.01, "absolute max position")
	startMid := flag.Float64("startMid", 50000, "starting mid price")
	volBps := flag.Float64("volBps", 5, "random walk volatility in bps per step")
	seed := flag.Int64("seed", 1, "rng seed")
	flag.Parse()

	zlog, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	paper := exchange.NewPaper(zlog)
	walk := feed.NewRandomWalk(*startMid, *volBps, rand.New(rand.NewSource(*seed)))

	m, err := maker.New(maker.Config{
		Asset: *asset,
		Params: strategy.Params{
			SpreadBps:      *spreadBps,
			SkewBpsPerUnit: *skewBps,
			OrderSize:      *size,
		},
		Limits: risk.Limits{MaxPositionAbs: *maxPosition},
		Paper:  true,
	}, paper, walk, zlog, nil)
	if err != nil {
		log.Fatalf("init maker: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < *ticks; i++ {
		mid, err := walk.Next(ctx, 0)
		if err != nil {
			break
		}
		m.OnTick(ctx, mid)
		fmt.Printf("tick %d mid=%.2f position=%.6f open=%d\n", i, mid, m.Position().Base, paper.OpenOrders())
	}
	pos, _ := paper.GetPosition(ctx, *asset)
	fmt.Printf("final position: %.6f, open orders: %d\n", pos.Base, paper.OpenOrders())
}
