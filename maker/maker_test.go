package maker

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bigjud/HL/exchange"
	"github.com/bigjud/HL/feed"
	"github.com/bigjud/HL/inventory"
	"github.com/bigjud/HL/metrics"
	"github.com/bigjud/HL/risk"
	"github.com/bigjud/HL/strategy"
)

type placedOrder struct {
	isBuy bool
	price float64
	size  float64
}

// scriptedExchange 记录调用顺序并可注入失败，用于验证周期编排。
type scriptedExchange struct {
	mu       sync.Mutex
	pos      inventory.Position
	posErr   error
	placeErr error
	events   []string
	places   []placedOrder
	fills    []float64
}

func (s *scriptedExchange) GetPosition(ctx context.Context, asset string) (inventory.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "get_position")
	if s.posErr != nil {
		return inventory.Position{}, s.posErr
	}
	return s.pos, nil
}

func (s *scriptedExchange) CancelAll(ctx context.Context, asset string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "cancel_all")
	return nil
}

func (s *scriptedExchange) PlaceLimit(ctx context.Context, asset string, isBuy bool, price, size float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "place")
	if s.placeErr != nil {
		return "", s.placeErr
	}
	s.places = append(s.places, placedOrder{isBuy: isBuy, price: price, size: size})
	return "1", nil
}

func (s *scriptedExchange) SimulateFills(midPx float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "simulate")
	s.fills = append(s.fills, midPx)
}

func (s *scriptedExchange) snapshot() ([]string, []placedOrder, []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...), append([]placedOrder(nil), s.places...), append([]float64(nil), s.fills...)
}

// stubSource 阻塞等待注入的价格，便于精确驱动周期。
type stubSource struct {
	prices chan float64
}

func (s *stubSource) Next(ctx context.Context, interval time.Duration) (float64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case px := <-s.prices:
		return px, nil
	}
}

func testConfig(paper bool) Config {
	return Config{
		Asset: "BTC",
		Params: strategy.Params{
			SpreadBps:      10,
			SkewBpsPerUnit: 3,
			OrderSize:      0.001,
		},
		Limits:         risk.Limits{MaxPositionAbs: 0.01},
		UpdateInterval: time.Millisecond,
		Paper:          paper,
	}
}

func TestOnTick_CycleOrdering(t *testing.T) {
	ex := &scriptedExchange{}
	m, err := New(testConfig(true), ex, &stubSource{}, nil, nil)
	if err != nil {
		t.Fatalf("new maker: %v", err)
	}

	m.OnTick(context.Background(), 50000)

	events, places, fills := ex.snapshot()
	want := []string{"get_position", "cancel_all", "place", "place", "simulate"}
	if len(events) != len(want) {
		t.Fatalf("events: got %v want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("event %d: got %v want %v", i, events, want)
		}
	}
	if len(places) != 2 || !places[0].isBuy || places[1].isBuy {
		t.Fatalf("expected bid then ask, got %+v", places)
	}
	if places[0].price >= 50000 || places[1].price <= 50000 {
		t.Fatalf("quotes must straddle mid: %+v", places)
	}
	if len(fills) != 1 || fills[0] != 50000 {
		t.Fatalf("simulate should receive cycle mid: %v", fills)
	}
}

func TestOnTick_NoSimulateInLiveMode(t *testing.T) {
	ex := &scriptedExchange{}
	m, _ := New(testConfig(false), ex, &stubSource{}, nil, nil)
	m.OnTick(context.Background(), 50000)
	_, _, fills := ex.snapshot()
	if len(fills) != 0 {
		t.Fatalf("live mode must not simulate fills: %v", fills)
	}
}

func TestOnTick_RiskBlocksOneSide(t *testing.T) {
	ex := &scriptedExchange{pos: inventory.Position{Base: 0.0095}}
	cfg := testConfig(true)
	cfg.Params.OrderSize = 0.002
	m, _ := New(cfg, ex, &stubSource{}, nil, nil)

	m.OnTick(context.Background(), 50000)

	_, places, _ := ex.snapshot()
	if len(places) != 1 {
		t.Fatalf("expected one side placed, got %+v", places)
	}
	if places[0].isBuy {
		t.Fatalf("buy should be blocked near the long limit, got %+v", places)
	}
}

func TestOnTick_PlacementFailureDoesNotAbortCycle(t *testing.T) {
	ex := &scriptedExchange{placeErr: &exchange.PlacementError{Asset: "BTC", Reason: "insufficient margin"}}
	m, _ := New(testConfig(true), ex, &stubSource{}, nil, nil)

	m.OnTick(context.Background(), 50000)

	events, _, fills := ex.snapshot()
	// 两边都尝试过，拒单后周期仍走到模拟成交
	placeCount := 0
	for _, e := range events {
		if e == "place" {
			placeCount++
		}
	}
	if placeCount != 2 {
		t.Fatalf("both sides should be attempted, events=%v", events)
	}
	if len(fills) != 1 {
		t.Fatalf("cycle should finish after rejections, fills=%v", fills)
	}
}

func TestOnTick_PositionFetchFailureKeepsSnapshot(t *testing.T) {
	ex := &scriptedExchange{pos: inventory.Position{Base: 0.004}}
	m, _ := New(testConfig(true), ex, &stubSource{}, nil, nil)

	m.OnTick(context.Background(), 50000)
	if m.Position().Base != 0.004 {
		t.Fatalf("snapshot: got %v", m.Position().Base)
	}

	ex.mu.Lock()
	ex.posErr = errors.New("venue unavailable")
	ex.mu.Unlock()
	m.OnTick(context.Background(), 50000)
	if m.Position().Base != 0.004 {
		t.Fatalf("stale snapshot should survive fetch failure, got %v", m.Position().Base)
	}
}

func TestRun_ShutdownMidSleep(t *testing.T) {
	ex := &scriptedExchange{}
	src := &stubSource{prices: make(chan float64)}
	m, _ := New(testConfig(true), ex, src, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	// 驱动一个完整周期
	src.prices <- 50000
	// 等待周期完成后在取价挂起期间关停
	deadline := time.After(2 * time.Second)
	for {
		events, _, _ := ex.snapshot()
		if len(events) >= 5 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first cycle did not complete")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("clean shutdown should return nil, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after cancellation")
	}

	// 关停后不得再开启新周期
	events, _, _ := ex.snapshot()
	if len(events) != 5 {
		t.Fatalf("no new cycle after shutdown, events=%v", events)
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	if _, err := New(testConfig(true), nil, &stubSource{}, nil, nil); err == nil {
		t.Fatal("nil exchange should fail")
	}
	if _, err := New(testConfig(true), &scriptedExchange{}, nil, nil, nil); err == nil {
		t.Fatal("nil source should fail")
	}
}

func TestRun_PaperEndToEnd(t *testing.T) {
	paper := exchange.NewPaper(nil)
	walk := feed.NewRandomWalk(50000, 5, rand.New(rand.NewSource(3)))
	met := metrics.New(prometheus.NewRegistry())

	cfg := testConfig(true)
	m, err := New(cfg, paper, walk, nil, met)
	if err != nil {
		t.Fatalf("new maker: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	// 每周期先撤后挂、随后按 mid 模拟成交，关停后不应遗留挂单
	if n := paper.OpenOrders(); n != 0 {
		t.Fatalf("open orders after shutdown: %d", n)
	}
}
