package feed

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func TestRandomWalk_Deterministic(t *testing.T) {
	ctx := context.Background()
	a := NewRandomWalk(50000, 5, rand.New(rand.NewSource(42)))
	b := NewRandomWalk(50000, 5, rand.New(rand.NewSource(42)))
	for i := 0; i < 10; i++ {
		pa, err := a.Next(ctx, 0)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		pb, _ := b.Next(ctx, 0)
		if pa != pb {
			t.Fatalf("step %d: %v != %v", i, pa, pb)
		}
		if pa <= 0 {
			t.Fatalf("price must stay positive, got %v", pa)
		}
	}
}

func TestRandomWalk_PriceFloor(t *testing.T) {
	ctx := context.Background()
	// 极端波动下价格也不应跌破下限
	w := NewRandomWalk(0.0002, 50000, rand.New(rand.NewSource(7)))
	for i := 0; i < 100; i++ {
		px, err := w.Next(ctx, 0)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if px < minPrice {
			t.Fatalf("step %d below floor: %v", i, px)
		}
	}
}

func TestRandomWalk_CancelDuringWait(t *testing.T) {
	w := NewRandomWalk(50000, 5, rand.New(rand.NewSource(1)))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := w.Next(ctx, time.Hour)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected context error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return after cancellation")
	}
}
