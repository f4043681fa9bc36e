package inventory

import (
	"math"
	"testing"
)

func TestTrackerApply(t *testing.T) {
	tr := &Tracker{}
	tr.Apply(2, 100)
	tr.Apply(2, 110)
	if got := tr.Base(); got != 4 {
		t.Fatalf("base: got %v want 4", got)
	}
	if got := tr.AvgCost(); math.Abs(got-105) > 1e-9 {
		t.Fatalf("avg cost: got %v want 105", got)
	}

	tr.Apply(-4, 120)
	if got := tr.Base(); got != 0 {
		t.Fatalf("base after flat: got %v want 0", got)
	}
	if got := tr.AvgCost(); got != 0 {
		t.Fatalf("cost resets when flat: got %v", got)
	}
}

func TestTrackerSnapshot(t *testing.T) {
	tr := &Tracker{}
	tr.Apply(-1.5, 50)
	snap := tr.Snapshot()
	if snap.Base != -1.5 {
		t.Fatalf("snapshot: got %v want -1.5", snap.Base)
	}
	// 快照是值拷贝，后续成交不回写
	tr.Apply(1.5, 50)
	if snap.Base != -1.5 {
		t.Fatalf("snapshot mutated: %v", snap.Base)
	}
}
