package clock

import (
	"testing"
	"time"

	"github.com/quantfeed/tapefeed/internal/model"
)

func fixedNow(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestCompensator_AheadServer(t *testing.T) {
	c := NewWithNow(fixedNow(1_000_000))

	offset := c.Compute(1_005_000) // server 5s ahead

	if offset != 5000 {
		t.Errorf("offset = %d, want 5000", offset)
	}
	if !c.Delayed() {
		t.Error("Delayed() = false, want true")
	}
	if got := c.Apply(1_005_100); got != 1_000_100 {
		t.Errorf("Apply() = %d, want 1000100", got)
	}
}

func TestCompensator_BehindServer(t *testing.T) {
	c := NewWithNow(fixedNow(1_000_000))

	offset := c.Compute(995_000)

	if offset != -5000 {
		t.Errorf("offset = %d, want -5000", offset)
	}
	if !c.Delayed() {
		t.Error("Delayed() = false, want true")
	}
	if got := c.Apply(995_000); got != 1_000_000 {
		t.Errorf("Apply() = %d, want 1000000", got)
	}
}

func TestCompensator_WithinThreshold(t *testing.T) {
	c := NewWithNow(fixedNow(1_000_000))

	c.Compute(1_001_500) // 1.5s, below the 2s threshold

	if c.Delayed() {
		t.Error("Delayed() = true, want false")
	}
	if got := c.Apply(1_001_500); got != 1_001_500 {
		t.Errorf("Apply() = %d, want identity 1001500", got)
	}
}

func TestCompensator_ApplyBatch(t *testing.T) {
	c := NewWithNow(fixedNow(1_000_000))
	c.Compute(1_010_000)

	batch := []model.Trade{
		{Timestamp: 1_010_100, Price: 1},
		{Timestamp: 1_010_200, Price: 2},
	}
	c.ApplyBatch(batch)

	if batch[0].Timestamp != 1_000_100 || batch[1].Timestamp != 1_000_200 {
		t.Errorf("batch timestamps = [%d %d], want [1000100 1000200]",
			batch[0].Timestamp, batch[1].Timestamp)
	}
}

func TestCompensator_RecomputeReplacesOffset(t *testing.T) {
	c := NewWithNow(fixedNow(1_000_000))

	c.Compute(1_010_000)
	if c.Offset() != 10000 {
		t.Fatalf("offset = %d, want 10000", c.Offset())
	}

	// Next handshake reports no skew; compensation deactivates.
	c.Compute(1_000_100)
	if c.Delayed() {
		t.Error("Delayed() = true after recompute, want false")
	}
	if c.Offset() != 100 {
		t.Errorf("offset = %d, want 100", c.Offset())
	}
}
