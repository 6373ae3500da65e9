package buffer

import (
	"testing"

	"github.com/quantfeed/tapefeed/internal/events"
	"github.com/quantfeed/tapefeed/internal/model"
)

func batch(timestamps ...int64) []model.Trade {
	out := make([]model.Trade, len(timestamps))
	for i, ts := range timestamps {
		out[i] = model.Trade{Timestamp: ts, Price: float64(ts), Size: 1}
	}
	return out
}

func timestamps(trades []model.Trade) []int64 {
	out := make([]int64, len(trades))
	for i, tr := range trades {
		out[i] = tr.Timestamp
	}
	return out
}

func assertOrdered(t *testing.T, b *TradeBuffer) {
	t.Helper()
	snap := b.Snapshot()
	for i := 1; i < len(snap); i++ {
		if snap[i].Timestamp < snap[i-1].Timestamp {
			t.Fatalf("ordering violated at %d: %d < %d", i, snap[i].Timestamp, snap[i-1].Timestamp)
		}
	}
}

func TestTradeBuffer_AppendKeepsOrder(t *testing.T) {
	b := New(nil)

	b.Append(batch(100, 200, 300))
	b.Append(batch(300, 400))
	b.Append(nil)

	if b.Len() != 5 {
		t.Errorf("Len() = %d, want 5", b.Len())
	}
	assertOrdered(t, b)
}

func TestTradeBuffer_MergeBoundaryDiscard(t *testing.T) {
	b := New(nil)
	b.Append(batch(100, 200, 300))

	changed := b.MergeHistorical(batch(50, 150, 250, 350), false)

	if !changed {
		t.Error("MergeHistorical returned false, want true")
	}

	got := timestamps(b.Snapshot())
	want := []int64{50, 100, 200, 300, 350}
	if len(got) != len(want) {
		t.Fatalf("timestamps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("timestamps[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	stats := b.Stats()
	if stats.Discarded != 2 {
		t.Errorf("Discarded = %d, want 2", stats.Discarded)
	}
}

func TestTradeBuffer_MergeEqualBoundariesKept(t *testing.T) {
	b := New(nil)
	b.Append(batch(100, 200, 300))

	// Trades exactly at head/tail timestamps are outside the open interval.
	b.MergeHistorical(batch(100, 300), false)

	got := timestamps(b.Snapshot())
	want := []int64{100, 100, 200, 300, 300}
	if len(got) != len(want) {
		t.Fatalf("timestamps = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("timestamps[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	assertOrdered(t, b)
}

func TestTradeBuffer_MergeIntoEmpty(t *testing.T) {
	b := New(nil)

	changed := b.MergeHistorical(batch(10, 20), false)
	if !changed {
		t.Error("merge into empty buffer returned false, want true")
	}
	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
}

func TestTradeBuffer_MergeReplace(t *testing.T) {
	b := New(nil)
	b.Append(batch(100, 200))

	changed := b.MergeHistorical(batch(10, 20, 30), true)
	if !changed {
		t.Error("replace merge returned false, want true")
	}

	got := timestamps(b.Snapshot())
	if len(got) != 3 || got[0] != 10 || got[2] != 30 {
		t.Errorf("timestamps = %v, want [10 20 30]", got)
	}
}

func TestTradeBuffer_MergeReplaceSameLength(t *testing.T) {
	b := New(nil)
	b.Append(batch(100, 200))

	// Content changes but length does not.
	changed := b.MergeHistorical(batch(10, 20), true)
	if changed {
		t.Error("replace with same length returned true, want false")
	}
}

func TestTradeBuffer_MergeAllInterior(t *testing.T) {
	b := New(nil)
	b.Append(batch(100, 200, 300))

	changed := b.MergeHistorical(batch(150, 250), false)
	if changed {
		t.Error("interior-only merge returned true, want false")
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestTradeBuffer_TrimBoundary(t *testing.T) {
	em := events.NewEmitter()
	var trims []int64
	em.Subscribe(func(ev events.Event) {
		if tr, ok := ev.(events.Trim); ok {
			trims = append(trims, tr.Cutoff)
		}
	})

	b := New(em)
	b.Append(batch(100, 200, 200, 300))

	// Cutoff at or below the head is a no-op and emits nothing.
	if n := b.Trim(100); n != 0 {
		t.Errorf("Trim(100) removed %d, want 0", n)
	}
	if len(trims) != 0 {
		t.Errorf("no-op trim emitted %d events, want 0", len(trims))
	}

	if n := b.Trim(200); n != 1 {
		t.Errorf("Trim(200) removed %d, want 1", n)
	}
	got := timestamps(b.Snapshot())
	if len(got) != 3 || got[0] != 200 {
		t.Errorf("timestamps = %v, want [200 200 300]", got)
	}
	if len(trims) != 1 || trims[0] != 200 {
		t.Errorf("trim events = %v, want [200]", trims)
	}

	// Cutoff past the tail empties the buffer.
	if n := b.Trim(1000); n != 3 {
		t.Errorf("Trim(1000) removed %d, want 3", n)
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
}

func TestTradeBuffer_Span(t *testing.T) {
	b := New(nil)

	if _, _, ok := b.Span(); ok {
		t.Error("Span() on empty buffer returned ok")
	}

	b.Append(batch(5, 10, 15))
	head, tail, ok := b.Span()
	if !ok || head != 5 || tail != 15 {
		t.Errorf("Span() = (%d, %d, %v), want (5, 15, true)", head, tail, ok)
	}
}

func TestTradeBuffer_OrderingInvariantUnderMixedOps(t *testing.T) {
	b := New(nil)

	b.Append(batch(100, 110))
	assertOrdered(t, b)

	b.MergeHistorical(batch(10, 50, 105, 200), false)
	assertOrdered(t, b)

	b.Append(batch(200, 210))
	assertOrdered(t, b)

	b.Trim(50)
	assertOrdered(t, b)

	b.MergeHistorical(batch(20, 60, 205, 300), false)
	assertOrdered(t, b)
}
