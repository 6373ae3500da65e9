package buffer

import (
	"sort"
	"sync"

	"github.com/quantfeed/tapefeed/internal/events"
	"github.com/quantfeed/tapefeed/internal/model"
)

// TradeBuffer is the ordered sequence of accepted trades.
type TradeBuffer struct {
	mu     sync.RWMutex
	trades []model.Trade
	em     *events.Emitter

	// Stats
	appended  int64
	merged    int64
	discarded int64
	trimmed   int64
}

// Stats contains buffer counters.
type Stats struct {
	Len       int
	Appended  int64 // Trades accepted from the live feed
	Merged    int64 // Trades accepted from backfills
	Discarded int64 // Backfill trades dropped as interior duplicates
	Trimmed   int64 // Trades removed by Trim
}

// New creates an empty buffer. Trim notifications go to em.
func New(em *events.Emitter) *TradeBuffer {
	return &TradeBuffer{em: em}
}

// Append concatenates batch to the tail.
//
// Precondition: batch is ascending-sorted, clock-corrected, and does not
// predate the current tail. Callers own the ordering invariant; it is not
// re-validated here.
func (b *TradeBuffer) Append(batch []model.Trade) {
	if len(batch) == 0 {
		return
	}
	b.mu.Lock()
	b.trades = append(b.trades, batch...)
	b.appended += int64(len(batch))
	b.mu.Unlock()
}

// MergeHistorical folds an ascending-sorted, clock-corrected batch into the
// buffer. When the buffer is empty or replace is set, batch becomes the
// buffer. Otherwise trades at or before the buffer's head are prepended,
// trades at or after its tail are appended, and trades strictly inside the
// buffer's span are discarded as already represented by the live feed.
// Returns whether the buffer's length changed.
func (b *TradeBuffer) MergeHistorical(batch []model.Trade, replace bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	before := len(b.trades)

	if replace || len(b.trades) == 0 {
		b.trades = append(b.trades[:0], batch...)
		b.merged += int64(len(batch))
		return len(b.trades) != before
	}

	headTs := b.trades[0].Timestamp
	tailTs := b.trades[len(b.trades)-1].Timestamp

	var prefix, suffix []model.Trade
	for _, tr := range batch {
		switch {
		case tr.Timestamp <= headTs:
			prefix = append(prefix, tr)
		case tr.Timestamp >= tailTs:
			suffix = append(suffix, tr)
		default:
			b.discarded++
		}
	}

	if len(prefix) == 0 && len(suffix) == 0 {
		return false
	}

	merged := make([]model.Trade, 0, len(prefix)+len(b.trades)+len(suffix))
	merged = append(merged, prefix...)
	merged = append(merged, b.trades...)
	merged = append(merged, suffix...)
	b.trades = merged
	b.merged += int64(len(prefix) + len(suffix))

	return true
}

// Trim removes the maximal prefix of trades with timestamp < cutoff and
// emits a trim notification when anything was removed.
func (b *TradeBuffer) Trim(cutoff int64) int {
	b.mu.Lock()

	// The tape is sorted, so the boundary is a binary search away.
	idx := sort.Search(len(b.trades), func(i int) bool {
		return b.trades[i].Timestamp >= cutoff
	})
	if idx == 0 {
		b.mu.Unlock()
		return 0
	}

	b.trades = append(b.trades[:0], b.trades[idx:]...)
	b.trimmed += int64(idx)
	b.mu.Unlock()

	if b.em != nil {
		b.em.Emit(events.Trim{Cutoff: cutoff})
	}
	return idx
}

// Len returns the number of buffered trades.
func (b *TradeBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.trades)
}

// Snapshot returns a copy of the buffered trades.
func (b *TradeBuffer) Snapshot() []model.Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Trade, len(b.trades))
	copy(out, b.trades)
	return out
}

// Span returns the head and tail timestamps, or ok=false when empty.
func (b *TradeBuffer) Span() (head, tail int64, ok bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.trades) == 0 {
		return 0, 0, false
	}
	return b.trades[0].Timestamp, b.trades[len(b.trades)-1].Timestamp, true
}

// Stats returns buffer counters.
func (b *TradeBuffer) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return Stats{
		Len:       len(b.trades),
		Appended:  b.appended,
		Merged:    b.merged,
		Discarded: b.discarded,
		Trimmed:   b.trimmed,
	}
}
