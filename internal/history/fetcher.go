package history

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/quantfeed/tapefeed/internal/buffer"
	"github.com/quantfeed/tapefeed/internal/clock"
	"github.com/quantfeed/tapefeed/internal/events"
	"github.com/quantfeed/tapefeed/internal/metrics"
)

// Fetcher issues backfill requests and merges the results into the shared
// trade buffer via the clock-skew compensator.
type Fetcher struct {
	client  *Client
	buf     *buffer.TradeBuffer
	clk     *clock.Compensator
	em      *events.Emitter
	metrics *metrics.Metrics
	logger  *slog.Logger

	now func() time.Time // injectable for tests

	mu sync.Mutex
	// issued holds URLs that have completed successfully or are in flight;
	// a failed request is cleared so callers can retry it.
	issued map[string]struct{}
	// Completion sequencing: a fetch whose number is below the latest
	// applied one has been superseded and its results are discarded.
	nextSeq     uint64
	lastApplied uint64
}

// NewFetcher creates a fetcher over the shared buffer and compensator.
// m may be nil to disable instrumentation.
func NewFetcher(client *Client, buf *buffer.TradeBuffer, clk *clock.Compensator, em *events.Emitter, m *metrics.Metrics, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:  client,
		buf:     buf,
		clk:     clk,
		em:      em,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		issued:  make(map[string]struct{}),
	}
}

// Fetch retrieves the [from, to] range (ms since epoch) and merges it into
// the buffer. With forceReplace, or when the buffer is empty, the fetched
// range replaces the buffer wholesale; otherwise the boundary-merge rule
// applies. An identical already-issued request resolves as a no-op.
func (f *Fetcher) Fetch(ctx context.Context, from, to int64, forceReplace bool) error {
	url := f.client.HistoryURL(from, to)

	f.mu.Lock()
	if _, dup := f.issued[url]; dup {
		f.mu.Unlock()
		f.logger.Debug("duplicate backfill suppressed", "url", url)
		f.countResult(metrics.FetchDuplicate)
		return nil
	}
	f.issued[url] = struct{}{}
	f.nextSeq++
	seq := f.nextSeq
	f.mu.Unlock()

	batch, err := f.client.History(ctx, from, to, f.progressFunc())
	if err != nil {
		f.mu.Lock()
		delete(f.issued, url)
		f.mu.Unlock()

		f.logger.Warn("backfill failed", "url", url, "error", err)
		f.em.Emit(events.NewAlert(events.AlertError, err.Error()))
		f.countResult(metrics.FetchError)
		return err
	}

	// The endpoint returns an ordered collection, but merge correctness
	// depends on it, so don't assume.
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Timestamp < batch[j].Timestamp
	})
	f.clk.ApplyBatch(batch)

	f.mu.Lock()
	if seq < f.lastApplied {
		f.mu.Unlock()
		f.logger.Debug("superseded backfill discarded", "url", url)
		f.countResult(metrics.FetchSuperseded)
		return nil
	}
	f.lastApplied = seq

	replace := forceReplace || f.buf.Len() == 0
	changed := f.buf.MergeHistorical(batch, replace)
	f.mu.Unlock()

	f.countResult(metrics.FetchOK)
	if f.metrics != nil {
		f.metrics.BufferSize.Set(float64(f.buf.Len()))
	}

	if changed {
		f.em.Emit(events.History{Replaced: replace})
	}

	f.logger.Debug("backfill merged",
		"url", url,
		"trades", len(batch),
		"replaced", replace,
		"changed", changed,
	)

	return nil
}

// FetchRecent retrieves the last `minutes` minutes ending now. The result
// always fully replaces the buffer; used for initial load and zoom reset.
func (f *Fetcher) FetchRecent(ctx context.Context, minutes int64) error {
	to := f.now().UnixMilli()
	from := to - minutes*60_000
	return f.Fetch(ctx, from, to, true)
}

// progressFunc builds a per-request progress callback that forwards download
// progress to subscribers. loaded is cumulative within one request.
func (f *Fetcher) progressFunc() ProgressFunc {
	var last int64
	return func(loaded, total int64) {
		if f.metrics != nil {
			f.metrics.FetchBytesTotal.Add(float64(loaded - last))
			last = loaded
		}

		var fraction float64
		if total > 0 {
			fraction = float64(loaded) / float64(total)
		}
		f.em.Emit(events.FetchProgress{
			Loaded:   loaded,
			Total:    total,
			Progress: fraction,
		})
	}
}

func (f *Fetcher) countResult(result string) {
	if f.metrics != nil {
		f.metrics.FetchesTotal.WithLabelValues(result).Inc()
	}
}
