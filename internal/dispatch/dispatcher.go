package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/quantfeed/tapefeed/internal/buffer"
	"github.com/quantfeed/tapefeed/internal/clock"
	"github.com/quantfeed/tapefeed/internal/events"
	"github.com/quantfeed/tapefeed/internal/market"
	"github.com/quantfeed/tapefeed/internal/metrics"
	"github.com/quantfeed/tapefeed/internal/model"
)

// Config holds dispatcher configuration.
type Config struct {
	Debug bool // Emit debug-mode alerts for exchange churn
}

// Dispatcher classifies inbound frames and applies their effects.
type Dispatcher struct {
	cfg    Config
	logger *slog.Logger

	em        *events.Emitter
	buf       *buffer.TradeBuffer
	clk       *clock.Compensator
	exchanges *market.ExchangeSet
	metrics   *metrics.Metrics

	mu   sync.RWMutex
	pair string
}

// New creates a dispatcher over the shared buffer, compensator and
// exchange set. m may be nil to disable instrumentation.
func New(cfg Config, em *events.Emitter, buf *buffer.TradeBuffer, clk *clock.Compensator, exchanges *market.ExchangeSet, m *metrics.Metrics, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:       cfg,
		logger:    logger,
		em:        em,
		buf:       buf,
		clk:       clk,
		exchanges: exchanges,
		metrics:   m,
	}
}

// Pair returns the currently tracked instrument symbol.
func (d *Dispatcher) Pair() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pair
}

// setPair replaces the tracked pair and emits the pair notification.
func (d *Dispatcher) setPair(pair string, forced bool) {
	d.mu.Lock()
	d.pair = pair
	d.mu.Unlock()

	d.em.Emit(events.Pair{Pair: pair, Forced: forced})
}

// Dispatch classifies a raw frame and applies it. Malformed or empty frames
// are dropped; unknown control types have no effect.
func (d *Dispatcher) Dispatch(data []byte) {
	if d.metrics != nil {
		d.metrics.FramesTotal.Inc()
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		d.dropFrame("empty frame", nil)
		return
	}

	if data[0] == '[' {
		d.dispatchBatch(data)
		return
	}
	d.dispatchControl(data)
}

// dropFrame records a recoverable parse failure.
func (d *Dispatcher) dropFrame(reason string, err error) {
	if d.metrics != nil {
		d.metrics.ParseErrorsTotal.Inc()
	}
	d.logger.Warn("dropping malformed frame", "reason", reason, "error", err)
}

// dispatchBatch handles an ordered collection of trade tuples.
func (d *Dispatcher) dispatchBatch(data []byte) {
	var batch []model.Trade
	if err := json.Unmarshal(data, &batch); err != nil {
		d.dropFrame("trade batch", err)
		return
	}
	if len(batch) == 0 {
		return
	}

	// The server does not guarantee ordering; same-timestamp trades keep
	// their arrival order.
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].Timestamp < batch[j].Timestamp
	})

	d.clk.ApplyBatch(batch)
	d.buf.Append(batch)

	if d.metrics != nil {
		d.metrics.TradesTotal.Add(float64(len(batch)))
		d.metrics.BufferSize.Set(float64(d.buf.Len()))
	}

	d.em.Emit(events.Trades{Batch: batch})
}

// dispatchControl handles an object frame with a type discriminator.
func (d *Dispatcher) dispatchControl(data []byte) {
	var envelope messageEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		d.dropFrame("control frame", err)
		return
	}

	switch envelope.Type {
	case typeWelcome:
		d.handleWelcome(data)
	case typePair:
		d.handlePair(data)
	case typeExchangeConnected:
		d.handleExchangeConnected(data)
	case typeExchangeDisconnected:
		d.handleExchangeDisconnected(data)
	case typeExchangeError:
		d.handleExchangeError(data)
	default:
		d.logger.Debug("skipping message type", "type", envelope.Type)
	}
}

func (d *Dispatcher) handleWelcome(data []byte) {
	var wire welcomeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		d.dropFrame("welcome", err)
		return
	}

	d.em.Emit(events.Welcome{
		Pair:      wire.Pair,
		Exchanges: wire.Exchanges,
		Timestamp: wire.Timestamp,
		Admin:     wire.Admin,
	})
	if wire.Admin {
		d.em.Emit(events.Admin{})
	}

	connected := make([]string, 0, len(wire.Exchanges))
	for _, ex := range wire.Exchanges {
		if ex.Connected {
			connected = append(connected, ex.ID)
		}
	}
	d.exchanges.Reset(connected)

	offset := d.clk.Compute(wire.Timestamp)
	if d.clk.Delayed() {
		d.logger.Warn("server clock skew detected", "offset_ms", offset)
	}

	d.em.Emit(events.Exchanges{IDs: d.exchanges.List()})
	d.setPair(wire.Pair, true)

	var msg string
	if len(connected) == 0 {
		msg = fmt.Sprintf("tracking %s, no connected exchanges", wire.Pair)
	} else {
		msg = fmt.Sprintf("tracking %s via %s", wire.Pair, strings.Join(connected, ", "))
	}
	d.em.Emit(events.NewAlert(events.AlertInfo, msg))
}

func (d *Dispatcher) handlePair(data []byte) {
	var wire pairWire
	if err := json.Unmarshal(data, &wire); err != nil {
		d.dropFrame("pair", err)
		return
	}

	d.setPair(wire.Pair, false)
	d.em.Emit(events.NewAlert(events.AlertInfo, fmt.Sprintf("now tracking %s", wire.Pair)))
}

func (d *Dispatcher) handleExchangeConnected(data []byte) {
	var wire exchangeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		d.dropFrame("exchange_connected", err)
		return
	}

	d.exchanges.Add(wire.ID)
	d.em.Emit(events.Exchanges{IDs: d.exchanges.List()})

	if d.cfg.Debug {
		d.em.Emit(events.NewAlert(events.AlertSuccess, fmt.Sprintf("%s connected", wire.ID)))
	}
}

func (d *Dispatcher) handleExchangeDisconnected(data []byte) {
	var wire exchangeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		d.dropFrame("exchange_disconnected", err)
		return
	}

	d.exchanges.Remove(wire.ID)
	d.em.Emit(events.Exchanges{IDs: d.exchanges.List()})

	if d.cfg.Debug {
		d.em.Emit(events.NewAlert(events.AlertError, fmt.Sprintf("%s disconnected", wire.ID)))
	}
}

func (d *Dispatcher) handleExchangeError(data []byte) {
	var wire exchangeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		d.dropFrame("exchange_error", err)
		return
	}

	// No state mutation; surfaced only in debug mode.
	if d.cfg.Debug {
		d.em.Emit(events.NewAlert(events.AlertError, fmt.Sprintf("%s: %s", wire.ID, wire.Message)))
	}
}
