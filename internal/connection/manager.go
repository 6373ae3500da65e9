package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/quantfeed/tapefeed/internal/events"
	"github.com/quantfeed/tapefeed/internal/metrics"
)

// Dispatcher consumes raw inbound frames in receipt order.
type Dispatcher interface {
	Dispatch(data []byte)
}

// Manager owns the live feed connection and its lifecycle state machine.
type Manager struct {
	cfg        ManagerConfig
	dispatcher Dispatcher
	em         *events.Emitter
	metrics    *metrics.Metrics
	logger     *slog.Logger

	// newClient is a seam for tests.
	newClient func(ClientConfig, *slog.Logger) Client

	mu    sync.Mutex
	state State
	// gen increments whenever the active connection handle changes;
	// callbacks from a previous generation are stale and ignored.
	gen            int64
	client         Client
	delay          time.Duration
	reconnectTimer *time.Timer
	dialCtx        context.Context

	connects   int64
	reconnects int64
	frames     int64
}

// NewManager creates a connection manager. m may be nil to disable
// instrumentation.
func NewManager(cfg ManagerConfig, dispatcher Dispatcher, em *events.Emitter, m *metrics.Metrics, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultManagerConfig()
	if cfg.ColdReconnectDelay == 0 {
		cfg.ColdReconnectDelay = def.ColdReconnectDelay
	}
	if cfg.WarmReconnectDelay == 0 {
		cfg.WarmReconnectDelay = def.WarmReconnectDelay
	}
	if cfg.BackoffFactor == 0 {
		cfg.BackoffFactor = def.BackoffFactor
	}
	if cfg.MaxReconnectDelay == 0 {
		cfg.MaxReconnectDelay = def.MaxReconnectDelay
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = def.PingTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = def.BufferSize
	}

	return &Manager{
		cfg:        cfg,
		dispatcher: dispatcher,
		em:         em,
		metrics:    m,
		logger:     logger,
		newClient:  NewClient,
		state:      StateDisconnected,
		delay:      cfg.ColdReconnectDelay,
	}
}

// Connect opens a new connection. It is a no-op when a connection is already
// open or being opened. A failed attempt surfaces as an error notification
// and schedules the next one.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateConnected || m.state == StateConnecting {
		m.mu.Unlock()
		return nil
	}
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.state = StateConnecting
	m.gen++
	gen := m.gen
	m.dialCtx = ctx

	c := m.newClient(ClientConfig{
		URL:          m.cfg.URL,
		PingInterval: m.cfg.PingInterval,
		PingTimeout:  m.cfg.PingTimeout,
		WriteTimeout: m.cfg.WriteTimeout,
		BufferSize:   m.cfg.BufferSize,
	}, m.logger)
	m.client = c
	m.mu.Unlock()

	if err := c.Connect(ctx); err != nil {
		m.logger.Warn("connection attempt failed", "url", m.cfg.URL, "error", err)

		m.mu.Lock()
		stillCurrent := gen == m.gen
		if stillCurrent {
			m.state = StateDisconnected
			m.client = nil
		}
		m.mu.Unlock()

		m.em.Emit(events.NewAlert(events.AlertError, fmt.Sprintf("connection failed: %v", err)))
		m.em.Emit(events.Error{Err: err})
		if stillCurrent {
			m.Reconnect()
		}
		return err
	}

	m.onOpen(gen)

	go m.runLoop(c, gen)

	return nil
}

// Disconnect closes the active connection and leaves the retry loop.
// Idempotent.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
		m.reconnectTimer = nil
	}
	m.gen++
	wasConnected := m.state == StateConnected
	m.state = StateDisconnected
	c := m.client
	m.client = nil
	m.mu.Unlock()

	if c != nil {
		c.Close()
	}
	if wasConnected {
		m.em.Emit(events.Disconnected{})
	}
}

// Reconnect schedules a connection attempt after the current backoff delay
// and grows the delay for the next one. At most one attempt is pending at any
// time; rescheduling replaces the previous timer. No-op while connected.
func (m *Manager) Reconnect() {
	m.mu.Lock()
	if m.state == StateConnected {
		m.mu.Unlock()
		return
	}
	if m.reconnectTimer != nil {
		m.reconnectTimer.Stop()
	}

	delay := m.delay
	m.state = StateAwaitingReconnect
	ctx := m.dialCtx
	if ctx == nil {
		ctx = context.Background()
	}
	m.reconnectTimer = time.AfterFunc(delay, func() {
		m.Connect(ctx)
	})

	next := time.Duration(float64(m.delay) * m.cfg.BackoffFactor)
	if next > m.cfg.MaxReconnectDelay {
		next = m.cfg.MaxReconnectDelay
	}
	m.delay = next
	m.reconnects++
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.ReconnectsTotal.Inc()
	}
	m.logger.Info("reconnect scheduled", "delay", delay)
}

// Send transmits a control command when connected and silently drops it
// otherwise (no queuing).
func (m *Manager) Send(method string, message any) error {
	m.mu.Lock()
	c := m.client
	connected := m.state == StateConnected
	m.mu.Unlock()

	if !connected || c == nil {
		m.logger.Debug("dropping command, not connected", "method", method)
		return nil
	}

	data, err := json.Marshal(Command{Method: method, Message: message})
	if err != nil {
		return fmt.Errorf("encode command: %w", err)
	}
	return c.Send(data)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() ManagerStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ManagerStats{
		State:               m.state,
		CurrentDelay:        m.delay,
		Connects:            m.connects,
		ReconnectsScheduled: m.reconnects,
		FramesReceived:      m.frames,
	}
}

// onOpen transitions to Connected and resets the backoff to the warm base.
func (m *Manager) onOpen(gen int64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.state = StateConnected
	m.delay = m.cfg.WarmReconnectDelay
	m.connects++
	m.mu.Unlock()

	m.logger.Info("live feed connected", "url", m.cfg.URL)

	m.em.Emit(events.Connected{})
	m.em.Emit(events.Price{Value: 0, State: events.PriceNeutral})
}

// runLoop consumes one connection's frames until it dies. Frames are
// dispatched to completion before the next is read, so handlers never
// interleave within a connection.
func (m *Manager) runLoop(c Client, gen int64) {
	for {
		select {
		case err := <-c.Errors():
			m.onError(gen, err)
			m.onClose(gen)
			return

		case msg, ok := <-c.Messages():
			if !ok {
				m.onClose(gen)
				return
			}

			m.mu.Lock()
			stale := gen != m.gen
			if !stale {
				m.frames++
			}
			m.mu.Unlock()
			if stale {
				return
			}

			m.dispatcher.Dispatch(msg.Data)
		}
	}
}

// onError surfaces a transport error and schedules a reconnect. Closing the
// handle is the transport's job, observed separately by onClose.
func (m *Manager) onError(gen int64, err error) {
	m.mu.Lock()
	stale := gen != m.gen
	m.mu.Unlock()
	if stale {
		return
	}

	m.logger.Warn("live feed error", "error", err)
	m.em.Emit(events.NewAlert(events.AlertError, fmt.Sprintf("feed error: %v", err)))
	m.em.Emit(events.Error{Err: err})
	m.Reconnect()
}

// onClose transitions out of Connected, tears down the handle (cancelling
// its keepalive housekeeping) and schedules a reconnect. Buffered history is
// untouched: disconnects never drop accepted trades.
func (m *Manager) onClose(gen int64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	wasConnected := m.state == StateConnected
	m.state = StateDisconnected
	c := m.client
	m.client = nil
	m.mu.Unlock()

	if c != nil {
		c.Close()
	}

	if wasConnected {
		m.logger.Warn("live feed disconnected")
		m.em.Emit(events.NewAlert(events.AlertError, "connection to the feed server was lost"))
		m.em.Emit(events.Disconnected{})
	}

	m.Reconnect()
}
