package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// State is a connection lifecycle state.
type State string

const (
	StateDisconnected      State = "disconnected"
	StateConnecting        State = "connecting"
	StateConnected         State = "connected"
	StateAwaitingReconnect State = "awaiting_reconnect"
)

// TimestampedMessage wraps raw frame data with its receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Command is the outbound control command wire shape.
type Command struct {
	Method  string `json:"method"`
	Message any    `json:"message"`
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL          string        // Live feed address (ws:// or wss://)
	PingInterval time.Duration // Keepalive ping cadence
	PingTimeout  time.Duration // Max time without ping/pong before the connection is stale
	WriteTimeout time.Duration // Write deadline for sends
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval: 30 * time.Second,
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1000,
	}
}

// ManagerConfig configures the connection Manager.
type ManagerConfig struct {
	URL string // Live feed address

	// Backoff: the cold base applies before the first successful session,
	// the warm base after, preventing thrash storms once a session has been
	// established at least once. Each scheduled attempt multiplies the
	// current delay by BackoffFactor, up to MaxReconnectDelay.
	ColdReconnectDelay time.Duration
	WarmReconnectDelay time.Duration
	BackoffFactor      float64
	MaxReconnectDelay  time.Duration

	PingInterval time.Duration
	PingTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ColdReconnectDelay: 2 * time.Second,
		WarmReconnectDelay: 5 * time.Second,
		BackoffFactor:      1.1,
		MaxReconnectDelay:  60 * time.Second,
		PingInterval:       30 * time.Second,
		PingTimeout:        60 * time.Second,
		WriteTimeout:       5 * time.Second,
		BufferSize:         1000,
	}
}

// ManagerStats provides a snapshot of the manager's state.
type ManagerStats struct {
	State               State
	CurrentDelay        time.Duration // Backoff delay the next schedule will use
	Connects            int64
	ReconnectsScheduled int64
	FramesReceived      int64
}
