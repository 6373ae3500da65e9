package events

import (
	"github.com/google/uuid"

	"github.com/quantfeed/tapefeed/internal/model"
)

// Kind identifies the event type.
type Kind string

// The closed set of event kinds.
const (
	KindConnected     Kind = "connected"
	KindDisconnected  Kind = "disconnected"
	KindError         Kind = "error"
	KindPrice         Kind = "price"
	KindTrades        Kind = "trades"
	KindWelcome       Kind = "welcome"
	KindAdmin         Kind = "admin"
	KindExchanges     Kind = "exchanges"
	KindPair          Kind = "pair"
	KindAlert         Kind = "alert"
	KindFetchProgress Kind = "fetchProgress"
	KindHistory       Kind = "history"
	KindTrim          Kind = "trim"
)

// Event is implemented by every notification payload.
type Event interface {
	Kind() Kind
}

// Connected signals the live feed is open.
type Connected struct{}

func (Connected) Kind() Kind { return KindConnected }

// Disconnected signals the live feed was lost.
type Disconnected struct{}

func (Disconnected) Kind() Kind { return KindDisconnected }

// Error carries a connectivity error.
type Error struct {
	Err error
}

func (Error) Kind() Kind { return KindError }

// PriceState qualifies a price notification.
type PriceState string

const (
	PriceNeutral PriceState = "neutral"
	PriceUp      PriceState = "up"
	PriceDown    PriceState = "down"
)

// Price carries a price display update.
type Price struct {
	Value float64
	State PriceState
}

func (Price) Kind() Kind { return KindPrice }

// Trades carries a live batch accepted into the buffer.
type Trades struct {
	Batch []model.Trade
}

func (Trades) Kind() Kind { return KindTrades }

// ExchangeStatus is one entry of the server's reported exchange list.
type ExchangeStatus struct {
	ID        string `json:"id"`
	Connected bool   `json:"connected"`
}

// Welcome carries the server handshake data.
type Welcome struct {
	Pair      string
	Exchanges []ExchangeStatus
	Timestamp int64
	Admin     bool
}

func (Welcome) Kind() Kind { return KindWelcome }

// Admin signals the server granted admin status.
type Admin struct{}

func (Admin) Kind() Kind { return KindAdmin }

// Exchanges carries the current connected-exchange list.
type Exchanges struct {
	IDs []string
}

func (Exchanges) Kind() Kind { return KindExchanges }

// Pair carries the tracked instrument symbol.
type Pair struct {
	Pair   string
	Forced bool
}

func (Pair) Kind() Kind { return KindPair }

// Alert types.
const (
	AlertInfo    = "info"
	AlertSuccess = "success"
	AlertError   = "error"
)

// Alert is a record for the display layer to render.
type Alert struct {
	ID      string
	Type    string
	Title   string
	Message string
	Data    any
}

func (Alert) Kind() Kind { return KindAlert }

// NewAlert creates an alert with a fresh id.
func NewAlert(alertType, message string) Alert {
	return Alert{
		ID:      uuid.NewString(),
		Type:    alertType,
		Message: message,
	}
}

// FetchProgress reports backfill download progress.
type FetchProgress struct {
	Loaded   int64
	Total    int64
	Progress float64 // Fraction 0..1, or 0 when total is unknown
}

func (FetchProgress) Kind() Kind { return KindFetchProgress }

// History signals a backfill changed the buffer.
type History struct {
	Replaced bool
}

func (History) Kind() Kind { return KindHistory }

// Trim signals trades before Cutoff were discarded.
type Trim struct {
	Cutoff int64
}

func (Trim) Kind() Kind { return KindTrim }
