package dispatch

import "github.com/quantfeed/tapefeed/internal/events"

// Control frame types recognized by the dispatcher.
const (
	typeWelcome              = "welcome"
	typePair                 = "pair"
	typeExchangeConnected    = "exchange_connected"
	typeExchangeDisconnected = "exchange_disconnected"
	typeExchangeError        = "exchange_error"
)

// Wire types for JSON parsing

// messageEnvelope is used for fast type extraction.
type messageEnvelope struct {
	Type string `json:"type"`
}

// welcomeWire is the wire format for welcome frames.
type welcomeWire struct {
	Type      string                  `json:"type"`
	Pair      string                  `json:"pair"`
	Exchanges []events.ExchangeStatus `json:"exchanges"`
	Timestamp int64                   `json:"timestamp"`
	Admin     bool                    `json:"admin"`
}

// pairWire is the wire format for pair frames.
type pairWire struct {
	Type string `json:"type"`
	Pair string `json:"pair"`
}

// exchangeWire is the wire format for exchange_connected, exchange_disconnected
// and exchange_error frames.
type exchangeWire struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Message string `json:"message"`
}
