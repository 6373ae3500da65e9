package model

import (
	"encoding/json"
	"fmt"
)

// Trade sides as reported on the wire.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Trade represents a single executed transaction.
type Trade struct {
	Exchange  string  // Reporting exchange id (may be empty)
	Timestamp int64   // Execution time (ms since epoch); the ordering key
	Price     float64 // Execution price
	Size      float64 // Executed size
	Side      string  // "buy", "sell", or empty when not reported
}

// UnmarshalJSON decodes the positional wire tuple
// [exchange, timestampMs, price, size, side?].
func (t *Trade) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("trade tuple: %w", err)
	}
	if len(tuple) < 4 {
		return fmt.Errorf("trade tuple: got %d elements, want at least 4", len(tuple))
	}

	// Position 0 is the exchange slot; a non-string value is tolerated and
	// leaves the field empty.
	json.Unmarshal(tuple[0], &t.Exchange)

	if err := json.Unmarshal(tuple[1], &t.Timestamp); err != nil {
		return fmt.Errorf("trade tuple timestamp: %w", err)
	}
	if err := json.Unmarshal(tuple[2], &t.Price); err != nil {
		return fmt.Errorf("trade tuple price: %w", err)
	}
	if err := json.Unmarshal(tuple[3], &t.Size); err != nil {
		return fmt.Errorf("trade tuple size: %w", err)
	}

	if len(tuple) >= 5 {
		json.Unmarshal(tuple[4], &t.Side)
	}

	return nil
}

// MarshalJSON encodes the trade back into its wire tuple form.
func (t Trade) MarshalJSON() ([]byte, error) {
	tuple := []any{t.Exchange, t.Timestamp, t.Price, t.Size}
	if t.Side != "" {
		tuple = append(tuple, t.Side)
	}
	return json.Marshal(tuple)
}
