// Package clock compensates for skew between server-reported and local time.
package clock

import (
	"sync"
	"time"

	"github.com/quantfeed/tapefeed/internal/model"
)

// DelayThreshold is the absolute offset (ms) beyond which timestamps are
// considered skewed and compensation kicks in.
const DelayThreshold = 2000

// Compensator holds the per-session clock offset. The offset is recomputed
// once per handshake and is stable between handshakes.
type Compensator struct {
	mu      sync.RWMutex
	offset  int64 // serverTime - localTime, in ms
	delayed bool

	now func() time.Time // injectable for tests
}

// New creates a compensator with no offset.
func New() *Compensator {
	return &Compensator{now: time.Now}
}

// NewWithNow creates a compensator with a custom time source.
func NewWithNow(now func() time.Time) *Compensator {
	return &Compensator{now: now}
}

// Compute derives the offset from a server-reported timestamp (ms) and
// returns it. Compensation is active while |offset| > DelayThreshold.
func (c *Compensator) Compute(serverTimestamp int64) int64 {
	local := c.now().UnixMilli()

	c.mu.Lock()
	c.offset = serverTimestamp - local
	c.delayed = c.offset > DelayThreshold || c.offset < -DelayThreshold
	offset := c.offset
	c.mu.Unlock()

	return offset
}

// Offset returns the current offset in ms.
func (c *Compensator) Offset() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// Delayed reports whether compensation is active.
func (c *Compensator) Delayed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.delayed
}

// Apply shifts a timestamp into the local time domain. It is the identity
// while compensation is inactive.
func (c *Compensator) Apply(timestamp int64) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.delayed {
		return timestamp
	}
	return timestamp - c.offset
}

// ApplyBatch shifts every trade in batch in place.
func (c *Compensator) ApplyBatch(batch []model.Trade) {
	c.mu.RLock()
	delayed, offset := c.delayed, c.offset
	c.mu.RUnlock()

	if !delayed {
		return
	}
	for i := range batch {
		batch[i].Timestamp -= offset
	}
}
