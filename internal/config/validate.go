package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if !strings.HasPrefix(c.Feed.URL, "ws://") && !strings.HasPrefix(c.Feed.URL, "wss://") {
		return fmt.Errorf("feed.url must be a ws:// or wss:// endpoint, got %q", c.Feed.URL)
	}

	if c.Connection.BackoffFactor < 1 {
		return fmt.Errorf("connection.backoff_factor must be >= 1, got %v", c.Connection.BackoffFactor)
	}
	if c.Connection.MaxReconnectDelay < c.Connection.WarmReconnectDelay {
		return fmt.Errorf("connection.max_reconnect_delay (%v) cannot be below warm_reconnect_delay (%v)",
			c.Connection.MaxReconnectDelay, c.Connection.WarmReconnectDelay)
	}
	if c.Connection.BufferSize < 1 {
		return errors.New("connection.buffer_size must be >= 1")
	}

	if c.History.MaxRetries < 0 {
		return errors.New("history.max_retries must be >= 0")
	}

	if c.Buffer.MaxAge < c.Buffer.TrimInterval {
		return fmt.Errorf("buffer.max_age (%v) cannot be below trim_interval (%v)",
			c.Buffer.MaxAge, c.Buffer.TrimInterval)
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}

	return nil
}
