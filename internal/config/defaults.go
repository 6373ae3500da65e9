package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultColdReconnectDelay = 2 * time.Second
	DefaultWarmReconnectDelay = 5 * time.Second
	DefaultBackoffFactor      = 1.1
	DefaultMaxReconnectDelay  = 60 * time.Second
	DefaultPingInterval       = 30 * time.Second
	DefaultPingTimeout        = 60 * time.Second
	DefaultWriteTimeout       = 5 * time.Second
	DefaultBufferSize         = 1000
	DefaultHistoryTimeout     = 30 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryBackoff       = 1 * time.Second
	DefaultInitialLoad        = 15 * time.Minute
	DefaultMaxAge             = 15 * time.Minute
	DefaultTrimInterval       = 1 * time.Minute
	DefaultMetricsPort        = 9090
	DefaultMetricsPath        = "/metrics"
)

func (c *Config) applyDefaults() {
	// Connection defaults
	if c.Connection.ColdReconnectDelay == 0 {
		c.Connection.ColdReconnectDelay = DefaultColdReconnectDelay
	}
	if c.Connection.WarmReconnectDelay == 0 {
		c.Connection.WarmReconnectDelay = DefaultWarmReconnectDelay
	}
	if c.Connection.BackoffFactor == 0 {
		c.Connection.BackoffFactor = DefaultBackoffFactor
	}
	if c.Connection.MaxReconnectDelay == 0 {
		c.Connection.MaxReconnectDelay = DefaultMaxReconnectDelay
	}
	if c.Connection.PingInterval == 0 {
		c.Connection.PingInterval = DefaultPingInterval
	}
	if c.Connection.PingTimeout == 0 {
		c.Connection.PingTimeout = DefaultPingTimeout
	}
	if c.Connection.WriteTimeout == 0 {
		c.Connection.WriteTimeout = DefaultWriteTimeout
	}
	if c.Connection.BufferSize == 0 {
		c.Connection.BufferSize = DefaultBufferSize
	}

	// History defaults
	if c.History.Timeout == 0 {
		c.History.Timeout = DefaultHistoryTimeout
	}
	if c.History.MaxRetries == 0 {
		c.History.MaxRetries = DefaultMaxRetries
	}
	if c.History.RetryBackoff == 0 {
		c.History.RetryBackoff = DefaultRetryBackoff
	}
	if c.History.InitialLoad == 0 {
		c.History.InitialLoad = DefaultInitialLoad
	}

	// Buffer defaults
	if c.Buffer.MaxAge == 0 {
		c.Buffer.MaxAge = DefaultMaxAge
	}
	if c.Buffer.TrimInterval == 0 {
		c.Buffer.TrimInterval = DefaultTrimInterval
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}
