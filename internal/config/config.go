package config

import "time"

// Config is the root configuration for a tapefeed instance.
type Config struct {
	Feed       FeedConfig       `yaml:"feed"`
	Connection ConnectionConfig `yaml:"connection"`
	History    HistoryConfig    `yaml:"history"`
	Buffer     BufferConfig     `yaml:"buffer"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// FeedConfig identifies the upstream trade feed.
type FeedConfig struct {
	URL   string `yaml:"url"`  // WebSocket endpoint (ws:// or wss://)
	Pair  string `yaml:"pair"` // currency pair label, informational until the feed reports one
	Debug bool   `yaml:"debug"`
}

// ConnectionConfig holds WebSocket connection manager settings.
type ConnectionConfig struct {
	ColdReconnectDelay time.Duration `yaml:"cold_reconnect_delay"`
	WarmReconnectDelay time.Duration `yaml:"warm_reconnect_delay"`
	BackoffFactor      float64       `yaml:"backoff_factor"`
	MaxReconnectDelay  time.Duration `yaml:"max_reconnect_delay"`
	PingInterval       time.Duration `yaml:"ping_interval"`
	PingTimeout        time.Duration `yaml:"ping_timeout"`
	WriteTimeout       time.Duration `yaml:"write_timeout"`
	BufferSize         int           `yaml:"buffer_size"`
}

// HistoryConfig holds backfill HTTP client settings.
type HistoryConfig struct {
	BaseURL      string        `yaml:"base_url"` // optional; derived from feed.url when empty
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	InitialLoad  time.Duration `yaml:"initial_load"` // window fetched on startup
}

// BufferConfig holds trade retention settings.
type BufferConfig struct {
	MaxAge       time.Duration `yaml:"max_age"`
	TrimInterval time.Duration `yaml:"trim_interval"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Port int    `yaml:"port"`
	Path string `yaml:"path"`
}
