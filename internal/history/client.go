package history

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client fetches historical trade ranges over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a backfill client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// DeriveBaseURL maps a live feed address to the backfill endpoint root by
// substituting the request-protocol scheme for the socket scheme.
func DeriveBaseURL(feedURL string) string {
	switch {
	case strings.HasPrefix(feedURL, "wss://"):
		return "https://" + strings.TrimPrefix(feedURL, "wss://")
	case strings.HasPrefix(feedURL, "ws://"):
		return "http://" + strings.TrimPrefix(feedURL, "ws://")
	default:
		return feedURL
	}
}
