package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/quantfeed/tapefeed/internal/model"
)

// APIError represents an HTTP failure from the backfill endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("history api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// ProgressFunc observes download progress. total is -1 when the server does
// not report a content length.
type ProgressFunc func(loaded, total int64)

// HistoryURL returns the request URL for an absolute range.
func (c *Client) HistoryURL(from, to int64) string {
	return fmt.Sprintf("%s/history/%d/%d", c.baseURL, from, to)
}

// History fetches the trade tuples recorded in [from, to]. progress may be
// nil.
func (c *Client) History(ctx context.Context, from, to int64, progress ProgressFunc) ([]model.Trade, error) {
	body, err := c.doWithRetry(ctx, c.HistoryURL(from, to), progress)
	if err != nil {
		return nil, err
	}

	var batch []model.Trade
	if err := json.Unmarshal(body, &batch); err != nil {
		return nil, fmt.Errorf("unmarshal history response: %w", err)
	}
	return batch, nil
}

// doRequest performs a GET against url, streaming the body through progress.
func (c *Client) doRequest(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if progress != nil {
		reader = &progressReader{
			r:        resp.Body,
			total:    resp.ContentLength,
			progress: progress,
		}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// doWithRetry performs a request with exponential backoff retry.
func (c *Client) doWithRetry(ctx context.Context, url string, progress ProgressFunc) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Jitter: backoff * (0.5 to 1.5)
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Debug("retrying backfill request",
				"attempt", attempt,
				"backoff", jitter,
				"url", url,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(jitter):
			}

			backoff *= 2
		}

		body, err := c.doRequest(ctx, url, progress)
		if err == nil {
			return body, nil
		}

		lastErr = err

		apiErr, ok := err.(*APIError)
		if !ok || !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// progressReader reports cumulative bytes read to a ProgressFunc.
type progressReader struct {
	r        io.Reader
	loaded   int64
	total    int64
	progress ProgressFunc
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.loaded += int64(n)
		p.progress(p.loaded, p.total)
	}
	return n, err
}
