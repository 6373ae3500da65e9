package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestDeriveBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"wss://feed.example.com/ws", "https://feed.example.com/ws"},
		{"ws://localhost:8080", "http://localhost:8080"},
		{"https://already.http", "https://already.http"},
	}

	for _, tt := range tests {
		if got := DeriveBaseURL(tt.in); got != tt.want {
			t.Errorf("DeriveBaseURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClient_HistoryURL(t *testing.T) {
	c := NewClient("http://example.com/")

	got := c.HistoryURL(1000, 2000)
	want := "http://example.com/history/1000/2000"
	if got != want {
		t.Errorf("HistoryURL = %q, want %q", got, want)
	}
}

func TestClient_History(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/history/1000/2000" {
			t.Errorf("path = %q, want /history/1000/2000", r.URL.Path)
		}
		w.Write([]byte(`[["KRAKEN",1000,10,1,"buy"],["BITSTAMP",1500,11,2]]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)

	batch, err := c.History(context.Background(), 1000, 2000, nil)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("got %d trades, want 2", len(batch))
	}
	if batch[0].Exchange != "KRAKEN" || batch[0].Timestamp != 1000 {
		t.Errorf("first trade = %+v", batch[0])
	}
}

func TestClient_HistoryNotRetryableError(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, time.Millisecond))

	_, err := c.History(context.Background(), 0, 1, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if hits.Load() != 1 {
		t.Errorf("server hits = %d, want 1 (404 is not retryable)", hits.Load())
	}
}

func TestClient_HistoryRetriesServerErrors(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, time.Millisecond))

	batch, err := c.History(context.Background(), 0, 1, nil)
	if err != nil {
		t.Fatalf("History failed after retries: %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("got %d trades, want 0", len(batch))
	}
	if hits.Load() != 3 {
		t.Errorf("server hits = %d, want 3", hits.Load())
	}
}

func TestAPIError_IsRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{500, true},
		{503, true},
		{429, true},
		{404, false},
		{400, false},
	}
	for _, tt := range tests {
		e := &APIError{StatusCode: tt.code}
		if got := e.IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
