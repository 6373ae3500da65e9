package model

import (
	"encoding/json"
	"testing"
)

func TestTrade_UnmarshalTuple(t *testing.T) {
	data := []byte(`["BITSTAMP", 1700000000123, 42000.5, 0.25, "buy"]`)

	var tr Trade
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if tr.Exchange != "BITSTAMP" {
		t.Errorf("Exchange = %q, want %q", tr.Exchange, "BITSTAMP")
	}
	if tr.Timestamp != 1700000000123 {
		t.Errorf("Timestamp = %d, want 1700000000123", tr.Timestamp)
	}
	if tr.Price != 42000.5 {
		t.Errorf("Price = %v, want 42000.5", tr.Price)
	}
	if tr.Size != 0.25 {
		t.Errorf("Size = %v, want 0.25", tr.Size)
	}
	if tr.Side != SideBuy {
		t.Errorf("Side = %q, want %q", tr.Side, SideBuy)
	}
}

func TestTrade_UnmarshalTupleWithoutSide(t *testing.T) {
	data := []byte(`["KRAKEN", 1700000000456, 42001, 1.5]`)

	var tr Trade
	if err := json.Unmarshal(data, &tr); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if tr.Side != "" {
		t.Errorf("Side = %q, want empty", tr.Side)
	}
	if tr.Size != 1.5 {
		t.Errorf("Size = %v, want 1.5", tr.Size)
	}
}

func TestTrade_UnmarshalTooShort(t *testing.T) {
	data := []byte(`["KRAKEN", 1700000000456, 42001]`)

	var tr Trade
	if err := json.Unmarshal(data, &tr); err == nil {
		t.Fatal("expected error for 3-element tuple, got nil")
	}
}

func TestTrade_UnmarshalNotAnArray(t *testing.T) {
	data := []byte(`{"type":"welcome"}`)

	var tr Trade
	if err := json.Unmarshal(data, &tr); err == nil {
		t.Fatal("expected error for object payload, got nil")
	}
}

func TestTrade_MarshalRoundTrip(t *testing.T) {
	orig := Trade{
		Exchange:  "COINBASE",
		Timestamp: 1700000001000,
		Price:     42002.25,
		Size:      0.1,
		Side:      SideSell,
	}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back Trade
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if back != orig {
		t.Errorf("round trip = %+v, want %+v", back, orig)
	}
}
