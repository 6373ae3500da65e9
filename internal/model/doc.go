// Package model defines shared data types used across the trade tape client.
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch
//   - Prices and sizes: float64 as reported by the server
//   - Wire trades: positional JSON tuples [exchange, timestampMs, price, size, side?]
package model
