// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Live feed frame rates and parse errors
//   - Connection state and reconnect attempts
//   - Trade buffer size and trim counts
//   - Backfill request outcomes and bytes transferred
package metrics
