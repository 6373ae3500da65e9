// Package history issues on-demand backfill requests against the feed
// server's HTTP endpoint and reconciles the results into the trade buffer.
//
// Requests are deduplicated by exact URL, and completions carry sequence
// numbers so a slow early request cannot clobber the effects of a later one.
package history
