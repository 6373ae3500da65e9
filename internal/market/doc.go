// Package market tracks which exchanges are currently connected upstream.
//
// The set preserves insertion order for display purposes; membership is the
// invariant that matters (no duplicates).
package market
