// Package events defines the closed set of notifications the tape core emits
// and the emitter consumers subscribe to.
//
// The emitter is an explicitly constructed instance; handlers run
// synchronously on the emitting goroutine, in subscription order.
package events
