// Package connection implements the live feed connection lifecycle.
//
// The Manager owns a single WebSocket connection at a time and drives the
// state machine Disconnected → Connecting → Connected → Disconnected →
// AwaitingReconnect → Connecting → … with growing backoff between attempts.
// Inbound frames are handed to the dispatcher in receipt order; malformed
// frames are dropped, never fatal. The only way out of the retry loop is an
// external Disconnect.
package connection
