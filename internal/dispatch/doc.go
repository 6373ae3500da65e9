// Package dispatch classifies inbound feed frames and routes them to buffer
// updates, exchange-set updates, or notification emission.
//
// Frames are either trade batches (JSON arrays of positional tuples) or
// control objects carrying a "type" discriminator. Malformed frames are
// dropped and counted, never fatal; unrecognized control types are ignored
// for forward compatibility with server protocol extensions.
package dispatch
