// Package game implements the rules of a four-seat Mus variant played with
// quantum cards: the per-phase betting state machine, the hand aggregate
// that sequences phases and holds the deferred ledger, and end-of-hand
// score resolution.
//
// A Game is not safe for concurrent use. Callers serialise every call for a
// given room, typically from a single goroutine.
package game
