// Package archive packs a single regular file into a tar archive at a
// destination path, streaming the bytes through an ordered chain of stages:
// the tar packer, an optional post-pack transform (typically a compressor),
// and the destination writer.
//
// The public surface is a cold, single-subscription operation. Creating an
// operation validates the request synchronously; subscribing starts the
// asynchronous phase and returns a cancellation handle. An observer receives
// zero or more ordered progress events followed by exactly one terminal
// signal: completion or the first failure from any stage. Cancellation tears
// down every stage and suppresses both terminal signals.
//
// Design decision: the operation is modeled as an explicit state machine
// over channels rather than callback chaining. Each stage runs in its own
// goroutine connected by an io.Pipe, which gives backpressure for free: a
// stage is never fed faster than it consumes.
package archive
