// Package guac implements the core of a composable command-line pipeline.
//
// Applications are assembled from ingredients: pluggable units of behavior
// that a Bowl drives through a fixed sequence of lifecycle phases against a
// single shared Context. All of the interesting framework features (command
// trees, argument parsing, crash reporting, logging) are ordinary
// ingredients layered on top of this package.
//
// ARCHITECTURE:
//
// Single-Threaded Phase Loop:
// A Bowl runs every phase over its ingredients in declaration order, in one
// goroutine. This ensures:
//   - Predictable ingredient initialization order
//   - Deterministic dispatch (the first ingredient to handle dispatch wins)
//   - Simple reasoning about who wrote what into the Context
//
// Phase Sequence:
//  1. Added, BuildEarlyParser, Preparse, EarlyInit, BuildParser, Parse,
//     LateInit (setup phases, every ingredient in order)
//  2. Dispatch (first ingredient that reports handled stops the phase)
//  3. DispatchSucceeded or DispatchFailed, depending on the outcome
//  4. Shutdown (always runs, reverse-independent, best effort)
//
// Failure Boundary:
// The Bowl is the one place that turns an unhandled fault into a
// deterministic exit. Errors and panics raised by any hook are captured
// into the Context under the reserved crash keys, the DispatchFailed phase
// runs on every ingredient, and Eat returns a non-zero code. Nothing
// escapes Eat.
//
// A Bowl is single-use: once eaten it is dirty and cannot be reused.
package guac
