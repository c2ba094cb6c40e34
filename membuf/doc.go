// Package membuf provides backing buffers for block pools.
//
// The pools never allocate memory themselves; callers hand them a buffer.
// This package covers the two common sources:
//
//   - Aligned: a Go heap slice whose first byte sits on a chosen power-of-two
//     boundary (the inline engine requires at least word alignment).
//   - MapAnon: an off-heap anonymous mapping that the garbage collector never
//     scans or moves.
package membuf
