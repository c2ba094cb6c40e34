// Package conv provides checked integer conversion and arithmetic.
//
// Pool geometry arrives as int (buffer lengths, block sizes, block counts)
// but is reported as uint32. These helpers reject values that would wrap.
package conv
