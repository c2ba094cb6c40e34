package blockpool

import (
	"fmt"
	"unsafe"

	"github.com/hupe1980/blockpool/internal/conv"
)

// WordSize is the size of one index slot in an inline pool.
const WordSize = int(unsafe.Sizeof(uintptr(0)))

// Alignment is a block alignment class, expressed as a power-of-two exponent.
type Alignment uint8

const (
	Align1 Alignment = iota
	Align2
	Align4
	Align8
	Align16
	Align32
	Align64
	Align128

	// MaxAlignment is the largest supported alignment class.
	MaxAlignment = Align128
)

// Bytes returns the alignment boundary in bytes.
func (a Alignment) Bytes() int { return 1 << a }

// Valid reports whether a is a supported alignment class.
func (a Alignment) Valid() bool { return a <= MaxAlignment }

// Layout describes how an inline pool partitions its buffer. Offsets are
// relative to the start of the buffer.
//
//	[0, Count*WordSize)      index slots
//	[AreaOffset, AreaEnd)    Count blocks of BlockSize bytes
//	[AreaEnd, AreaEnd+Slack) unused
type Layout struct {
	WordSize   int
	BlockSize  int
	Count      int
	AreaOffset int
	AreaEnd    int
	Slack      int
}

// ComputeLayout sizes an inline pool over a buffer of bufLen bytes starting at
// address base. blockSize is rounded up to the alignment boundary and every
// block costs one index word on top of its own size.
//
// If aligning the start of the block area pushes the last block past the end of
// the buffer, the count is reduced by exactly one. A single step always
// suffices: the padding is smaller than one aligned block.
//
// A layout with no blocks is reported as ErrNoBlock.
func ComputeLayout(base uintptr, bufLen, blockSize int, align Alignment) (Layout, error) {
	return computeLayout(base, bufLen, blockSize, align, true)
}

func computeLayout(base uintptr, bufLen, blockSize int, align Alignment, checked bool) (Layout, error) {
	if blockSize <= 0 {
		return Layout{}, fmt.Errorf("%w: block size %d", ErrInvalidArgument, blockSize)
	}
	if !align.Valid() {
		return Layout{}, fmt.Errorf("%w: alignment class %d", ErrInvalidArgument, align)
	}
	if checked {
		if bufLen <= 0 {
			return Layout{}, fmt.Errorf("%w: empty buffer", ErrInvalidArgument)
		}
		if base%uintptr(WordSize) != 0 {
			return Layout{}, fmt.Errorf("%w: buffer at %#x is not word aligned", ErrInvalidArgument, base)
		}
	}
	if bufLen <= 0 {
		return Layout{}, ErrNoBlock
	}

	mask := align.Bytes() - 1
	size := blockSize
	if size&mask != 0 {
		padded, ok := conv.AddInt(size, mask)
		if !ok {
			return Layout{}, fmt.Errorf("%w: block size %d overflows", ErrInvalidArgument, blockSize)
		}
		size = padded &^ mask
	}
	per, ok := conv.AddInt(WordSize, size)
	if !ok {
		return Layout{}, fmt.Errorf("%w: block size %d overflows", ErrInvalidArgument, blockSize)
	}

	count := bufLen / per
	if count == 0 {
		return Layout{}, ErrNoBlock
	}
	l := place(base, count, size, mask)
	if l.AreaEnd > bufLen {
		count--
		if count == 0 {
			return Layout{}, ErrNoBlock
		}
		l = place(base, count, size, mask)
		if l.AreaEnd > bufLen {
			return Layout{}, ErrNoBlock
		}
	}
	if _, err := conv.IntToUint32(count); err != nil {
		return Layout{}, fmt.Errorf("%w: %d blocks", ErrInvalidArgument, count)
	}
	l.Slack = bufLen - l.AreaEnd
	return l, nil
}

// place positions count blocks after count index slots, aligning the first
// block on an absolute address boundary.
func place(base uintptr, count, size, mask int) Layout {
	start := base + uintptr(WordSize*count)
	aligned := (start + uintptr(mask)) &^ uintptr(mask)
	off := int(aligned - base)
	return Layout{
		WordSize:   WordSize,
		BlockSize:  size,
		Count:      count,
		AreaOffset: off,
		AreaEnd:    off + count*size,
	}
}
