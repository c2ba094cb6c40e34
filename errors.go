package blockpool

import (
	"errors"
)

var (
	// ErrInvalidArgument indicates a failed precondition: nil buffer, zero size,
	// bad alignment class or a misaligned buffer. Only reported in checked mode.
	ErrInvalidArgument = errors.New("blockpool: invalid argument")

	// ErrNoBlock indicates that no free block is available, either because the
	// pool is exhausted or because no permit could be taken within the wait budget.
	ErrNoBlock = errors.New("blockpool: no free block")

	// ErrNotOwned indicates that a freed block does not appear to belong to the pool.
	ErrNotOwned = errors.New("blockpool: block not owned by pool")

	// ErrOccupancy indicates a delete attempted while blocks are still outstanding.
	ErrOccupancy = errors.New("blockpool: blocks still outstanding")

	// ErrTimeout indicates that the pool lock could not be taken within its timeout.
	ErrTimeout = errors.New("blockpool: lock timeout")

	// ErrOutOfRange indicates that a freed block maps to an index outside the pool.
	ErrOutOfRange = errors.New("blockpool: block index out of range")

	// ErrPort indicates that the synchronization port failed to create or
	// destroy a primitive.
	ErrPort = errors.New("blockpool: synchronization port failure")
)

// Kind classifies an error returned by a pool.
type Kind uint8

const (
	KindNone Kind = iota
	KindInvalidArgument
	KindNoBlock
	KindNotOwned
	KindOccupancy
	KindTimeout
	KindOutOfRange
	KindPort
	KindUnknown
)

var kindNames = [...]string{
	KindNone:            "ok",
	KindInvalidArgument: "invalid_argument",
	KindNoBlock:         "no_block",
	KindNotOwned:        "not_owned",
	KindOccupancy:       "occupancy",
	KindTimeout:         "timeout",
	KindOutOfRange:      "out_of_range",
	KindPort:            "port",
	KindUnknown:         "unknown",
}

// String returns a snake_case name suitable for log fields and metric labels.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// KindOf returns the Kind of err. A nil error is KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNoBlock):
		return KindNoBlock
	case errors.Is(err, ErrNotOwned):
		return KindNotOwned
	case errors.Is(err, ErrOccupancy):
		return KindOccupancy
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrOutOfRange):
		return KindOutOfRange
	case errors.Is(err, ErrPort):
		return KindPort
	default:
		return KindUnknown
	}
}
