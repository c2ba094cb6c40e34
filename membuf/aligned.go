package membuf

import (
	"unsafe"
)

// WordAlignment is the alignment of a machine word (pointer size).
const WordAlignment = int(unsafe.Sizeof(uintptr(0)))

// Aligned allocates a byte slice of the given size whose first byte is aligned
// to align bytes. align must be a power of two; values below WordAlignment are
// raised to WordAlignment.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func Aligned(size, align int) []byte {
	if size <= 0 {
		return nil
	}
	if align < WordAlignment {
		align = WordAlignment
	}
	if align&(align-1) != 0 {
		return nil
	}

	// Over-allocate so the start can be shifted up to align-1 bytes.
	buf := make([]byte, size+align)

	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	mask := uintptr(align - 1)
	offset := (uintptr(align) - (addr & mask)) & mask

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// IsAligned reports whether the first byte of b is aligned to align bytes.
func IsAligned(b []byte, align int) bool {
	if len(b) == 0 || align <= 0 {
		return false
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b))) //nolint:gosec // unsafe is required for memory alignment
	return addr&uintptr(align-1) == 0
}
