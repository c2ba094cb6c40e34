package blockpool

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// endOfList marks the last slot of the inline free list and an empty list head.
const endOfList = -1

// arena is the byte view of an inline pool's buffer: an index region of one
// word per block followed by the block region. Index words hold the index of
// the next free slot, or all ones at the end of the list.
type arena struct {
	index    []byte
	area     []byte
	areaAddr uintptr
	size     int
	count    int
}

func newArena(buf []byte, l Layout) arena {
	return arena{
		index:    buf[:l.Count*WordSize : l.Count*WordSize],
		area:     buf[l.AreaOffset:l.AreaEnd:l.AreaEnd],
		areaAddr: addrOf(buf) + uintptr(l.AreaOffset),
		size:     l.BlockSize,
		count:    l.Count,
	}
}

func addrOf(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func (a *arena) next(i int) int {
	w := a.index[i*WordSize:]
	if WordSize == 8 {
		v := binary.NativeEndian.Uint64(w)
		if v == math.MaxUint64 {
			return endOfList
		}
		return int(v)
	}
	v := binary.NativeEndian.Uint32(w)
	if v == math.MaxUint32 {
		return endOfList
	}
	return int(v)
}

func (a *arena) setNext(i, next int) {
	w := a.index[i*WordSize:]
	if WordSize == 8 {
		v := uint64(math.MaxUint64)
		if next != endOfList {
			v = uint64(next)
		}
		binary.NativeEndian.PutUint64(w, v)
		return
	}
	v := uint32(math.MaxUint32)
	if next != endOfList {
		v = uint32(next)
	}
	binary.NativeEndian.PutUint32(w, v)
}

// format links every slot to its successor and returns the list head.
func (a *arena) format() int {
	for i := 0; i < a.count-1; i++ {
		a.setNext(i, i+1)
	}
	a.setNext(a.count-1, endOfList)
	return 0
}

func (a *arena) block(i int) []byte {
	off := i * a.size
	return a.area[off : off+a.size : off+a.size]
}

// indexOf maps a block back to its slot. exact rejects addresses that do not
// start a block.
func (a *arena) indexOf(block []byte, exact bool) (int, error) {
	addr := addrOf(block)
	if addr < a.areaAddr {
		return 0, ErrOutOfRange
	}
	off := addr - a.areaAddr
	idx := off / uintptr(a.size)
	if idx >= uintptr(a.count) {
		return 0, ErrOutOfRange
	}
	if exact && off%uintptr(a.size) != 0 {
		return 0, ErrNotOwned
	}
	return int(idx), nil
}
