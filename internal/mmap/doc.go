// Package mmap provides anonymous read/write memory mappings.
//
// # Overview
//
// An anonymous mapping is memory obtained directly from the operating system,
// outside the Go garbage collector's control. Block pools placed on such memory
// never move and never add GC scan work, which keeps allocation latency flat.
//
// # Usage
//
//	m, err := mmap.MapAnon(64 * 1024)
//	if err != nil { ... }
//	defer m.Close()
//
//	buf := m.Bytes() // page-aligned, zero-filled, read/write
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with MAP_ANON|MAP_PRIVATE, madvise(2) for hints
//   - Windows: VirtualAlloc with MEM_RESERVE|MEM_COMMIT (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by atomic operations. Callers must ensure
// no goroutine touches Bytes() after Close() returns.
package mmap
