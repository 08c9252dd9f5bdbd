//go:build linux
// +build linux

package fs

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

const BLOCK_SIZE = 4096

// IsAlignedBuffer reports whether the buffer's base address is aligned to
// the given block size. Direct I/O on the host path requires it.
func IsAlignedBuffer(buf []byte, alignment int) bool {
	if len(buf) == 0 {
		return false
	}
	addr := uintptr(unsafe.Pointer(&buf[0]))
	return addr%uintptr(alignment) == 0
}

func IsAlignedOffset(offset int64, alignment int) bool {
	return offset%int64(alignment) == 0
}

// AllocAligned returns a page-aligned buffer of the given size backed by an
// anonymous mapping. mmap allocations are aligned to the system page size,
// which satisfies the block alignment O_DIRECT wants.
func AllocAligned(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
}

// FreeAligned unmaps a buffer obtained from AllocAligned.
func FreeAligned(buf []byte) error {
	return unix.Munmap(buf)
}
