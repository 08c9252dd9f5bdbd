//go:build linux
// +build linux

package fs

import (
	"fmt"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
)

const (
	O_DIRECT  = unix.O_DIRECT
	O_WRONLY  = syscall.O_WRONLY
	O_RDONLY  = syscall.O_RDONLY
	O_RDWR    = syscall.O_RDWR
	O_CREAT   = syscall.O_CREAT
	FILE_MODE = 0664
)

// FileHandle owns an open file descriptor. The file size is queried once at
// open time and cached; positioned reads and writes never move a shared file
// position, so independent offsets against one handle may proceed
// concurrently.
type FileHandle struct {
	fd   int
	size int64
	path string
}

// Open opens path with the given flags and mode and stats it to cache the
// byte size. The returned handle owns the descriptor.
func Open(path string, flags int, mode uint32) (*FileHandle, error) {
	fd, err := syscall.Open(path, flags, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		syscall.Close(fd)
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return &FileHandle{fd: fd, size: st.Size, path: path}, nil
}

// OpenDirect opens path with O_DIRECT, falling back to the plain flags when
// the filesystem does not support direct I/O.
func OpenDirect(path string, flags int, mode uint32) (*FileHandle, error) {
	f, err := Open(path, flags|O_DIRECT, mode)
	if err == nil {
		return f, nil
	}
	log.Warn().Msgf("DIRECT_IO not supported, falling back to regular flags: %v", err)
	return Open(path, flags, mode)
}

func (f *FileHandle) Fd() int { return f.fd }

func (f *FileHandle) Size() int64 { return f.size }

func (f *FileHandle) Path() string { return f.path }

// Pread reads len(p) bytes from the given file offset.
func (f *FileHandle) Pread(p []byte, off int64) (int, error) {
	return unix.Pread(f.fd, p, off)
}

// Pwrite writes len(p) bytes at the given file offset.
func (f *FileHandle) Pwrite(p []byte, off int64) (int, error) {
	return unix.Pwrite(f.fd, p, off)
}

// Close releases the descriptor. A failed close is discarded; there is no
// recovery for it during teardown. Safe to call more than once.
func (f *FileHandle) Close() {
	if f.fd >= 0 {
		syscall.Close(f.fd)
		f.fd = -1
	}
}
