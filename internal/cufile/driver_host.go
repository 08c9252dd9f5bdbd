//go:build linux
// +build linux

package cufile

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// HostDriver serves the Driver surface with plain positioned syscalls,
// staging through host memory. It backs compatibility benchmarking in
// cmd/gdsprobe and the engine tests; handles are just the raw descriptors.
type HostDriver struct{}

func (HostDriver) Open() error  { return nil }
func (HostDriver) Close() error { return nil }

// Buffered syscalls take any offset and length; a direct-mode fd would
// reject the unaligned ones.
func (HostDriver) DirectIO() bool { return false }

func (HostDriver) Register(fd int) (Handle, error) {
	if fd < 0 {
		return 0, fmt.Errorf("%w: invalid descriptor %d", ErrRegister, fd)
	}
	return Handle(fd), nil
}

func (HostDriver) Deregister(Handle) {}

func (HostDriver) ReadAt(h Handle, p []byte, off int64) (int64, error) {
	n, err := unix.Pread(int(h), p, off)
	if err != nil {
		return 0, fmt.Errorf("%w: pread at offset %d: %v", ErrSliceIO, off, err)
	}
	return int64(n), nil
}

func (HostDriver) WriteAt(h Handle, p []byte, off int64) (int64, error) {
	n, err := unix.Pwrite(int(h), p, off)
	if err != nil {
		return 0, fmt.Errorf("%w: pwrite at offset %d: %v", ErrSliceIO, off, err)
	}
	return int64(n), nil
}
