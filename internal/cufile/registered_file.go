//go:build linux
// +build linux

package cufile

import (
	"fmt"

	"github.com/velakur/gdsio/internal/fs"
)

// RegisteredFile couples an open FileHandle with the driver handle obtained
// by registering its descriptor. It must outlive every in-flight slice task
// that references the handle.
type RegisteredFile struct {
	drv    Driver
	file   *fs.FileHandle
	handle Handle
}

// Register registers the file's descriptor with the driver as an opaque-fd
// handle. The RegisteredFile takes ownership of the FileHandle on success.
func Register(drv Driver, file *fs.FileHandle) (*RegisteredFile, error) {
	h, err := drv.Register(file.Fd())
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", file.Path(), err)
	}
	return &RegisteredFile{drv: drv, file: file, handle: h}, nil
}

func (rf *RegisteredFile) Handle() Handle { return rf.handle }

func (rf *RegisteredFile) File() *fs.FileHandle { return rf.file }

func (rf *RegisteredFile) Size() int64 { return rf.file.Size() }

// Close deregisters the driver handle and releases the descriptor.
// Deregistration failures are discarded; cleanup does not report.
func (rf *RegisteredFile) Close() {
	rf.drv.Deregister(rf.handle)
	rf.file.Close()
}
