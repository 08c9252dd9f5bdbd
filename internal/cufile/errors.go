package cufile

import "errors"

// Error classes of the direct-storage path. Wrapped with detail at the point
// of failure; callers classify with errors.Is.
var (
	// ErrLoad marks a missing driver library or symbol. Cached by the shim
	// and returned verbatim on every later access attempt.
	ErrLoad = errors.New("cufile: driver library load failed")

	// ErrDriverInit marks a driver that loaded but reported failure on open.
	ErrDriverInit = errors.New("cufile: driver initialization failed")

	// ErrConfig marks an unreadable driver config file. Fatal at resolver
	// construction; it indicates a broken driver installation.
	ErrConfig = errors.New("cufile: config file unreadable")

	// ErrRegister marks a file descriptor the driver refused to register.
	ErrRegister = errors.New("cufile: file registration rejected")

	// ErrSliceIO marks a slice whose driver call returned a negative result
	// or, for writes, a byte count short of the slice size.
	ErrSliceIO = errors.New("cufile: slice I/O failed")
)
