// Package cufile wraps the vendor direct-storage driver: dynamic loading,
// one-time initialization with cached failure, file registration, and the
// enable/require policy resolved from the environment.
package cufile

// Handle is an opaque driver-level file handle obtained by registering an
// open descriptor.
type Handle uintptr

// Driver is the capability surface of the direct-storage driver. The bound
// implementation resolves these against the vendor shared library; HostDriver
// serves the same surface with plain positioned syscalls for benchmarking
// and tests. All methods are safe for concurrent use once Open has returned.
type Driver interface {
	Open() error
	Close() error
	// DirectIO reports whether registered descriptors must be opened in
	// direct mode. The vendor driver requires O_DIRECT; drivers doing
	// plain buffered syscalls must not get one, since an O_DIRECT fd
	// rejects unaligned buffers and lengths with EINVAL.
	DirectIO() bool
	Register(fd int) (Handle, error)
	Deregister(h Handle)
	// ReadAt reads len(p) bytes from the absolute file offset into p.
	// A negative driver result surfaces as an error; a short read returns
	// the byte count the driver reported.
	ReadAt(h Handle, p []byte, off int64) (int64, error)
	// WriteAt writes len(p) bytes at the absolute file offset.
	WriteAt(h Handle, p []byte, off int64) (int64, error)
}

// DeviceBinder re-establishes the thread-affine accelerator context.
// Bindings do not cross OS threads, so a pool worker must Bind the device
// captured at submission time before touching the driver.
type DeviceBinder interface {
	Current() (int, error)
	Bind(device int) error
}

// NopBinder is the binder used when no accelerator runtime is involved.
type NopBinder struct{}

func (NopBinder) Current() (int, error) { return 0, nil }
func (NopBinder) Bind(int) error        { return nil }
