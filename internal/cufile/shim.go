package cufile

import "sync"

// Shim is the process-wide view of the loaded driver: the bound entry points
// plus the device binder. Immutable after construction; concurrent reads
// need no locking.
type Shim struct {
	Driver Driver
	Binder DeviceBinder
}

var (
	shimOnce sync.Once
	shim     *Shim
	shimErr  error

	// Swapped out by tests to count load attempts and to fake drivers.
	loadDriver = loadGDSDriver
)

// Instance returns the singleton shim. The load and driver-open sequence
// runs exactly once per process; a captured failure is returned verbatim on
// every later call so a missing library is not re-probed with a dlopen each
// time.
func Instance() (*Shim, error) {
	shimOnce.Do(func() {
		shim, shimErr = newShim(loadDriver)
	})
	if shimErr != nil {
		return nil, shimErr
	}
	return shim, nil
}

func newShim(load func() (Driver, DeviceBinder, error)) (*Shim, error) {
	drv, binder, err := load()
	if err != nil {
		return nil, err
	}
	if err := drv.Open(); err != nil {
		return nil, err
	}
	return &Shim{Driver: drv, Binder: binder}, nil
}

// CloseDriver shuts the driver down. Only meaningful at process exit;
// in-flight I/O must have drained.
func CloseDriver() {
	if shim != nil {
		shim.Driver.Close()
	}
}
