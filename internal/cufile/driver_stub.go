//go:build !linux
// +build !linux

package cufile

import "fmt"

// Direct storage is a Linux-only facility; elsewhere the load fails like a
// missing library would.
func loadGDSDriver() (Driver, DeviceBinder, error) {
	return nil, nil, fmt.Errorf("%w: direct storage is not supported on this platform", ErrLoad)
}
