//go:build linux
// +build linux

// Package gdsio moves bytes between persistent storage and accelerator
// memory without staging through host memory, when the platform supports it.
// The factories consult the resolved policy and return no engine at all when
// the direct path is disabled or unavailable, signaling callers to use their
// generic I/O path instead.
package gdsio

import (
	"github.com/rs/zerolog/log"

	"github.com/velakur/gdsio/internal/cufile"
	"github.com/velakur/gdsio/internal/fs"
)

// Config tunes one engine instance. The zero value selects the defaults:
// 4 MiB slices and 16 workers, past which added parallelism stops improving
// throughput on the hardware this was tuned on.
type Config struct {
	SliceSize int64
	Workers   int
}

const DefaultWorkers = 16

func (c Config) withDefaults() Config {
	if c.SliceSize <= 0 {
		c.SliceSize = DefaultSliceSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	return c
}

// Test seams; production code never touches these.
var (
	configInstance = cufile.ConfigInstance
	shimInstance   = cufile.Instance
)

// openFor opens path the way the driver needs its descriptors: direct mode
// for the vendor driver, plain buffered flags otherwise.
func openFor(drv cufile.Driver, path string, flags int, mode uint32) (*fs.FileHandle, error) {
	if drv.DirectIO() {
		return fs.OpenDirect(path, flags, mode)
	}
	return fs.Open(path, flags, mode)
}

// NewAcceleratedInput returns a direct-storage input engine for path, or
// (nil, nil) when the direct path is not available: policy OFF, or a
// construction failure under the opportunistic policy. Under the required
// policy construction failures are returned to the caller. A nil engine
// with a nil error means "fall back to the generic path".
func NewAcceleratedInput(path string, cfg Config) (*Input, error) {
	c, err := configInstance()
	if err != nil {
		return nil, err
	}
	if !c.Policy.Enabled() {
		return nil, nil
	}
	sh, err := shimInstance()
	if err == nil {
		var in *Input
		if in, err = newInput(sh, path, cfg); err == nil {
			return in, nil
		}
	}
	if c.Policy.Required() {
		return nil, err
	}
	log.Debug().Err(err).Str("path", path).Msg("accelerated input unavailable")
	return nil, nil
}

// NewAcceleratedOutput is the write-side counterpart of
// NewAcceleratedInput, with identical policy handling.
func NewAcceleratedOutput(path string, cfg Config) (*Output, error) {
	c, err := configInstance()
	if err != nil {
		return nil, err
	}
	if !c.Policy.Enabled() {
		return nil, nil
	}
	sh, err := shimInstance()
	if err == nil {
		var out *Output
		if out, err = newOutput(sh, path, cfg); err == nil {
			return out, nil
		}
	}
	if c.Policy.Required() {
		return nil, err
	}
	log.Debug().Err(err).Str("path", path).Msg("accelerated output unavailable")
	return nil, nil
}
