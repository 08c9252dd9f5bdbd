//go:build linux
// +build linux

package gdsio

import (
	"github.com/velakur/gdsio/internal/cufile"
	"github.com/velakur/gdsio/internal/fs"
	"github.com/velakur/gdsio/internal/metrics"
	"github.com/velakur/gdsio/internal/taskpool"
)

// Input reads byte ranges of one file straight into accelerator memory.
// Requests are split into fixed-size slices fanned out across the engine's
// own worker pool; the returned futures aggregate the slice results.
type Input struct {
	drv    cufile.Driver
	binder cufile.DeviceBinder
	file   *cufile.RegisteredFile
	pool   *taskpool.Pool
	cfg    Config
	met    *metrics.Metrics
}

func newInput(sh *cufile.Shim, path string, cfg Config) (*Input, error) {
	cfg = cfg.withDefaults()
	fh, err := openFor(sh.Driver, path, fs.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	reg, err := cufile.Register(sh.Driver, fh)
	if err != nil {
		fh.Close()
		return nil, err
	}
	met := metrics.Default()
	met.RegisteredFiles.Inc()
	return &Input{
		drv:    sh.Driver,
		binder: sh.Binder,
		file:   reg,
		pool:   taskpool.New(cfg.Workers),
		cfg:    cfg,
		met:    met,
	}, nil
}

// Size returns the byte size of the underlying file, cached at open.
func (in *Input) Size() int64 { return in.file.Size() }

// ReadAsync reads len(dst) bytes starting at the absolute file offset into
// dst. Slice tasks start immediately on the pool; the returned future is
// deferred, with the aggregation (a commutative sum of per-slice byte
// counts) running inline in whichever thread calls Get. Offsets and sizes
// are not clamped against file bounds here.
func (in *Input) ReadAsync(dst []byte, offset int64) *taskpool.Future[int64] {
	ranges := sliceRanges(int64(len(dst)), in.cfg.SliceSize)
	if len(ranges) == 0 {
		return taskpool.Resolved[int64](0, nil)
	}

	// The device bound on this thread is invisible to pool workers; record
	// it now and re-bind inside every task.
	device, err := in.binder.Current()
	if err != nil {
		return taskpool.Resolved[int64](0, err)
	}

	futs := make([]*taskpool.Future[int64], 0, len(ranges))
	for _, r := range ranges {
		buf := dst[r.Off : r.Off+r.Len]
		fileOff := offset + r.Off
		futs = append(futs, taskpool.Submit(in.pool, func() (int64, error) {
			if err := in.binder.Bind(device); err != nil {
				return 0, err
			}
			n, err := in.drv.ReadAt(in.file.Handle(), buf, fileOff)
			in.met.ObserveSlice("read", n, err)
			if err != nil {
				return 0, err
			}
			return n, nil
		}))
	}
	return taskpool.Sum(futs)
}

// ReadAt reads len(dst) bytes at offset into dst, blocking until every slice
// has finished. Returns the total byte count the driver reported.
func (in *Input) ReadAt(dst []byte, offset int64) (int64, error) {
	return in.ReadAsync(dst, offset).Get()
}

// ReadAlloc reads size bytes at offset into a freshly allocated buffer,
// trimmed to the byte count actually read.
func (in *Input) ReadAlloc(offset, size int64) ([]byte, error) {
	buf := make([]byte, size)
	n, err := in.ReadAt(buf, offset)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// Close drains the worker pool and deregisters the file. In-flight futures
// must be consumed first.
func (in *Input) Close() {
	in.pool.Close()
	in.file.Close()
	in.met.RegisteredFiles.Dec()
}
