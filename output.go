//go:build linux
// +build linux

package gdsio

import (
	"fmt"

	"github.com/velakur/gdsio/internal/cufile"
	"github.com/velakur/gdsio/internal/fs"
	"github.com/velakur/gdsio/internal/metrics"
	"github.com/velakur/gdsio/internal/taskpool"
)

// Output writes byte ranges of one file straight from accelerator memory,
// with the same slicing and pooling as Input.
type Output struct {
	drv    cufile.Driver
	binder cufile.DeviceBinder
	file   *cufile.RegisteredFile
	pool   *taskpool.Pool
	cfg    Config
	met    *metrics.Metrics
}

func newOutput(sh *cufile.Shim, path string, cfg Config) (*Output, error) {
	cfg = cfg.withDefaults()
	fh, err := openFor(sh.Driver, path, fs.O_CREAT|fs.O_RDWR, fs.FILE_MODE)
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
	return &Output{
		drv:    sh.Driver,
		binder: sh.Binder,
		file:   reg,
		pool:   taskpool.New(cfg.Workers),
		cfg:    cfg,
		met:    met,
	}, nil
}

// WriteAsync writes src at the absolute file offset. A slice fails unless
// the driver reports a byte count exactly equal to the slice size; partial
// writes are not retried. The returned future joins all slices and carries
// the first failure, if any.
func (out *Output) WriteAsync(src []byte, offset int64) *taskpool.Future[taskpool.Unit] {
	ranges := sliceRanges(int64(len(src)), out.cfg.SliceSize)
	if len(ranges) == 0 {
		return taskpool.Resolved(taskpool.Unit{}, nil)
	}

	device, err := out.binder.Current()
	if err != nil {
		return taskpool.Resolved(taskpool.Unit{}, err)
	}

	futs := make([]*taskpool.Future[taskpool.Unit], 0, len(ranges))
	for _, r := range ranges {
		buf := src[r.Off : r.Off+r.Len]
		fileOff := offset + r.Off
		futs = append(futs, taskpool.Submit(out.pool, func() (taskpool.Unit, error) {
			if err := out.binder.Bind(device); err != nil {
				return taskpool.Unit{}, err
			}
			n, err := out.drv.WriteAt(out.file.Handle(), buf, fileOff)
			if err == nil && n != int64(len(buf)) {
				err = fmt.Errorf("%w: wrote %d of %d bytes at offset %d",
					cufile.ErrSliceIO, n, len(buf), fileOff)
			}
			out.met.ObserveSlice("write", n, err)
			return taskpool.Unit{}, err
		}))
	}
	return taskpool.Join(futs)
}

// Write writes src at offset, blocking until every slice has finished.
func (out *Output) Write(src []byte, offset int64) error {
	return out.WriteAsync(src, offset).Wait()
}

// Close drains the worker pool and deregisters the file. In-flight futures
// must be consumed first.
func (out *Output) Close() {
	out.pool.Close()
	out.file.Close()
	out.met.RegisteredFiles.Dec()
}
