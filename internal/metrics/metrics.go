// Package metrics exposes Prometheus metrics for the direct-storage engines.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks slice-level I/O activity. All metrics use the gdsio_
// prefix.
type Metrics struct {
	// BytesTotal counts bytes moved through the direct path, by operation.
	BytesTotal *prometheus.CounterVec

	// SlicesTotal counts completed slice tasks, by operation and status.
	SlicesTotal *prometheus.CounterVec

	// RegisteredFiles tracks files currently registered with the driver.
	RegisteredFiles prometheus.Gauge
}

// New creates the metrics and registers them with reg. Panics if
// registration fails; expected during initialization only.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BytesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdsio_bytes_total",
				Help: "Bytes moved through the direct-storage path by operation",
			},
			[]string{"op"},
		),
		SlicesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gdsio_slices_total",
				Help: "Completed slice tasks by operation and status",
			},
			[]string{"op", "status"},
		),
		RegisteredFiles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "gdsio_registered_files",
				Help: "Files currently registered with the driver",
			},
		),
	}
	reg.MustRegister(m.BytesTotal, m.SlicesTotal, m.RegisteredFiles)
	return m
}

var (
	defaultOnce sync.Once
	defaultM    *Metrics
)

// Default returns the process-wide metrics registered with the default
// Prometheus registerer.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultM = New(prometheus.DefaultRegisterer)
	})
	return defaultM
}

// ObserveSlice records one finished slice task.
func (m *Metrics) ObserveSlice(op string, bytes int64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	} else {
		m.BytesTotal.WithLabelValues(op).Add(float64(bytes))
	}
	m.SlicesTotal.WithLabelValues(op, status).Inc()
}
