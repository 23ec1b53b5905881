// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the ingestion pipeline.
//
// It exposes a narrow Backend interface (counters and timing) behind a
// global, pluggable backend that defaults to a no-op implementation, so
// metric calls are always safe even when nothing is configured. Concrete
// systems live in subpackages (see prompush) and the rest of the codebase
// depends only on this package.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error { return backend.Flush() }

// RecordStep measures latency plus success/failure for one pipeline stage
// (parse, build, persist, aggregate).
func RecordStep(step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"step": step, "status": status}
	backend.IncCounter("claims_step_total", 1, lbls)
	backend.ObserveHistogram("claims_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given kind.
// Typical kinds: "parsed", "skipped", "saved", "failed", "bulk_failed".
func RecordRows(kind string, n int) {
	if n <= 0 {
		return
	}
	backend.IncCounter("claims_rows_total", float64(n), Labels{"kind": kind})
}
