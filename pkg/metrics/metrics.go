// Package metrics records catalog activity as Prometheus metrics. The
// catalog runs as a short-lived batch command, so metrics are exported by
// writing a node_exporter textfile rather than serving an endpoint.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hdwx/mrms/pkg/errors"
)

const namespace = "mrms_catalog"

// Recorder holds the catalog metrics on a private registry. A nil *Recorder
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	framesRecorded   *prometheus.CounterVec
	framesDiscovered *prometheus.CounterVec
	conflicts        *prometheus.CounterVec
	documentsWritten *prometheus.CounterVec
	failures         *prometheus.CounterVec
	recordDuration   *prometheus.HistogramVec
	lastSuccess      *prometheus.GaugeVec
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		framesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_recorded_total",
			Help:      "Frames recorded through the catalog writer, by product.",
		}, []string{"product"}),
		framesDiscovered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_discovered_total",
			Help:      "Frames found on disk that were missing from their run document, by product.",
		}, []string{"product"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_conflicts_total",
			Help:      "Distinct frame records found for one valid time, by product and policy.",
		}, []string{"product", "policy"}),
		documentsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_written_total",
			Help:      "Metadata documents written, by kind.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed catalog operations, by operation and error class.",
		}, []string{"operation", "class"}),
		recordDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of catalog operations.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"operation"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful operation.",
		}, []string{"operation"}),
	}
	r.registry.MustRegister(
		r.framesRecorded,
		r.framesDiscovered,
		r.conflicts,
		r.documentsWritten,
		r.failures,
		r.recordDuration,
		r.lastSuccess,
	)
	return r
}

// Registry returns the registry holding the catalog metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// FrameRecorded counts a frame recorded for product.
func (r *Recorder) FrameRecorded(product int) {
	if r == nil {
		return
	}
	r.framesRecorded.WithLabelValues(strconv.Itoa(product)).Inc()
}

// FramesDiscovered counts n frames synthesized from a directory listing.
func (r *Recorder) FramesDiscovered(product, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.framesDiscovered.WithLabelValues(strconv.Itoa(product)).Add(float64(n))
}

// Conflicts counts n frame conflicts resolved (or refused) under policy.
func (r *Recorder) Conflicts(product int, policy string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.conflicts.WithLabelValues(strconv.Itoa(product), policy).Add(float64(n))
}

// DocumentWritten counts a saved document of kind "run", "product" or "index".
func (r *Recorder) DocumentWritten(kind string) {
	if r == nil {
		return
	}
	r.documentsWritten.WithLabelValues(kind).Inc()
}

// Observe records the outcome of an operation that started at start.
func (r *Recorder) Observe(operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	r.recordDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		r.failures.WithLabelValues(operation, Class(err)).Inc()
		return
	}
	r.lastSuccess.WithLabelValues(operation).SetToCurrentTime()
}

// WriteTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Class maps an error to the label used for failure counts.
func Class(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.IsFrameMissing(err):
		return "precondition"
	case errors.IsMalformed(err):
		return "malformed"
	case errors.IsConflict(err):
		return "conflict"
	case errors.IsValidationError(err):
		return "validation"
	case errors.IsNotFound(err):
		return "not_found"
	}
	var ioErr *errors.IOError
	if errors.As(err, &ioErr) {
		return "io"
	}
	return "other"
}
