package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flashprep"

// Recorder holds the counters of one preparation run in a private registry.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg *prometheus.Registry

	sources   prometheus.Counter
	batches   prometheus.Counter
	events    prometheus.Counter
	rows      *prometheus.GaugeVec
	nonFinite *prometheus.CounterVec
	duration  *prometheus.GaugeVec
}

// New registers the run metrics, labelled with the dataset name.
func New(dataset string) *Recorder {
	labels := prometheus.Labels{"dataset": dataset}
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		sources: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "sources_total",
			Help:        "Input sources fully extracted",
			ConstLabels: labels,
		}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "batches_total",
			Help:        "Event batches processed",
			ConstLabels: labels,
		}),
		events: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "events_total",
			Help:        "Events read from all sources",
			ConstLabels: labels,
		}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "array_rows",
			Help:        "Rows of each persisted array",
			ConstLabels: labels,
		}, []string{"array"}),
		nonFinite: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "roundtrip_nonfinite_total",
			Help:        "Rows whose round-tripped value is NaN or Inf, per feature",
			ConstLabels: labels,
		}, []string{"feature"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "stage_duration_seconds",
			Help:        "Wall time of each run stage",
			ConstLabels: labels,
		}, []string{"stage"}),
	}
	r.reg.MustRegister(r.sources, r.batches, r.events, r.rows, r.nonFinite, r.duration)
	return r
}

// Registry exposes the private registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) Source() {
	if r != nil {
		r.sources.Inc()
	}
}

// Batch counts one processed batch of n events.
func (r *Recorder) Batch(n int) {
	if r != nil {
		r.batches.Inc()
		r.events.Add(float64(n))
	}
}

func (r *Recorder) Rows(array string, n int) {
	if r != nil {
		r.rows.WithLabelValues(array).Set(float64(n))
	}
}

func (r *Recorder) NonFinite(feature string, n int) {
	if r != nil && n > 0 {
		r.nonFinite.WithLabelValues(feature).Add(float64(n))
	}
}

// Since records the time elapsed from start under stage.
func (r *Recorder) Since(stage string, start time.Time) {
	if r != nil {
		r.duration.WithLabelValues(stage).Set(time.Since(start).Seconds())
	}
}

// WriteTextfile writes the registry in text exposition format, replacing path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
