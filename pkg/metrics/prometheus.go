package metrics

import (
	"math"
	"time"

	"EconDash/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fetchDuration *prometheus.HistogramVec
	sourceRows    *prometheus.GaugeVec
	errorsTotal   *prometheus.CounterVec
	joinedRows    prometheus.Gauge
	correlation   *prometheus.GaugeVec
	lastRun       prometheus.Gauge
}

// New creates a Prometheus recorder registered against reg. A nil reg
// means the default registry.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Recorder{
		fetchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "econdash_source_fetch_seconds",
				Help:    "Duration of source fetches in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source", "kind", "outcome"},
		),
		sourceRows: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "econdash_source_rows",
				Help: "Rows kept for a source after normalization",
			},
			[]string{"source"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "econdash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		joinedRows: f.NewGauge(prometheus.GaugeOpts{
			Name: "econdash_joined_rows",
			Help: "Rows in the aligned table of the last run",
		}),
		correlation: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "econdash_correlation",
				Help: "Pearson coefficient per metric pair from the last run",
			},
			[]string{"a", "b"},
		),
		lastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "econdash_last_run_timestamp_seconds",
			Help: "Unix time of the last completed pipeline run",
		}),
	}
}

// RecordFetch records one source fetch.
func (r *Recorder) RecordFetch(source, kind string, d time.Duration, rows int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.fetchDuration.WithLabelValues(source, kind, outcome).Observe(d.Seconds())
	if err == nil {
		r.sourceRows.WithLabelValues(source).Set(float64(rows))
	}
}

// RecordJoin records the aligned table size.
func (r *Recorder) RecordJoin(rows int) {
	r.joinedRows.Set(float64(rows))
}

// RecordCorrelation exports the upper triangle; undefined pairs are skipped.
func (r *Recorder) RecordCorrelation(m *models.CorrelationMatrix) {
	if m == nil {
		return
	}
	r.correlation.Reset()
	for _, p := range m.Pairs() {
		if math.IsNaN(p.R) {
			continue
		}
		r.correlation.WithLabelValues(string(p.A), string(p.B)).Set(p.R)
	}
	r.lastRun.SetToCurrentTime()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordFetch(string, string, time.Duration, int, error) {}
func (Noop) RecordJoin(int)                                        {}
func (Noop) RecordCorrelation(*models.CorrelationMatrix)           {}
func (Noop) RecordError(string)                                    {}
