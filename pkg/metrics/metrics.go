package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/examjson/parser/pkg/exam"
)

// Namespace prefixes every metric name
const Namespace = "examjson"

// RunMetrics collects the counters of conversion runs in its own registry
type RunMetrics struct {
	registry *prometheus.Registry

	linesTotal    prometheus.Counter
	parsedTotal   prometheus.Counter
	failedTotal   *prometheus.CounterVec
	parseDuration prometheus.Histogram
	lastRun       prometheus.Gauge
}

// New creates and registers the run metrics
func New() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		linesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lines_total",
			Help:      "Non-blank input lines considered for parsing",
		}),
		parsedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "questions_parsed_total",
			Help:      "Lines converted into questions",
		}),
		failedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lines_failed_total",
			Help:      "Lines skipped during conversion by cause",
		}, []string{"cause"}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time spent converting a document",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed conversion",
		}),
	}

	m.registry.MustRegister(m.linesTotal, m.parsedTotal, m.failedTotal, m.parseDuration, m.lastRun)
	// Pre-create both causes so they are exported as zero
	m.failedTotal.WithLabelValues("no_match")
	m.failedTotal.WithLabelValues("fault")
	return m
}

// Registry exposes the underlying registry
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe records the outcome of a conversion
func (m *RunMetrics) Observe(result *exam.Result, took time.Duration) {
	m.linesTotal.Add(float64(result.Lines))
	m.parsedTotal.Add(float64(result.Parsed()))
	for _, f := range result.Failures {
		cause := "no_match"
		if errors.Is(f.Err, exam.ErrFault) {
			cause = "fault"
		}
		m.failedTotal.WithLabelValues(cause).Inc()
	}
	m.parseDuration.Observe(took.Seconds())
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile writes the metrics in the text exposition format for the
// node exporter textfile collector
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
