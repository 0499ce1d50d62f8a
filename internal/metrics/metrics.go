// Package metrics exposes Prometheus collectors for frame processing and jobs.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Job outcome label values.
const (
	StatusDone  = "done"
	StatusError = "error"
)

// Collector holds the process-wide metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	FramesProcessed prometheus.Counter
	FramesDetected  prometheus.Counter
	FrameGaps       prometheus.Counter
	AnalysisSeconds prometheus.Histogram
	JobsActive      prometheus.Gauge
	JobsCompleted   *prometheus.CounterVec
}

// New registers the collectors against reg (the default registerer when nil).
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.FramesProcessed, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "centroid_frames_processed_total",
		Help: "Frames read from video sources.",
	})); err != nil {
		return nil, err
	}
	if c.FramesDetected, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "centroid_frames_detected_total",
		Help: "Frames in which a matching region was found.",
	})); err != nil {
		return nil, err
	}
	if c.FrameGaps, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "centroid_frame_gaps_total",
		Help: "Frames that could not be decoded.",
	})); err != nil {
		return nil, err
	}
	if c.AnalysisSeconds, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "centroid_frame_analysis_duration_seconds",
		Help:    "Time spent binarizing and grouping one frame.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
	})); err != nil {
		return nil, err
	}
	if c.JobsActive, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "centroid_jobs_active",
		Help: "Processing jobs currently running.",
	})); err != nil {
		return nil, err
	}
	if c.JobsCompleted, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "centroid_jobs_completed_total",
		Help: "Processing jobs finished, by outcome.",
	}, []string{"status"})); err != nil {
		return nil, err
	}

	return c, nil
}

// register adds col to reg, reusing an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("metrics: collector already registered with incompatible type: %v", err)
		}
		var zero T
		return zero, err
	}
	return col, nil
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveFrame records one analyzed frame.
func (c *Collector) ObserveFrame(d time.Duration, detected bool) {
	if c == nil {
		return
	}
	c.FramesProcessed.Inc()
	c.AnalysisSeconds.Observe(d.Seconds())
	if detected {
		c.FramesDetected.Inc()
	}
}

// ObserveGap records a frame that could not be decoded.
func (c *Collector) ObserveGap() {
	if c == nil {
		return
	}
	c.FramesProcessed.Inc()
	c.FrameGaps.Inc()
}

// JobStarted increments the active job gauge.
func (c *Collector) JobStarted() {
	if c == nil {
		return
	}
	c.JobsActive.Inc()
}

// JobFinished decrements the active job gauge and counts the outcome.
func (c *Collector) JobFinished(status string) {
	if c == nil {
		return
	}
	c.JobsActive.Dec()
	c.JobsCompleted.WithLabelValues(status).Inc()
}
