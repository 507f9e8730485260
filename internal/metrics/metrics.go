package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline counters on a private registry
type Metrics struct {
	FramesSubmitted     prometheus.Counter
	FramesDropped       prometheus.Counter
	FramesProcessed     prometheus.Counter
	FramesFailed        prometheus.Counter
	DetectionsAccepted  *prometheus.CounterVec
	DetectionsRejected  *prometheus.CounterVec
	AlertsFired         prometheus.Counter
	SinkErrors          *prometheus.CounterVec
	FrameProcessSeconds prometheus.Histogram

	registry *prometheus.Registry
}

// New creates the collectors and registers them
func New() *Metrics {
	m := &Metrics{
		FramesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bvision_frames_submitted_total",
			Help: "Total frames submitted by the capture source",
		}),
		FramesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bvision_frames_dropped_total",
			Help: "Total frames replaced in the mailbox before processing",
		}),
		FramesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bvision_frames_processed_total",
			Help: "Total frames run through the pipeline",
		}),
		FramesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bvision_frames_failed_total",
			Help: "Total frames skipped due to inference errors",
		}),
		DetectionsAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bvision_detections_accepted_total",
			Help: "Detections that passed classification by label",
		}, []string{"label"}),
		DetectionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bvision_detections_rejected_total",
			Help: "Detections rejected by classification by reason",
		}, []string{"reason"}),
		AlertsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bvision_alerts_fired_total",
			Help: "Total red to green alerts fired",
		}),
		SinkErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bvision_sink_errors_total",
			Help: "Render and alert sink failures by sink",
		}, []string{"sink"}),
		FrameProcessSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bvision_frame_process_seconds",
			Help:    "Time to run one frame through inference and the pipeline",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.FramesSubmitted,
		m.FramesDropped,
		m.FramesProcessed,
		m.FramesFailed,
		m.DetectionsAccepted,
		m.DetectionsRejected,
		m.AlertsFired,
		m.SinkErrors,
		m.FrameProcessSeconds,
	)

	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler serving the metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) FrameSubmitted() {
	m.FramesSubmitted.Inc()
}

func (m *Metrics) FrameDropped() {
	m.FramesDropped.Inc()
}

func (m *Metrics) FrameProcessed(d time.Duration) {
	m.FramesProcessed.Inc()
	m.FrameProcessSeconds.Observe(d.Seconds())
}

func (m *Metrics) FrameFailed() {
	m.FramesFailed.Inc()
}

func (m *Metrics) DetectionAccepted(label string) {
	m.DetectionsAccepted.WithLabelValues(label).Inc()
}

func (m *Metrics) DetectionRejected(reason string) {
	m.DetectionsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) AlertFired() {
	m.AlertsFired.Inc()
}

func (m *Metrics) SinkError(sink string) {
	m.SinkErrors.WithLabelValues(sink).Inc()
}
