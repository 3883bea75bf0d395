// Package metrics provides Prometheus metrics for the pinchctl control loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Actuator call results.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultThrottled = "throttled"
)

// Manager owns all Prometheus collectors of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	framesProcessed prometheus.Counter
	framesDropped   prometheus.Counter
	handsDetected   prometheus.Histogram
	frameDuration   prometheus.Histogram
	detectErrors    prometheus.Counter

	readings      *prometheus.CounterVec
	channelValue  *prometheus.GaugeVec
	appliedValue  *prometheus.GaugeVec
	actuatorCalls *prometheus.CounterVec

	screenshots *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // registry served at /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pinchctl",
		subsystem:        "control",
		histogramBuckets: []float64{1, 2, 5, 10, 20, 33, 50, 100, 250, 500},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of frames that went through the control loop",
	})

	m.framesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_dropped_total",
		Help:      "Total number of frames that could not be acquired",
	})

	m.handsDetected = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "hands_detected",
		Help:      "Number of hands reported by the tracking provider per frame",
		Buckets:   []float64{0, 1, 2},
	})

	m.frameDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frame_duration_milliseconds",
		Help:      "Time spent in one loop iteration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.detectErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "detect_errors_total",
		Help:      "Total number of tracking provider failures",
	})

	m.readings = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "readings_total",
		Help:      "Total number of pinch readings routed to a channel",
	}, []string{"channel"})

	m.channelValue = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "channel_value_percent",
		Help:      "Current smoothed value of a channel",
	}, []string{"channel"})

	m.appliedValue = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "applied_value_percent",
		Help:      "Last percent successfully handed to the channel setter",
	}, []string{"channel"})

	m.actuatorCalls = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "actuator_calls_total",
		Help:      "Actuator apply calls by channel and result (ok, error, throttled)",
	}, []string{"channel", "result"})

	m.screenshots = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "screenshots_total",
		Help:      "Screenshot attempts by method and result",
	}, []string{"method", "result"})
}

// RecordFrameProcessed increments the processed frames counter and observes its duration.
func RecordFrameProcessed(durationMs float64) {
	globalManager.framesProcessed.Inc()
	globalManager.frameDuration.Observe(durationMs)
}

// RecordFrameDropped increments the dropped frames counter.
func RecordFrameDropped() {
	globalManager.framesDropped.Inc()
}

// RecordHandsDetected observes the number of hands in a frame.
func RecordHandsDetected(n int) {
	globalManager.handsDetected.Observe(float64(n))
}

// RecordDetectError increments the provider failure counter.
func RecordDetectError() {
	globalManager.detectErrors.Inc()
}

// RecordReading counts a reading routed to channel and stores its smoothed value.
func RecordReading(channel string, smoothed float64) {
	globalManager.readings.WithLabelValues(channel).Inc()
	globalManager.channelValue.WithLabelValues(channel).Set(smoothed)
}

// RecordActuatorCall counts an actuator call. For ResultOK the applied percent is stored.
func RecordActuatorCall(channel, result string, percent int) {
	globalManager.actuatorCalls.WithLabelValues(channel, result).Inc()
	if result == ResultOK {
		globalManager.appliedValue.WithLabelValues(channel).Set(float64(percent))
	}
}

// RecordScreenshot counts a screenshot attempt by method.
func RecordScreenshot(method, result string) {
	globalManager.screenshots.WithLabelValues(method, result).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
