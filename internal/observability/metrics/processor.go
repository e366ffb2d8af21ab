package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ProcessorMetrics contains Prometheus metrics for processor lifecycle
// and control operations.
type ProcessorMetrics struct {
	InstancesCreated prometheus.Counter
	InstancesFailed  prometheus.Counter
	InstancesActive  prometheus.Gauge
	ControlMessages  *prometheus.CounterVec
	ControlDiscarded prometheus.Counter
	InitDuration     prometheus.Histogram
	registry         *prometheus.Registry
}

// NewProcessorMetrics creates a new instance of ProcessorMetrics registered
// on the given registry.
func NewProcessorMetrics(registry *prometheus.Registry) (*ProcessorMetrics, error) {
	m := &ProcessorMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize processor metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register processor metrics: %w", err)
	}
	return m, nil
}

func (m *ProcessorMetrics) initMetrics() error {
	m.InstancesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "denoise_processor_instances_created_total",
		Help: "Total number of processor instances successfully created.",
	})

	m.InstancesFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "denoise_processor_instances_failed_total",
		Help: "Total number of processor creations that failed during asset acquisition.",
	})

	m.InstancesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "denoise_processor_instances_active",
		Help: "Number of processor instances with a live execution handle.",
	})

	m.ControlMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "denoise_processor_control_messages_total",
		Help: "Total number of control messages sent to execution handles by type.",
	}, []string{"type"})

	m.ControlDiscarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "denoise_processor_control_discarded_total",
		Help: "Control operations silently discarded (no handle or invalid input).",
	})

	m.InitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "denoise_processor_init_duration_seconds",
		Help:    "Time from processor creation to Ready state.",
		Buckets: prometheus.DefBuckets,
	})

	return nil
}

// Describe implements the prometheus.Collector interface.
func (m *ProcessorMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.InstancesCreated.Describe(ch)
	m.InstancesFailed.Describe(ch)
	m.InstancesActive.Describe(ch)
	m.ControlMessages.Describe(ch)
	m.ControlDiscarded.Describe(ch)
	m.InitDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *ProcessorMetrics) Collect(ch chan<- prometheus.Metric) {
	m.InstancesCreated.Collect(ch)
	m.InstancesFailed.Collect(ch)
	m.InstancesActive.Collect(ch)
	m.ControlMessages.Collect(ch)
	m.ControlDiscarded.Collect(ch)
	m.InitDuration.Collect(ch)
}
