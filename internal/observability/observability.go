// Package observability provides metrics collectors for the denoise
// processor library.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aural-labs/denoise-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the library.
type Metrics struct {
	registry  *prometheus.Registry
	Assets    *metrics.AssetMetrics
	Processor *metrics.ProcessorMetrics
}

// NewMetrics creates a new instance of Metrics with its own registry,
// initializing all metric collectors. It returns an error if any collector
// fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	assetMetrics, err := metrics.NewAssetMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset metrics: %w", err)
	}

	processorMetrics, err := metrics.NewProcessorMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Assets:    assetMetrics,
		Processor: processorMetrics,
	}, nil
}

// Registry returns the prometheus registry holding the collectors, so the
// embedding application can expose it on its own metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
