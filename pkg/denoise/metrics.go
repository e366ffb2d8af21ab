package denoise

import (
	"github.com/aural-labs/denoise-go/internal/assets"
	"github.com/aural-labs/denoise-go/internal/observability"
)

// Metrics aggregates the library's prometheus collectors around one
// registry. Metrics.Registry() exposes that registry so the embedding
// application can mount it on its own scrape endpoint.
type Metrics = observability.Metrics

// NewMetrics creates the collectors on a fresh prometheus registry.
func NewMetrics() (*Metrics, error) {
	return observability.NewMetrics()
}

// DefaultMetrics returns the process-wide metrics that the shared registry
// and processors constructed without WithMetrics report into. It is nil
// only if collector registration failed at process init.
func DefaultMetrics() *Metrics {
	initProcessState()
	return procMetrics
}

// WithAssetMetrics attaches the acquisition collectors to a registry built
// with NewRegistry.
func WithAssetMetrics(m *Metrics) RegistryOption {
	return assets.WithMetrics(m.Assets)
}
