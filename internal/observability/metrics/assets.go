// Package metrics provides custom Prometheus metrics for the denoise
// processor components.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// AssetMetrics contains all Prometheus metrics related to asset
// acquisition and caching.
type AssetMetrics struct {
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	Downloads        *prometheus.CounterVec
	DownloadErrors   *prometheus.CounterVec
	DownloadDuration prometheus.Histogram
	CompileDuration  prometheus.Histogram
	registry         *prometheus.Registry
}

// NewAssetMetrics creates a new instance of AssetMetrics registered on the
// given registry. It returns an error if metric registration fails.
func NewAssetMetrics(registry *prometheus.Registry) (*AssetMetrics, error) {
	m := &AssetMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize asset metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register asset metrics: %w", err)
	}
	return m, nil
}

func (m *AssetMetrics) initMetrics() error {
	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "denoise_asset_cache_hits_total",
		Help: "Total number of asset cache hits (joined or resolved entries).",
	})

	m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "denoise_asset_cache_misses_total",
		Help: "Total number of asset cache misses (new acquisitions started).",
	})

	m.Downloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "denoise_asset_downloads_total",
		Help: "Total number of asset downloads by asset kind.",
	}, []string{"asset"})

	m.DownloadErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "denoise_asset_download_errors_total",
		Help: "Total number of failed asset downloads by asset kind.",
	}, []string{"asset"})

	m.DownloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "denoise_asset_download_duration_seconds",
		Help:    "Time taken to download a single asset.",
		Buckets: prometheus.DefBuckets,
	})

	m.CompileDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "denoise_asset_compile_duration_seconds",
		Help:    "Time taken to compile the executable module.",
		Buckets: prometheus.DefBuckets,
	})

	return nil
}

// Describe implements the prometheus.Collector interface.
func (m *AssetMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.CacheHits.Describe(ch)
	m.CacheMisses.Describe(ch)
	m.Downloads.Describe(ch)
	m.DownloadErrors.Describe(ch)
	m.DownloadDuration.Describe(ch)
	m.CompileDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *AssetMetrics) Collect(ch chan<- prometheus.Metric) {
	m.CacheHits.Collect(ch)
	m.CacheMisses.Collect(ch)
	m.Downloads.Collect(ch)
	m.DownloadErrors.Collect(ch)
	m.DownloadDuration.Collect(ch)
	m.CompileDuration.Collect(ch)
}
