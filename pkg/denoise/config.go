// Package denoise exposes the noise-suppression audio processor: asset
// acquisition and caching, the processor lifecycle, and the runtime control
// surface. Construct instances with New; direct struct construction is not
// supported.
package denoise

import (
	"time"

	"github.com/aural-labs/denoise-go/internal/assets"
	"github.com/aural-labs/denoise-go/internal/conf"
)

// AssetConfig overrides where the processor's binary assets are fetched
// from. The effective base location (override or built-in default) is the
// asset cache key; fetch options do not affect the key.
type AssetConfig struct {
	// BaseURL replaces the built-in CDN base location when non-empty.
	BaseURL string
	// Timeout bounds each asset fetch. Zero uses the client default.
	Timeout time.Duration
	// UserAgent is sent on asset fetches. Empty uses the client default.
	UserAgent string
}

// Config describes one processor instance. It is immutable once bound: the
// processor snapshots it at creation and later changes have no effect.
type Config struct {
	// SampleRate of the processed stream in Hz. Zero uses the model default.
	SampleRate int
	// SuppressionLevel is the initial suppression intensity, 0..100.
	SuppressionLevel int
	// Assets optionally overrides the asset base location and fetch options.
	Assets AssetConfig
}

// DefaultConfig returns the configuration used when New or Preload is
// called with a nil config.
func DefaultConfig() Config {
	return Config{
		SampleRate:       conf.DefaultSampleRate,
		SuppressionLevel: conf.DefaultSuppressionLevel,
	}
}

// normalized returns a copy with zero-value fields that have no meaning as
// zero (sample rate) replaced by defaults. SuppressionLevel zero is a valid
// value and is kept.
func (c Config) normalized() Config {
	if c.SampleRate == 0 {
		c.SampleRate = conf.DefaultSampleRate
	}
	return c
}

// effectiveBase returns the asset cache key for this configuration.
func (c Config) effectiveBase() string {
	return assets.EffectiveBaseURL(c.Assets.BaseURL)
}
