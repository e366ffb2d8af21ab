// Package assets acquires and caches the processor's binary assets: the
// compiled executable module and the model weight blob. Acquisition is
// single-flight per effective base location and memoized for the process
// lifetime.
package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aural-labs/denoise-go/internal/errors"
	"github.com/aural-labs/denoise-go/internal/httpclient"
)

// DefaultBaseURL is the CDN location assets are fetched from when no
// override is configured. Overriding it changes the cache key.
const DefaultBaseURL = "https://cdn.aural-labs.com/denoise/v2"

// Asset file names under the base location.
const (
	executableFileName = "denoiser_module.tflite"
	modelFileName      = "denoiser_weights.bin"
)

// LocationSet holds the concrete URLs both assets are fetched from.
type LocationSet struct {
	ExecutableURL string
	ModelURL      string
}

// EffectiveBaseURL resolves an override-or-default base location. The
// returned string is the cache key for asset acquisition: two configurations
// with an equal effective base share one cache entry.
func EffectiveBaseURL(override string) string {
	if override == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(override, "/")
}

// ResolveLocations derives the concrete asset URLs from an optional base
// override. Pure and deterministic: equal effective bases yield equal
// location sets.
func ResolveLocations(override string) LocationSet {
	base := EffectiveBaseURL(override)
	return LocationSet{
		ExecutableURL: base + "/" + executableFileName,
		ModelURL:      base + "/" + modelFileName,
	}
}

// Source retrieves raw asset bytes over HTTP. Fetch failures are not
// retried here; they propagate to the caller.
type Source struct {
	client *httpclient.Client
}

// NewSource creates a Source on top of the given HTTP client. A nil client
// falls back to the package defaults.
func NewSource(client *httpclient.Client) *Source {
	if client == nil {
		client = httpclient.New(nil)
	}
	return &Source{client: client}
}

// FetchBytes downloads a single asset. Non-2xx responses and transport
// failures surface as errors; the body is fully read into memory.
func (s *Source) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	resp, err := s.client.Get(ctx, url)
	if err != nil {
		return nil, errors.New(fmt.Errorf("asset fetch failed: %w", err)).
			Component("assets").
			Category(errors.CategoryNetwork).
			NetworkContext(url, 0).
			Timing("asset-fetch", time.Since(start)).
			Build()
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			getLogger().Warn("failed to close asset response body", "error", cerr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, errors.Newf("asset fetch returned status %d", resp.StatusCode).
			Component("assets").
			Category(errors.CategoryHTTP).
			NetworkContext(url, 0).
			Context("status_code", resp.StatusCode).
			Build()
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(fmt.Errorf("asset read failed: %w", err)).
			Component("assets").
			Category(errors.CategoryNetwork).
			NetworkContext(url, 0).
			Timing("asset-read", time.Since(start)).
			Build()
	}

	getLogger().Debug("asset fetched",
		"size_kb", len(data)/1024,
		"duration_ms", time.Since(start).Milliseconds())

	return data, nil
}
