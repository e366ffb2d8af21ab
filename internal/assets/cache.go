package assets

import (
	"context"
	"sync"
	"time"

	"github.com/aural-labs/denoise-go/internal/engine"
	"github.com/aural-labs/denoise-go/internal/errors"
	"github.com/aural-labs/denoise-go/internal/observability/metrics"
)

// Fetcher retrieves raw asset bytes for a URL.
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Compiler turns raw executable bytes into an opaque compiled module.
type Compiler interface {
	CompileModule(ctx context.Context, data []byte) (engine.Module, error)
}

// AcquiredAssets is the result of one acquisition: the compiled executable
// module and the raw model weights. Immutable after creation and shared
// read-only by the registry and every processor instance that requested it.
// Compiled modules are never released; their lifetime is the process
// lifetime.
type AcquiredAssets struct {
	Executable engine.Module
	ModelData  []byte
}

// acquisition is a memoizing computation cell: one per effective base
// location. Joining an in-flight cell and reading a completed cell are the
// same operation from the caller's perspective, a wait on done.
type acquisition struct {
	done   chan struct{}
	assets *AcquiredAssets
	err    error
}

// Registry memoizes asset acquisitions keyed by effective base location.
// The first caller for a key starts the fetch-and-compile flight; every
// caller for the same key, concurrent or later, observes that flight's
// single outcome. Distinct keys are fully independent.
//
// A failed flight is evicted from the registry so a later call can retry;
// all waiters that joined the failed flight still see its error.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*acquisition

	fetcher  Fetcher
	compiler Compiler
	metrics  *metrics.AssetMetrics
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMetrics attaches asset metrics to the registry.
func WithMetrics(m *metrics.AssetMetrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

// NewRegistry creates an acquisition registry. The fetcher retrieves raw
// bytes, the compiler builds the executable module. Tests pass isolated
// registries; production shares one per process.
func NewRegistry(fetcher Fetcher, compiler Compiler, opts ...RegistryOption) *Registry {
	r := &Registry{
		entries:  make(map[string]*acquisition),
		fetcher:  fetcher,
		compiler: compiler,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire returns the assets for the given effective base location,
// starting a fetch-and-compile flight if none exists for the key. All
// callers for an equal key share one flight and one outcome. There is no
// cancellation: once a flight starts it runs to completion or failure, and
// joiners wait it out regardless of their own context.
func (r *Registry) Acquire(ctx context.Context, effectiveBase string) (*AcquiredAssets, error) {
	r.mu.Lock()
	if entry, ok := r.entries[effectiveBase]; ok {
		r.mu.Unlock()
		if r.metrics != nil {
			r.metrics.CacheHits.Inc()
		}
		<-entry.done
		return entry.assets, entry.err
	}

	entry := &acquisition{done: make(chan struct{})}
	r.entries[effectiveBase] = entry
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.CacheMisses.Inc()
	}

	entry.assets, entry.err = r.acquire(ctx, effectiveBase)
	if entry.err != nil {
		// Evict so the next request can retry; everyone already waiting on
		// this flight still observes the failure.
		r.mu.Lock()
		delete(r.entries, effectiveBase)
		r.mu.Unlock()
	}
	close(entry.done)

	return entry.assets, entry.err
}

// Cached returns the resolved assets for a key without starting or joining
// a flight. It reports false for absent and still in-flight entries.
func (r *Registry) Cached(effectiveBase string) (*AcquiredAssets, bool) {
	r.mu.Lock()
	entry, ok := r.entries[effectiveBase]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-entry.done:
		if entry.err != nil {
			return nil, false
		}
		return entry.assets, true
	default:
		return nil, false
	}
}

// acquire performs one fetch-and-compile flight.
func (r *Registry) acquire(ctx context.Context, effectiveBase string) (*AcquiredAssets, error) {
	start := time.Now()
	locations := ResolveLocations(effectiveBase)

	getLogger().Info("acquiring processor assets", "base", effectiveBase)

	executableData, err := r.fetchAsset(ctx, "executable", locations.ExecutableURL)
	if err != nil {
		return nil, err
	}

	modelData, err := r.fetchAsset(ctx, "model", locations.ModelURL)
	if err != nil {
		return nil, err
	}

	compileStart := time.Now()
	module, err := r.compiler.CompileModule(ctx, executableData)
	if err != nil {
		return nil, errors.Wrap(err).
			Category(errors.CategoryModelCompile).
			Context("base", effectiveBase).
			Build()
	}
	if r.metrics != nil {
		r.metrics.CompileDuration.Observe(time.Since(compileStart).Seconds())
	}

	getLogger().Info("processor assets acquired",
		"base", effectiveBase,
		"module_kb", module.SizeBytes()/1024,
		"model_kb", len(modelData)/1024,
		"duration_ms", time.Since(start).Milliseconds())

	return &AcquiredAssets{
		Executable: module,
		ModelData:  modelData,
	}, nil
}

func (r *Registry) fetchAsset(ctx context.Context, kind, url string) ([]byte, error) {
	start := time.Now()
	data, err := r.fetcher.FetchBytes(ctx, url)
	if r.metrics != nil {
		if err != nil {
			r.metrics.DownloadErrors.WithLabelValues(kind).Inc()
		} else {
			r.metrics.Downloads.WithLabelValues(kind).Inc()
			r.metrics.DownloadDuration.Observe(time.Since(start).Seconds())
		}
	}
	if err != nil {
		return nil, errors.Wrap(err).
			Context("asset", kind).
			Build()
	}
	return data, nil
}
