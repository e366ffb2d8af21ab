package assets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aural-labs/denoise-go/internal/engine"
	"github.com/aural-labs/denoise-go/internal/errors"
	"github.com/aural-labs/denoise-go/internal/observability/metrics"
)

// fakeFetcher counts fetches per URL and can block or fail on demand.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	failFor string        // substring; matching URLs fail
	gate    chan struct{} // when set, FetchBytes blocks until closed
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{calls: make(map[string]int)}
}

func (f *fakeFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls[url]++
	gate := f.gate
	failFor := f.failFor
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if failFor != "" && strings.Contains(url, failFor) {
		return nil, errors.Newf("fetch of %s failed", url).
			Category(errors.CategoryNetwork).
			Build()
	}
	return []byte("bytes:" + url), nil
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// fakeModule implements engine.Module for tests.
type fakeModule struct{ size int }

func (m *fakeModule) SizeBytes() int { return m.size }

// fakeCompiler compiles successfully unless fail is set.
type fakeCompiler struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (c *fakeCompiler) CompileModule(ctx context.Context, data []byte) (engine.Module, error) {
	c.mu.Lock()
	c.calls++
	fail := c.fail
	c.mu.Unlock()
	if fail {
		return nil, errors.Newf("compile failed").Category(errors.CategoryModelCompile).Build()
	}
	return &fakeModule{size: len(data)}, nil
}

func (c *fakeCompiler) compileCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestRegistry_AcquireResolvesAssets(t *testing.T) {
	fetcher := newFakeFetcher()
	reg := NewRegistry(fetcher, &fakeCompiler{})

	acquired, err := reg.Acquire(t.Context(), DefaultBaseURL)
	require.NoError(t, err, "acquisition failed")
	require.NotNil(t, acquired)

	locs := ResolveLocations(DefaultBaseURL)
	assert.Equal(t, []byte("bytes:"+locs.ModelURL), acquired.ModelData, "model bytes must come from the model URL")
	assert.NotNil(t, acquired.Executable, "executable must be compiled")
	assert.Equal(t, 1, fetcher.callCount(locs.ExecutableURL), "one executable fetch")
	assert.Equal(t, 1, fetcher.callCount(locs.ModelURL), "one model fetch")
}

func TestRegistry_SingleFlightConcurrent(t *testing.T) {
	fetcher := newFakeFetcher()
	gate := make(chan struct{})
	fetcher.gate = gate
	reg := NewRegistry(fetcher, &fakeCompiler{})

	const callers = 8
	results := make([]*AcquiredAssets, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = reg.Acquire(context.Background(), DefaultBaseURL)
		}(i)
	}

	// Give every caller time to either own or join the flight, then let
	// the fetches finish.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i], "caller %d failed", i)
		assert.Same(t, results[0], results[i], "all callers must observe the identical AcquiredAssets")
	}
	assert.Equal(t, 2, fetcher.totalCalls(), "exactly one fetch per asset, 2 total, not %d", fetcher.totalCalls())
}

func TestRegistry_MemoizedAfterCompletion(t *testing.T) {
	fetcher := newFakeFetcher()
	compiler := &fakeCompiler{}
	reg := NewRegistry(fetcher, compiler)

	first, err := reg.Acquire(t.Context(), DefaultBaseURL)
	require.NoError(t, err)

	second, err := reg.Acquire(t.Context(), DefaultBaseURL)
	require.NoError(t, err)

	assert.Same(t, first, second, "completed entry must be returned, not refetched")
	assert.Equal(t, 2, fetcher.totalCalls(), "no additional fetches after completion")
	assert.Equal(t, 1, compiler.compileCount(), "no recompilation after completion")
}

func TestRegistry_DistinctKeysAreIndependent(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failFor = "bad.example.com"
	reg := NewRegistry(fetcher, &fakeCompiler{})

	good, err := reg.Acquire(t.Context(), "https://good.example.com/v2")
	require.NoError(t, err, "good base must resolve")

	_, err = reg.Acquire(t.Context(), "https://bad.example.com/v2")
	require.Error(t, err, "bad base must fail")

	// The failure of one key must not clear the other.
	cached, ok := reg.Cached("https://good.example.com/v2")
	require.True(t, ok, "good entry must remain cached")
	assert.Same(t, good, cached)
}

func TestRegistry_FailurePropagatesToAllWaiters(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failFor = executableFileName
	gate := make(chan struct{})
	fetcher.gate = gate
	reg := NewRegistry(fetcher, &fakeCompiler{})

	const callers = 4
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = reg.Acquire(context.Background(), DefaultBaseURL)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i := range callers {
		require.Error(t, errs[i], "caller %d must observe the shared failure", i)
	}
}

func TestRegistry_FailedEntryEvictedForRetry(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.failFor = executableFileName
	reg := NewRegistry(fetcher, &fakeCompiler{})

	_, err := reg.Acquire(t.Context(), DefaultBaseURL)
	require.Error(t, err, "first acquisition must fail")

	_, ok := reg.Cached(DefaultBaseURL)
	assert.False(t, ok, "failed entry must not stay cached")

	// Clear the failure; the retry must start a fresh flight.
	fetcher.mu.Lock()
	fetcher.failFor = ""
	fetcher.mu.Unlock()

	acquired, err := reg.Acquire(t.Context(), DefaultBaseURL)
	require.NoError(t, err, "retry after eviction must succeed")
	assert.NotNil(t, acquired)
}

func TestRegistry_CompileFailureSurfacesCategory(t *testing.T) {
	fetcher := newFakeFetcher()
	reg := NewRegistry(fetcher, &fakeCompiler{fail: true})

	_, err := reg.Acquire(t.Context(), DefaultBaseURL)
	require.Error(t, err)

	var ee *errors.EnhancedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, string(errors.CategoryModelCompile), ee.GetCategory())
}

func TestRegistry_Cached(t *testing.T) {
	fetcher := newFakeFetcher()
	reg := NewRegistry(fetcher, &fakeCompiler{})

	_, ok := reg.Cached(DefaultBaseURL)
	assert.False(t, ok, "absent key must not report cached")

	acquired, err := reg.Acquire(t.Context(), DefaultBaseURL)
	require.NoError(t, err)

	cached, ok := reg.Cached(DefaultBaseURL)
	require.True(t, ok)
	assert.Same(t, acquired, cached)
}

func TestRegistry_Metrics(t *testing.T) {
	m, err := metrics.NewAssetMetrics(prometheus.NewRegistry())
	require.NoError(t, err, "failed to create asset metrics")

	fetcher := newFakeFetcher()
	reg := NewRegistry(fetcher, &fakeCompiler{}, WithMetrics(m))

	_, err = reg.Acquire(t.Context(), DefaultBaseURL)
	require.NoError(t, err)
	_, err = reg.Acquire(t.Context(), DefaultBaseURL)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses), "one miss for the first acquisition")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits), "one hit for the repeat acquisition")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Downloads.WithLabelValues("executable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Downloads.WithLabelValues("model")))
}

// Guard against accidental key normalization: keys are compared as exact
// strings, nothing more.
func TestRegistry_KeyIsExactString(t *testing.T) {
	fetcher := newFakeFetcher()
	reg := NewRegistry(fetcher, &fakeCompiler{})

	a, err := reg.Acquire(t.Context(), "https://cdn.example.com/v2")
	require.NoError(t, err)
	b, err := reg.Acquire(t.Context(), fmt.Sprintf("https://%s/v2", "cdn.example.com"))
	require.NoError(t, err)

	assert.Same(t, a, b, "equal strings are the same key")
	assert.Equal(t, 2, fetcher.totalCalls())
}
