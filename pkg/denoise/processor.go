package denoise

import (
	"context"
	stderrors "errors"
	"math"
	"sync"
	"time"

	"github.com/aural-labs/denoise-go/internal/assets"
	"github.com/aural-labs/denoise-go/internal/engine"
	"github.com/aural-labs/denoise-go/internal/errors"
	"github.com/aural-labs/denoise-go/internal/observability/metrics"
)

// ErrNotInitialized is returned when an operation requires a fully
// constructed processor. Use denoise.New; direct struct construction never
// reaches the initialized state.
var ErrNotInitialized = stderrors.New("processor is not initialized, construct it with denoise.New")

// ErrAssetsMissing signals a broken invariant: the processor reports
// initialized but holds no acquired assets. It should not occur when the
// lifecycle is respected.
var ErrAssetsMissing = stderrors.New("processor assets are not loaded")

// Processor is one noise-suppression instance. Instances may share acquired
// assets through the registry but track their own lifecycle and bypass
// state. All methods are safe for concurrent use.
type Processor struct {
	config Config

	registry *assets.Registry
	eng      engine.Engine
	metrics  *metrics.ProcessorMetrics

	mu          sync.Mutex
	acquired    *assets.AcquiredAssets
	handle      engine.Handle
	initialized bool
	bypassed    bool
}

// Option configures New and Preload.
type Option func(*options)

type options struct {
	registry *assets.Registry
	eng      engine.Engine
	metrics  *metrics.ProcessorMetrics
}

// WithRegistry substitutes the asset acquisition registry. Tests use this
// to run against isolated registries instead of the process-wide one.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithEngine substitutes the execution engine.
func WithEngine(e Engine) Option {
	return func(o *options) {
		o.eng = e
	}
}

// WithMetrics reports this processor's lifecycle and control counters into
// the given collectors instead of the process-wide ones. Acquisition
// counters attach at registry construction, see WithAssetMetrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m.Processor
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = processRegistry()
	}
	if o.eng == nil {
		o.eng = processEngine()
	}
	if o.metrics == nil {
		if m := DefaultMetrics(); m != nil {
			o.metrics = m.Processor
		}
	}
	return o
}

// New creates a processor for the given configuration and drives it to the
// ready state by acquiring assets through the shared registry. A nil config
// uses DefaultConfig. On acquisition failure the error is returned and no
// instance exists; there is no partially constructed processor to clean up.
func New(ctx context.Context, cfg *Config, opts ...Option) (*Processor, error) {
	start := time.Now()

	config := DefaultConfig()
	if cfg != nil {
		config = cfg.normalized()
	}

	o := buildOptions(opts)

	acquired, err := o.registry.Acquire(ctx, config.effectiveBase())
	if err != nil {
		if o.metrics != nil {
			o.metrics.InstancesFailed.Inc()
		}
		return nil, err
	}

	if o.metrics != nil {
		o.metrics.InstancesCreated.Inc()
		o.metrics.InitDuration.Observe(time.Since(start).Seconds())
	}

	return &Processor{
		config:      config,
		registry:    o.registry,
		eng:         o.eng,
		metrics:     o.metrics,
		acquired:    acquired,
		initialized: true,
	}, nil
}

// Preload warms the asset cache for a configuration without constructing a
// processor. It joins the exact same flight as a concurrent New with an
// equal effective base location.
func Preload(ctx context.Context, cfg *Config, opts ...Option) (*AcquiredAssets, error) {
	config := DefaultConfig()
	if cfg != nil {
		config = cfg.normalized()
	}
	o := buildOptions(opts)
	return o.registry.Acquire(ctx, config.effectiveBase())
}

// Config returns the immutable configuration snapshot bound at creation.
func (p *Processor) Config() Config {
	return p.config
}

// CreateExecutionHandle binds the acquired assets into a live execution
// handle on the given audio context. The module registration on the context
// is idempotent, and so is this call: with a live handle already bound it
// is a no-op.
func (p *Processor) CreateExecutionHandle(ctx context.Context, ac *AudioContext) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle != nil {
		return nil
	}
	if !p.initialized {
		return errors.New(ErrNotInitialized).
			Component("processor").
			Category(errors.CategoryState).
			Build()
	}
	if p.acquired == nil {
		return errors.New(ErrAssetsMissing).
			Component("processor").
			Category(errors.CategoryValidation).
			Build()
	}

	if err := p.eng.RegisterModule(ctx, ac, p.acquired.Executable); err != nil {
		return err
	}

	handle, err := p.eng.NewHandle(ctx, ac, engine.HandleParams{
		Module:           p.acquired.Executable,
		ModelData:        p.acquired.ModelData,
		SuppressionLevel: p.config.SuppressionLevel,
		SampleRate:       p.config.SampleRate,
	})
	if err != nil {
		return err
	}

	p.handle = handle
	if p.metrics != nil {
		p.metrics.InstancesActive.Inc()
	}
	return nil
}

// IsReady reports whether both asset loading and execution-handle creation
// have completed. It is strictly narrower than "assets loaded": a processor
// without a live handle is not ready.
func (p *Processor) IsReady() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized && p.handle != nil
}

// Destroy disconnects the execution handle and drops this instance's
// reference to the acquired assets. The registry entry is unaffected; other
// instances and future acquisitions still see it. Destroy is idempotent and
// a no-op on a never-initialized processor; control operations after
// Destroy are safe no-ops. Re-initialization is not supported.
func (p *Processor) Destroy() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized && p.handle == nil {
		return
	}

	if p.handle != nil {
		if err := p.handle.Disconnect(); err != nil {
			getLogger().Warn("failed to disconnect execution handle", "error", err)
		}
		p.handle = nil
		if p.metrics != nil {
			p.metrics.InstancesActive.Dec()
		}
	}

	p.acquired = nil
	p.initialized = false
	p.bypassed = false
}

// SetSuppressionIntensity updates the suppression intensity on the live
// handle. Input tolerance is deliberate: without a handle, or for a
// non-finite level, the call is a silent no-op. Finite input is truncated
// to an integer and clamped to [0,100]. The message is fire-and-forget;
// delivery is assumed, not confirmed.
func (p *Processor) SetSuppressionIntensity(level float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == nil || math.IsNaN(level) || math.IsInf(level, 0) {
		if p.metrics != nil {
			p.metrics.ControlDiscarded.Inc()
		}
		return
	}

	clamped := int(level)
	if clamped < 0 {
		clamped = 0
	} else if clamped > 100 {
		clamped = 100
	}

	p.handle.Send(engine.ControlMessage{
		Type:  engine.MessageSetSuppressionLevel,
		Level: clamped,
	})
	if p.metrics != nil {
		p.metrics.ControlMessages.WithLabelValues(string(engine.MessageSetSuppressionLevel)).Inc()
	}
}

// SetNoiseSuppressionEnabled toggles pass-through mode on the live handle.
// Without a handle the call is a silent no-op. The local bypass flag
// reflects the last-set intent even though message delivery is
// unacknowledged.
func (p *Processor) SetNoiseSuppressionEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.handle == nil {
		if p.metrics != nil {
			p.metrics.ControlDiscarded.Inc()
		}
		return
	}

	p.bypassed = !enabled
	p.handle.Send(engine.ControlMessage{
		Type:   engine.MessageSetBypass,
		Bypass: p.bypassed,
	})
	if p.metrics != nil {
		p.metrics.ControlMessages.WithLabelValues(string(engine.MessageSetBypass)).Inc()
	}
}

// IsNoiseSuppressionEnabled returns the logical negation of the bypass
// flag: the last-set intent, not a confirmed engine state.
func (p *Processor) IsNoiseSuppressionEnabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.bypassed
}
