package denoise

import (
	"github.com/aural-labs/denoise-go/internal/assets"
	"github.com/aural-labs/denoise-go/internal/engine"
)

// The engine and acquisition boundary types are re-exported here so an
// embedding application can bind execution handles, substitute its own
// engine, and construct isolated registries without reaching into internal
// packages.
type (
	// AudioContext is the audio device context execution handles bind to.
	// The zero value works with engines that need no device backend.
	AudioContext = engine.AudioContext
	// Engine compiles executable modules and constructs execution handles
	// bound to an audio context.
	Engine = engine.Engine
	// Handle is the live, per-instance binding between compiled assets and
	// the real-time audio engine.
	Handle = engine.Handle
	// Module is an opaque compiled executable module.
	Module = engine.Module
	// HandleParams carries everything a new execution handle is bound to.
	HandleParams = engine.HandleParams
	// ControlMessage is a one-way, unacknowledged message to a live handle.
	ControlMessage = engine.ControlMessage
	// MessageType identifies a control message sent to an execution handle.
	MessageType = engine.MessageType
)

// Control message types understood by execution handles.
const (
	MessageSetSuppressionLevel = engine.MessageSetSuppressionLevel
	MessageSetBypass           = engine.MessageSetBypass
)

// NewAudioContext initializes an audio device context using the platform
// default backend. The caller must Close it when done.
func NewAudioContext() (*AudioContext, error) {
	return engine.NewAudioContext()
}

// Acquisition boundary.
type (
	// AcquiredAssets is the compiled executable module plus the raw model
	// weights, shared read-only by every processor that requested it.
	AcquiredAssets = assets.AcquiredAssets
	// Registry memoizes asset acquisitions keyed by effective base location.
	Registry = assets.Registry
	// RegistryOption configures NewRegistry.
	RegistryOption = assets.RegistryOption
	// Fetcher retrieves raw asset bytes for a URL.
	Fetcher = assets.Fetcher
	// Compiler turns raw executable bytes into a compiled module.
	Compiler = assets.Compiler
)

// NewRegistry creates an isolated acquisition registry. Production code
// normally relies on the shared process registry; embedders' tests pass the
// result through WithRegistry to keep acquisition flights out of process
// state.
func NewRegistry(fetcher Fetcher, compiler Compiler, opts ...RegistryOption) *Registry {
	return assets.NewRegistry(fetcher, compiler, opts...)
}
