// Package engine defines the boundary to the real-time audio execution
// layer. The processor hands it compiled module bytes and model weights and
// talks to the resulting handle over a one-way control channel; everything
// behind the handle is opaque to the rest of the library.
package engine

import (
	"context"
)

// MessageType identifies a control message sent to an execution handle.
type MessageType string

const (
	// MessageSetSuppressionLevel carries a new suppression intensity (0..100).
	MessageSetSuppressionLevel MessageType = "SET_SUPPRESSION_LEVEL"
	// MessageSetBypass toggles pass-through mode while keeping the handle alive.
	MessageSetBypass MessageType = "SET_BYPASS"
)

// ControlMessage is a one-way, unacknowledged message to a live handle.
// Delivery is assumed, not confirmed; there is no reply channel.
type ControlMessage struct {
	Type   MessageType
	Level  int
	Bypass bool
}

// Module is an opaque compiled executable module. Compiled modules are
// shared read-only across handles and live for the process lifetime; there
// is no release operation.
type Module interface {
	// SizeBytes reports the size of the compiled module's source blob,
	// for logging and metrics only.
	SizeBytes() int
}

// HandleParams carries everything a new execution handle is bound to.
type HandleParams struct {
	Module           Module
	ModelData        []byte
	SuppressionLevel int
	SampleRate       int
}

// Handle is the live, per-instance binding between compiled assets and the
// real-time audio engine.
type Handle interface {
	// Send delivers a control message asynchronously. It never blocks and
	// never fails; messages sent after Disconnect or into a full queue are
	// silently dropped.
	Send(msg ControlMessage)
	// Disconnect tears the handle down. Safe to call more than once.
	Disconnect() error
}

// Engine compiles executable module bytes and constructs execution handles
// bound to an audio context.
type Engine interface {
	// CompileModule compiles raw executable bytes into an opaque module.
	CompileModule(ctx context.Context, data []byte) (Module, error)
	// RegisterModule makes a compiled module available on the given audio
	// context. Idempotent: registering the same module on the same context
	// again is a no-op.
	RegisterModule(ctx context.Context, ac *AudioContext, m Module) error
	// NewHandle constructs a live execution handle on the audio context.
	NewHandle(ctx context.Context, ac *AudioContext, params HandleParams) (Handle, error)
}
