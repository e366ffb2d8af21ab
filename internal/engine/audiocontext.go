package engine

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/gen2brain/malgo"

	"github.com/aural-labs/denoise-go/internal/errors"
)

// AudioContext represents the audio device context execution handles are
// bound to. It tracks per-context module registrations so repeat
// registration stays a no-op.
//
// The zero value is usable for engines that do not need a device backend
// (tests, offline processing); NewAudioContext initializes a malgo-backed
// context for real-time playback and capture.
type AudioContext struct {
	malgoCtx *malgo.AllocatedContext

	mu         sync.Mutex
	registered map[Module]struct{}
}

// NewAudioContext initializes an audio device context using the platform
// default backend. The caller must Close it when done.
func NewAudioContext() (*AudioContext, error) {
	// Audio backend auto-select, matching the OS conventions.
	var backends []malgo.Backend
	switch runtime.GOOS {
	case "linux":
		backends = []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		backends = []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		backends = []malgo.Backend{malgo.BackendCoreaudio}
	}

	malgoCtx, err := malgo.InitContext(backends, malgo.ContextConfig{}, func(message string) {
		getLogger().Debug("audio context", "message", message)
	})
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to initialize audio context: %w", err)).
			Component("engine").
			Category(errors.CategoryEngine).
			Build()
	}

	return &AudioContext{malgoCtx: malgoCtx}, nil
}

// Close releases the underlying device context. Handles bound to this
// context must be disconnected first.
func (ac *AudioContext) Close() error {
	if ac.malgoCtx == nil {
		return nil
	}
	if err := ac.malgoCtx.Uninit(); err != nil {
		return errors.New(fmt.Errorf("failed to uninit audio context: %w", err)).
			Component("engine").
			Category(errors.CategoryEngine).
			Build()
	}
	ac.malgoCtx.Free()
	ac.malgoCtx = nil
	return nil
}

// markRegistered records a module registration on this context. Returns
// true if the module was already registered.
func (ac *AudioContext) markRegistered(m Module) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	if ac.registered == nil {
		ac.registered = make(map[Module]struct{})
	}
	if _, ok := ac.registered[m]; ok {
		return true
	}
	ac.registered[m] = struct{}{}
	return false
}

// isRegistered reports whether a module has been registered on this context.
func (ac *AudioContext) isRegistered(m Module) bool {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	_, ok := ac.registered[m]
	return ok
}
