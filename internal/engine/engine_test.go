package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aural-labs/denoise-go/internal/errors"
)

// stubModule stands in for a module compiled by a different engine.
type stubModule struct{ size int }

func (m *stubModule) SizeBytes() int { return m.size }

func TestAudioContext_RegistrationIsIdempotent(t *testing.T) {
	ac := &AudioContext{}
	m := &stubModule{size: 128}

	assert.False(t, ac.markRegistered(m), "first registration should report not-yet-registered")
	assert.True(t, ac.markRegistered(m), "second registration should report already-registered")
	assert.True(t, ac.isRegistered(m))
}

func TestAudioContext_TracksModulesIndependently(t *testing.T) {
	ac := &AudioContext{}
	m1 := &stubModule{size: 1}
	m2 := &stubModule{size: 2}

	ac.markRegistered(m1)
	assert.True(t, ac.isRegistered(m1))
	assert.False(t, ac.isRegistered(m2), "unregistered module must not appear registered")
}

func TestAudioContext_CloseZeroValue(t *testing.T) {
	ac := &AudioContext{}
	assert.NoError(t, ac.Close(), "closing a zero-value context is a no-op")
}

func TestTFLiteEngine_CompileModuleEmptyData(t *testing.T) {
	e := NewTFLiteEngine()

	_, err := e.CompileModule(t.Context(), nil)
	require.Error(t, err, "empty module bytes must not compile")

	var ee *errors.EnhancedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, string(errors.CategoryModelCompile), ee.GetCategory())
}

func TestTFLiteEngine_RegisterModuleRejectsForeignModule(t *testing.T) {
	e := NewTFLiteEngine()
	ac := &AudioContext{}

	err := e.RegisterModule(t.Context(), ac, &stubModule{})
	assert.Error(t, err, "modules compiled elsewhere must be rejected")
}

func TestTFLiteEngine_RegisterModuleNilContext(t *testing.T) {
	e := NewTFLiteEngine()

	err := e.RegisterModule(t.Context(), nil, &stubModule{})
	assert.Error(t, err, "nil audio context must be rejected")
}

func TestTFLiteEngine_NewHandleRequiresRegistration(t *testing.T) {
	e := NewTFLiteEngine()
	ac := &AudioContext{}

	_, err := e.NewHandle(t.Context(), ac, HandleParams{Module: &stubModule{}})
	assert.Error(t, err, "handles require a module compiled and registered on the context")
}
