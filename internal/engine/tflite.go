package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tflite "github.com/tphakala/go-tflite"

	"github.com/aural-labs/denoise-go/internal/errors"
)

// TFLiteEngine is the production execution engine. It compiles executable
// module bytes with TensorFlow Lite and binds handles to an interpreter
// running on the audio context.
type TFLiteEngine struct{}

// NewTFLiteEngine returns the production engine.
func NewTFLiteEngine() *TFLiteEngine {
	return &TFLiteEngine{}
}

// tfliteModule wraps a compiled TFLite model.
type tfliteModule struct {
	model *tflite.Model
	size  int
}

func (m *tfliteModule) SizeBytes() int { return m.size }

// CompileModule compiles raw module bytes into a TFLite model.
func (e *TFLiteEngine) CompileModule(ctx context.Context, data []byte) (Module, error) {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.Newf("cannot compile empty module").
			Component("engine").
			Category(errors.CategoryModelCompile).
			Build()
	}

	model := tflite.NewModel(data)
	if model == nil {
		return nil, errors.Newf("cannot load TensorFlow Lite module").
			Component("engine").
			Category(errors.CategoryModelCompile).
			Context("module_size_kb", len(data)/1024).
			Timing("module-compile", time.Since(start)).
			Build()
	}

	getLogger().Debug("compiled execution module",
		"size_kb", len(data)/1024,
		"duration_ms", time.Since(start).Milliseconds())

	return &tfliteModule{model: model, size: len(data)}, nil
}

// RegisterModule makes a compiled module available on the audio context.
// Repeat registration of the same module on the same context is a no-op.
func (e *TFLiteEngine) RegisterModule(ctx context.Context, ac *AudioContext, m Module) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ac == nil {
		return errors.Newf("nil audio context").
			Component("engine").
			Category(errors.CategoryValidation).
			Build()
	}
	if _, ok := m.(*tfliteModule); !ok {
		return errors.Newf("module was not compiled by this engine").
			Component("engine").
			Category(errors.CategoryValidation).
			Build()
	}

	if ac.markRegistered(m) {
		getLogger().Debug("module already registered on audio context")
		return nil
	}

	getLogger().Debug("registered execution module on audio context",
		"size_kb", m.SizeBytes()/1024)
	return nil
}

// NewHandle constructs a live execution handle bound to the audio context.
func (e *TFLiteEngine) NewHandle(ctx context.Context, ac *AudioContext, params HandleParams) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mod, ok := params.Module.(*tfliteModule)
	if !ok {
		return nil, errors.Newf("module was not compiled by this engine").
			Component("engine").
			Category(errors.CategoryValidation).
			Build()
	}
	if ac == nil || !ac.isRegistered(params.Module) {
		return nil, errors.Newf("module is not registered on the audio context").
			Component("engine").
			Category(errors.CategoryState).
			Build()
	}

	// Real-time path runs on a single thread; the interpreter must not
	// compete with the audio callback for cores.
	options := tflite.NewInterpreterOptions()
	options.SetNumThread(1)
	options.SetErrorReporter(func(msg string, userData any) {
		getLogger().Error("TFLite error", "message", msg)
	}, nil)

	interpreter := tflite.NewInterpreter(mod.model, options)
	if interpreter == nil {
		return nil, errors.Newf("cannot create interpreter for execution handle").
			Component("engine").
			Category(errors.CategoryEngine).
			Build()
	}
	if status := interpreter.AllocateTensors(); status != tflite.OK {
		interpreter.Delete()
		return nil, errors.New(fmt.Errorf("tensor allocation failed: %v", status)).
			Component("engine").
			Category(errors.CategoryEngine).
			Build()
	}

	h := newControlHandle(getLogger())
	h.interpreter = interpreter
	h.modelData = params.ModelData
	h.level.Store(int64(params.SuppressionLevel))
	h.start()

	getLogger().Info("execution handle created",
		slog.Int("suppression_level", params.SuppressionLevel),
		slog.Int("sample_rate", params.SampleRate))

	return h, nil
}
