package engine

import (
	"log/slog"
	"sync"

	"github.com/aural-labs/denoise-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

// getLogger returns the engine package logger scoped to the engine service.
func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("engine")
	})
	return serviceLogger
}
