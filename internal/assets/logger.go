package assets

import (
	"log/slog"
	"sync"

	"github.com/aural-labs/denoise-go/internal/logging"
)

var (
	serviceLogger *slog.Logger
	initOnce      sync.Once
)

// getLogger returns the assets package logger scoped to the assets service.
func getLogger() *slog.Logger {
	initOnce.Do(func() {
		serviceLogger = logging.ForService("assets")
	})
	return serviceLogger
}
