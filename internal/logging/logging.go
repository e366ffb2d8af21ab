// Package logging configures the process-wide structured loggers.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aural-labs/denoise-go/internal/conf"
)

var structuredLogger *slog.Logger
var humanReadableLogger *slog.Logger

// fileWriter is the rotating log file sink Init attaches when file logging
// is enabled in the configuration.
var fileWriter *lumberjack.Logger

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

// Custom level names beyond the slog defaults.
var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceLevelAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		level := a.Value.Any().(slog.Level)
		label, exists := levelNames[level]
		if !exists {
			label = level.String()
		}
		a.Value = slog.StringValue(label)
	}
	return a
}

func newHandlers(structuredOut, humanOut io.Writer, structuredLevel, humanLevel slog.Level) {
	structuredLogger = slog.New(slog.NewJSONHandler(structuredOut, &slog.HandlerOptions{
		Level:       structuredLevel,
		ReplaceAttr: replaceLevelAttr,
	}))
	humanReadableLogger = slog.New(slog.NewTextHandler(humanOut, &slog.HandlerOptions{
		Level:       humanLevel,
		ReplaceAttr: replaceLevelAttr,
	}))
	slog.SetDefault(structuredLogger)
}

// Init initializes the logging system with structured (JSON, stdout) and
// human-readable (text, stderr) loggers. When file logging is enabled in
// the configuration, structured records are additionally written to the
// configured rotating log file; call Close to release it.
func Init() {
	initFromConfig(conf.Setting().Main.Log)
}

func initFromConfig(logConf conf.LogConfig) {
	structuredOut := io.Writer(os.Stdout)
	if logConf.Enabled && logConf.Path != "" {
		writer, err := newRotatingWriter(logConf.Path, logConf)
		if err != nil {
			slog.Warn("failed to open log file, logging to stdout only",
				"path", logConf.Path, "error", err)
		} else {
			fileWriter = writer
			structuredOut = io.MultiWriter(os.Stdout, writer)
		}
	}
	newHandlers(structuredOut, os.Stderr, slog.LevelDebug, slog.LevelInfo)
}

// Close releases the rotating log file writer if Init opened one.
func Close() error {
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// SetLevel sets the minimum logging level for both loggers.
func SetLevel(level slog.Level) {
	newHandlers(os.Stdout, os.Stderr, level, level)
}

// SetOutput redirects logger output, e.g. for tests. Levels are reset to
// the Init defaults.
func SetOutput(structuredOutput, humanReadableOutput io.Writer) {
	newHandlers(structuredOutput, humanReadableOutput, slog.LevelDebug, slog.LevelInfo)
}

// Structured returns the globally configured structured (JSON) logger.
// Returns nil if Init() has not been called.
func Structured() *slog.Logger {
	return structuredLogger
}

// HumanReadable returns the globally configured human-readable logger.
// Returns nil if Init() has not been called.
func HumanReadable() *slog.Logger {
	return humanReadableLogger
}

// ForService creates a new logger instance with the 'service' attribute
// added. It uses the global structured logger as the base and falls back to
// slog.Default when Init() has not been called, so package-level loggers
// are always usable.
func ForService(serviceName string) *slog.Logger {
	if structuredLogger == nil {
		return slog.Default().With("service", serviceName)
	}
	return structuredLogger.With("service", serviceName)
}

// --- Convenience functions using the default logger ---

// Debug logs a debug message using the default slog logger.
func Debug(msg string, args ...any) {
	slog.Debug(msg, args...)
}

// Info logs an info message using the default slog logger.
func Info(msg string, args ...any) {
	slog.Info(msg, args...)
}

// Warn logs a warning message using the default slog logger.
func Warn(msg string, args ...any) {
	slog.Warn(msg, args...)
}

// Error logs an error message using the default slog logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal logs a fatal message using the custom Fatal level and then exits.
func Fatal(msg string, args ...any) {
	slog.Log(context.TODO(), LevelFatal, msg, args...)
	os.Exit(1)
}

// Trace logs a trace message using the custom Trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.TODO(), LevelTrace, msg, args...)
}

// newRotatingWriter builds a lumberjack writer for filePath with rotation
// parameters taken from logConf, creating the log directory if needed.
func newRotatingWriter(filePath string, logConf conf.LogConfig) (*lumberjack.Logger, error) {
	logDir := filepath.Dir(filePath)
	if logDir != "." {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
		}
	}

	logWriter := &lumberjack.Logger{
		Filename: filePath,
		Compress: false,
	}

	maxSizeMB := 100
	maxBackups := 3
	maxAge := 28 // days

	if configMaxSizeMB := int(logConf.MaxSize / (1024 * 1024)); configMaxSizeMB > 0 {
		maxSizeMB = configMaxSizeMB
	}

	switch logConf.Rotation {
	case conf.RotationDaily:
		maxAge = 1
		maxBackups = 30
	case conf.RotationWeekly:
		maxAge = 7
		maxBackups = 4
	case conf.RotationSize:
		// size-based defaults already applied above
	default:
		slog.Warn("Unknown log rotation type in config, using size-based defaults",
			"configuredType", logConf.Rotation)
	}

	logWriter.MaxSize = maxSizeMB
	logWriter.MaxBackups = maxBackups
	logWriter.MaxAge = maxAge

	return logWriter, nil
}

// NewFileLogger creates a slog.Logger writing JSON logs to filePath through
// lumberjack rotation, with a 'service' attribute on every record. Rotation
// parameters come from the global log configuration. It returns the logger,
// a close function for the underlying writer, and an error if setup fails.
func NewFileLogger(filePath, serviceName string, level slog.Level) (*slog.Logger, func() error, error) {
	logWriter, err := newRotatingWriter(filePath, conf.Setting().Main.Log)
	if err != nil {
		return nil, nil, err
	}

	fileHandler := slog.NewJSONHandler(logWriter, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevelAttr,
	})

	logger := slog.New(fileHandler).With("service", serviceName)

	closeFunc := func() error {
		return logWriter.Close()
	}

	return logger, closeFunc, nil
}
