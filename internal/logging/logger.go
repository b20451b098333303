package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// LogLevelEnvVar is the environment variable that controls logging verbosity.
// When unset or empty, logging is silent (no zap output).
// Valid values: "debug", "info", "warn", "error"
const LogLevelEnvVar = "GIFTGRID_LOG_LEVEL"

// Initialize creates a new logger with the specified level.
// If level is empty, it checks GIFTGRID_LOG_LEVEL environment variable.
// If neither is set, logging is disabled (silent mode).
func Initialize(lvl string) error {
	// If no level provided, check environment variable
	if lvl == "" {
		lvl = os.Getenv(LogLevelEnvVar)
	}

	// If still no level, use silent mode (nop logger)
	if lvl == "" {
		logger = zap.NewNop()
		return nil
	}

	level.SetLevel(parseLevel(lvl))

	config := zap.Config{
		Level:            level,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	// Customize encoder for better readability
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// SetLevel changes the level of an initialized logger at runtime.
// It has no effect in silent mode.
func SetLevel(lvl string) {
	level.SetLevel(parseLevel(lvl))
}

// Level returns the current level name
func Level() string {
	return level.Level().String()
}

func parseLevel(lvl string) zapcore.Level {
	switch lvl {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		// Unknown level - use info as default when explicitly set to something
		return zapcore.InfoLevel
	}
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if logger == nil {
		// Fallback to silent logger if not initialized
		logger = zap.NewNop()
	}
	return logger
}

// Info logs an info message
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

// Debug logs a debug message
func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

// Warn logs a warning message
func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

// Error logs an error message
func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

// Fatal logs a fatal message and exits
func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

// LogConnection logs a websocket subscriber event
func LogConnection(remoteAddr string, event string) {
	Info("Connection event",
		zap.String("remote_addr", remoteAddr),
		zap.String("event", event),
	)
}

// LogHTTPRequest logs a served HTTP request
func LogHTTPRequest(remoteAddr, method, path string, status int, elapsed time.Duration) {
	Info("HTTP request",
		zap.String("remote_addr", remoteAddr),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	)
}

// LogProxyRequest logs a request forwarded to an upstream host
func LogProxyRequest(upstream, method, target string, status int, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("upstream", upstream),
		zap.String("method", method),
		zap.String("target", target),
		zap.Int("status", status),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		Warn("Upstream request failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("Upstream request", fields...)
}

// LogGridChange logs an installed grid snapshot
func LogGridChange(kind string, rows int, filled int) {
	Debug("Grid changed",
		zap.String("change", kind),
		zap.Int("rows", rows),
		zap.Int("filled", filled),
	)
}

// LogResolverFetch logs a catalog lookup made on behalf of the resolver
func LogResolverFetch(key string, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("key", key),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		Warn("Catalog lookup failed", append(fields, zap.Error(err))...)
		return
	}
	Debug("Catalog lookup", fields...)
}

// Sync flushes any buffered log entries
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
