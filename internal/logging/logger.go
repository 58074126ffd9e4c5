package logging

import (
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/crmarques/zpasync/faults"
)

type Options struct {
	Format string
	Level  string
	// Verbosity raises logr V-levels; 1 enables HTTP tracing, 2 state transitions.
	Verbosity int
	Writer    io.Writer
}

// New builds a zap-backed logr.Logger. The returned sync func flushes
// buffered entries.
func New(options Options) (logr.Logger, func(), error) {
	level, err := parseLevel(options.Level)
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	if options.Verbosity > 0 {
		// zap expresses logr V(n) as level -n.
		level = min(level, zapcore.Level(-options.Verbosity))
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(options.Format)) {
	case "", "console":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return logr.Discard(), func() {}, faults.NewTypedError(
			faults.ValidationError,
			"log format must be one of console, json",
			nil,
		).WithFields("log.format")
	}

	writer := options.Writer
	if writer == nil {
		writer = io.Discard
	}
	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), zap.NewAtomicLevelAt(level))
	zapLogger := zap.New(core)

	return zapr.NewLogger(zapLogger), func() { _ = zapLogger.Sync() }, nil
}

func parseLevel(value string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, faults.NewTypedError(
			faults.ValidationError,
			"log level must be one of debug, info, warn, error",
			nil,
		).WithFields("log.level")
	}
}
