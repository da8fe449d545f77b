package logger

import (
	"io"
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceLevel sits below zap's debug level and is enabled at verbosity 2.
const TraceLevel = zapcore.DebugLevel - 1

// Fields maps field names to values attached to a log entry.
type Fields map[string]interface{}

// Logger defines the interface for all logging operations.
type Logger interface {
	// Debug logs at debug level, shown when verbosity >= 1
	Debug(msg string)

	Info(msg string)
	Warn(msg string)
	Error(msg string)

	// Trace logs per-entry traversal decisions, shown when verbosity >= 2
	Trace(msg string)

	// WithFields returns a child Logger carrying fields. The receiver is unchanged.
	WithFields(fields Fields) Logger
}

// Config holds the configuration for creating a new logger instance.
type Config struct {
	// Verbosity selects the lowest level written:
	// 0: info, 1: debug, 2: trace
	Verbosity int

	// Output receives log lines, os.Stderr when nil
	Output io.Writer

	// Console switches from JSON lines to zap's human readable encoder
	Console bool
}

type logger struct {
	zap *zap.Logger
}

// NewLogger creates a new Logger instance with the given configuration.
//
//	log := logger.NewLogger(logger.Config{Verbosity: 1})
//	log.WithFields(logger.Fields{"root": "/srv/data"}).Info("Search started")
func NewLogger(config Config) Logger {
	if config.Output == nil {
		config.Output = os.Stderr
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    encodeLevel,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig)
	if config.Console {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(config.Output),
		levelFor(config.Verbosity),
	)

	return &logger{zap: zap.New(core)}
}

// NewNop returns a Logger that discards everything. Library code falls back to
// it when the caller does not supply a logger.
func NewNop() Logger {
	return &logger{zap: zap.NewNop()}
}

func levelFor(verbosity int) zapcore.Level {
	switch {
	case verbosity >= 2:
		return TraceLevel
	case verbosity == 1:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func encodeLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if l == TraceLevel {
		enc.AppendString("trace")
		return
	}
	zapcore.LowercaseLevelEncoder(l, enc)
}

func (l *logger) Debug(msg string) { l.zap.Debug(msg) }
func (l *logger) Info(msg string)  { l.zap.Info(msg) }
func (l *logger) Warn(msg string)  { l.zap.Warn(msg) }
func (l *logger) Error(msg string) { l.zap.Error(msg) }
func (l *logger) Trace(msg string) { l.zap.Log(TraceLevel, msg) }

// WithFields adds fields in key order so repeated runs produce identical lines.
func (l *logger) WithFields(fields Fields) Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zapFields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		zapFields = append(zapFields, zap.Any(k, fields[k]))
	}

	return &logger{zap: l.zap.With(zapFields...)}
}
