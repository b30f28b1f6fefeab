// internal/common/logger/logger.go
package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

// Logger is the structured logging contract shared by the chat pipeline,
// the HTTP layer and the notification relay.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger
}

// New builds a zap logger. format "json" selects the production encoder,
// anything else the human readable console encoder.
func New(levelStr, format string) *zap.Logger {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(levelStr))

	l, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func parseLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type zapLogger struct {
	l *zap.Logger
}

func (z *zapLogger) Debug(msg string, fields map[string]interface{}) {
	z.l.Debug(msg, toZapFields(fields)...)
}

func (z *zapLogger) Info(msg string, fields map[string]interface{}) {
	z.l.Info(msg, toZapFields(fields)...)
}

func (z *zapLogger) Warn(msg string, fields map[string]interface{}) {
	z.l.Warn(msg, toZapFields(fields)...)
}

func (z *zapLogger) Error(msg string, fields map[string]interface{}) {
	z.l.Error(msg, toZapFields(fields)...)
}

func (z *zapLogger) WithFields(fields map[string]interface{}) Logger {
	return &zapLogger{l: z.l.With(toZapFields(fields)...)}
}

func (z *zapLogger) WithError(err error) Logger {
	return &zapLogger{l: z.l.With(zap.Error(err))}
}

func toZapFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		if err, ok := v.(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, v))
	}
	return out
}

// NewStructured returns a Logger backed by a freshly built zap logger.
func NewStructured(levelStr, format string) Logger {
	return &zapLogger{l: New(levelStr, format)}
}

// NewZapAdapter wraps an existing zap logger.
func NewZapAdapter(l *zap.Logger) Logger {
	return &zapLogger{l: l}
}

// NewTestLogger routes output through t.Log.
func NewTestLogger(t testing.TB) Logger {
	return &zapLogger{l: zaptest.NewLogger(t)}
}

func NewNoOpLogger() Logger {
	return &zapLogger{l: zap.NewNop()}
}
