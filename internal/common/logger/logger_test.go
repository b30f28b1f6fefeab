package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestZapAdapter_FieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core))

	log.WithFields(map[string]interface{}{"component": "test"}).
		Warn("write failed", map[string]interface{}{
			"record": "lead",
			"error":  errors.New("boom"),
		})

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "write failed", entries[0].Message)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "test", ctx["component"])
	assert.Equal(t, "lead", ctx["record"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestWithError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewZapAdapter(zap.New(core)).WithError(errors.New("upstream down"))

	log.Error("generation failed", nil)

	entries := logs.All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "upstream down", entries[0].ContextMap()["error"])
}

func TestNewStructured_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		NewStructured("debug", "json").Debug("hello", nil)
		NewStructured("info", "console").Info("hello", nil)
		NewNoOpLogger().Error("ignored", map[string]interface{}{"k": "v"})
	})
}
