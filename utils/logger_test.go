package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_WritesStructuredEntries(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := WrapLogger(zap.New(core))

	l.Info("analysis started", map[string]interface{}{"file": "cv.pdf"})
	l.Warn("slow link")
	l.Error("analysis failed", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "analysis started", entries[0].Message)
	assert.Equal(t, map[string]interface{}{"file": "cv.pdf"}, entries[0].ContextMap()["data"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestLogger_ErrorWithNilError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := WrapLogger(zap.New(core))

	l.Error("no cause", nil)

	require.Equal(t, 1, logs.Len())
	_, hasErr := logs.All()[0].ContextMap()["error"]
	assert.False(t, hasErr)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}
