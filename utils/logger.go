package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents different log levels
type LogLevel string

const (
	INFO  LogLevel = "INFO"
	WARN  LogLevel = "WARN"
	ERROR LogLevel = "ERROR"
	DEBUG LogLevel = "DEBUG"
)

// Logger provides structured logging on top of zap
type Logger struct {
	logger *zap.Logger
}

// NewLogger creates a production JSON logger at the given level
// ("debug", "info", "warn", "error"; anything else means info).
func NewLogger(level string) *Logger {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := config.Build()
	if err != nil {
		zl = zap.NewNop()
	}
	return &Logger{logger: zl}
}

// WrapLogger adapts an existing zap logger.
func WrapLogger(zl *zap.Logger) *Logger {
	if zl == nil {
		zl = zap.NewNop()
	}
	return &Logger{logger: zl}
}

func parseLevel(level string) zapcore.Level {
	switch LogLevel(strings.ToUpper(level)) {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Zap returns the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.logger
}

// Info logs an info message
func (l *Logger) Info(message string, data ...interface{}) {
	l.logger.Info(message, dataField(data)...)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, data ...interface{}) {
	l.logger.Warn(message, dataField(data)...)
}

// Error logs an error message
func (l *Logger) Error(message string, err error, data ...interface{}) {
	fields := dataField(data)
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.logger.Error(message, fields...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.logger.Sync()
}

func dataField(data []interface{}) []zap.Field {
	if len(data) == 0 || data[0] == nil {
		return nil
	}
	return []zap.Field{zap.Any("data", data[0])}
}
