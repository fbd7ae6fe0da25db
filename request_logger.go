package givehub

import (
	"context"
	"fmt"
	"log/slog"
)

// RequestLogger is the interface used by [Client] for logging HTTP requests,
// token refreshes and notification channel events. Implement this interface
// to integrate with your logging library and supply the implementation via
// [WithRequestLogger].
type RequestLogger interface {
	Errorf(format string, v ...any)
	Warnf(format string, v ...any)
	Debugf(format string, v ...any)
}

// NoopLogger is a [RequestLogger] that silently discards all log messages.
// It is the default logger used when no logger is provided to [New].
type NoopLogger struct{}

func (l *NoopLogger) Errorf(_ string, _ ...any) {}
func (l *NoopLogger) Warnf(_ string, _ ...any)  {}
func (l *NoopLogger) Debugf(_ string, _ ...any) {}

// SlogLogger adapts a [slog.Logger] to [RequestLogger].
type SlogLogger struct {
	Logger *slog.Logger
}

func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}

	return &SlogLogger{Logger: logger}
}

func (l *SlogLogger) Errorf(format string, v ...any) {
	l.log(slog.LevelError, format, v...)
}

func (l *SlogLogger) Warnf(format string, v ...any) {
	l.log(slog.LevelWarn, format, v...)
}

func (l *SlogLogger) Debugf(format string, v ...any) {
	l.log(slog.LevelDebug, format, v...)
}

func (l *SlogLogger) log(level slog.Level, format string, v ...any) {
	if !l.Logger.Enabled(context.Background(), level) {
		return
	}

	l.Logger.Log(context.Background(), level, fmt.Sprintf(format, v...), "component", "givehub")
}
