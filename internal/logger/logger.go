package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger writes JSON lines tagged with the service name, hostname and the
// action being performed.
type Logger struct {
	service  string
	hostname string
	handler  *slog.Logger
}

func New(service, level string) *Logger {
	return NewWithWriter(service, level, os.Stdout)
}

func NewWithWriter(service, level string, w io.Writer) *Logger {
	hostname, _ := os.Hostname()
	h := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)}))
	return &Logger{service: service, hostname: hostname, handler: h}
}

// Discard is a logger for tests.
func Discard() *Logger {
	return NewWithWriter("test", "error", io.Discard)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) log(level slog.Level, action, msg string, attrs ...slog.Attr) {
	base := []slog.Attr{
		slog.String("service", l.service),
		slog.String("hostname", l.hostname),
		slog.String("action", action),
	}
	l.handler.LogAttrs(context.Background(), level, msg, append(base, attrs...)...)
}

func (l *Logger) Debug(action, msg string, attrs ...slog.Attr) {
	l.log(slog.LevelDebug, action, msg, attrs...)
}

func (l *Logger) Info(action, msg string, attrs ...slog.Attr) {
	l.log(slog.LevelInfo, action, msg, attrs...)
}

func (l *Logger) Warn(action, msg string, attrs ...slog.Attr) {
	l.log(slog.LevelWarn, action, msg, attrs...)
}

func (l *Logger) Error(action, msg string, err error, attrs ...slog.Attr) {
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.log(slog.LevelError, action, msg, attrs...)
}
