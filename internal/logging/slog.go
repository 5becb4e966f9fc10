package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// SlogLogger adapts *slog.Logger to Logger. The binaries use it when the
// zap backend cannot be built.
type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// NewTextSlog writes logfmt-style lines to w. An unknown level is reported
// as an error and info is used.
func NewTextSlog(w io.Writer, level string) (*SlogLogger, error) {
	var lvl slog.Level
	err := lvl.UnmarshalText([]byte(strings.ToUpper(strings.TrimSpace(level))))
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return NewSlogLogger(slog.New(h)), err
}

// NewProductionLogger builds the zap JSON logger at level. If that fails
// the returned logger is a text SlogLogger on fallback, and the zap error is
// logged through it. The returned func flushes buffered entries.
func NewProductionLogger(level string, fallback io.Writer) (Logger, func()) {
	z, err := NewProductionZap(level)
	if err == nil {
		return z, func() { _ = z.Sync() }
	}

	s, _ := NewTextSlog(fallback, level)
	s.Warn(context.Background(), "zap logger unavailable, using text output", "error", err)
	return s, func() {}
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}
