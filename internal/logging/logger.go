package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	sentryslog "github.com/getsentry/sentry-go/slog"
	"github.com/lmittmann/tint"
)

type Options struct {
	Level  slog.Level
	Format string
	Output io.Writer
	// Sentry forwards warnings as Sentry logs and errors as Sentry events,
	// with customer attributes redacted.
	Sentry bool
}

// New builds the process logger: tint for text output, JSON otherwise.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: opts.Level})
	default:
		handler = tint.NewHandler(out, &tint.Options{Level: opts.Level})
	}

	if opts.Sentry {
		sentryHandler := sentryslog.Option{
			EventLevel: []slog.Level{slog.LevelError},
			LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
		}.NewSentryHandler(context.Background())
		handler = Tee(handler, Redact(sentryHandler))
	}

	return slog.New(handler)
}
