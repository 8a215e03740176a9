package internal

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	stdout io.Writer

	// watcher blocks while republishing on journal changes.
	watcher func(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, fn func() error) error
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithStdout sets where user-facing status lines are printed.
func WithStdout(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}
