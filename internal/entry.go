// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/mindbox/internal/apperr"
	"github.com/starford/mindbox/internal/grouper"
	"github.com/starford/mindbox/internal/parser"
	"github.com/starford/mindbox/internal/publish"
	"github.com/starford/mindbox/internal/storage"
	"github.com/starford/mindbox/internal/watch"
)

// Run publishes the configured journal with the given options. In watch
// mode it keeps republishing on every journal change until ctx is cancelled
// or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{stdout: os.Stdout, watcher: watch.Watch}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured logs go to stderr; stdout carries the status line.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("output_dir", cfg.Output.Dir),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := app.publish(logger); err != nil {
		return err
	}

	if !cfg.Watch.Enabled {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := app.watcher(gCtx, cfg.Journal.Path, cfg.Watch.Debounce, logger, func() error {
			return app.publish(logger)
		})
		// The watcher may stop on its own; release the signal goroutine too.
		cancel()
		return err
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			cancel()
		case <-gCtx.Done():
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Watch error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watch stopped")
	return nil
}

// publish runs the whole pipeline once: read, parse, group, sync.
func (a *application) publish(logger *slog.Logger) error {
	cfg := a.config

	data, err := os.ReadFile(cfg.Journal.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", apperr.ErrJournalNotFound, cfg.Journal.Path)
		}
		return fmt.Errorf("read journal: %w", err)
	}

	entries := parser.ParseBytes(data)
	groups := grouper.Group(slices.Values(entries))

	if len(groups) == 0 {
		logger.Info("No tagged entries", slog.Int("entries", len(entries)))
		fmt.Fprintln(a.stdout, "No mindbox entries found.")
		return nil
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Output.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	res, err := publish.Sync(store, groups, filepath.Base(cfg.Journal.Path), logger)
	if err != nil {
		return fmt.Errorf("sync mindboxes: %w", err)
	}

	logger.Info("Mindboxes synced",
		slog.String("output_root", store.Root()),
		slog.Int("entries", len(entries)),
		slog.Int("written", len(res.Written)),
		slog.Int("unchanged", len(res.Unchanged)),
		slog.Int("removed", len(res.Removed)))

	fmt.Fprintf(a.stdout, "Wrote %d mindbox file(s) to %s\n", res.Total(), cfg.Output.Dir)
	return nil
}
