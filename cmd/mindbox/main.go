package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/mindbox/internal"
	pkgconfig "github.com/starford/mindbox/pkg/config"
)

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

// loadConfig layers defaults, the config file and command-line overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	if cmd.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one journal path, got %d arguments", cmd.NArg())
	}

	configPath := cmd.String("config")
	cfg := internal.NewDefaultConfig()

	if cmd.IsSet("config") {
		if err := pkgconfig.Load(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if _, err := pkgconfig.LoadIfExists(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cmd.NArg() == 1 {
		cfg.Journal.Path = cmd.Args().First()
	}
	if cmd.IsSet("output") {
		cfg.Output.Dir = cmd.String("output")
	}
	if cmd.IsSet("watch") {
		cfg.Watch.Enabled = cmd.Bool("watch")
	}
	if cmd.IsSet("debounce") {
		cfg.Watch.Debounce = cmd.Duration("debounce")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "mindbox",
		Usage:     "Publish mindbox-tagged journal entries into one file per topic",
		ArgsUsage: "[journal.txt]",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "mindbox.yaml",
				Value:       "mindbox.yaml",
				Sources:     cli.EnvVars("MINDBOX_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Directory for generated .mb files",
				Value:   "mindboxes",
				Sources: cli.EnvVars("MINDBOX_OUTPUT"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Regenerate whenever the journal changes",
			},
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period before regenerating in watch mode",
				Value: 200 * time.Millisecond,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
