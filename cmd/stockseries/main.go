package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/ahmethakanbesel/stockseries/internal/config"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
	"github.com/ahmethakanbesel/stockseries/internal/scraper/yahoo"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "stockseries",
		Usage: "Fetch historical stock quotes and merge them into date-keyed tables",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
				Value:   "stockseries.yaml",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log at debug level",
			},
		},
		Commands: []*cli.Command{
			historyCommand(),
			serveCommand(),
		},
	}
}

// setup loads the config named by the root flags and installs the default
// logger. Logs go to stderr so history output stays clean on stdout.
func setup(cmd *cli.Command) (config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return config.Config{}, err
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	return cfg, nil
}

func newRegistry(cfg config.Config) *scraper.Registry {
	opts := []yahoo.Option{yahoo.WithTimeout(cfg.Quote.Timeout)}
	if cfg.Quote.Endpoint != "" {
		opts = append(opts, yahoo.WithEndpoint(cfg.Quote.Endpoint))
	}

	registry := scraper.NewRegistry()
	registry.Register(yahoo.New(opts...))
	return registry
}

func fetcherFor(cfg config.Config) (scraper.Fetcher, error) {
	f, err := newRegistry(cfg).Get(cfg.Quote.Source)
	if err != nil {
		return nil, fmt.Errorf("quote source: %w", err)
	}
	return f, nil
}
