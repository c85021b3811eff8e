package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/stockseries/internal/server"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve series and report tables over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port, overrides the config file",
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if v := cmd.String("port"); v != "" {
		cfg.Port = v
	}

	registry := newRegistry(cfg)
	if _, err := registry.Get(cfg.Quote.Source); err != nil {
		return err
	}

	// Cancelled on SIGINT/SIGTERM. Request contexts derive from it, so
	// in-flight provider calls stop as soon as shutdown begins.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx, cfg.Port, registry, cfg.Quote.Source)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	slog.Info("server started", "port", cfg.Port, "source", cfg.Quote.Source)
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
