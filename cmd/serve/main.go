package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/helix-lab/signal-ml/internal/config"
	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/predictor"
	"github.com/helix-lab/signal-ml/internal/server"
)

func serveAction(ctx context.Context, cmd *cli.Command) error {
	log, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.DefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}

		cfg = *loaded
	}

	if cmd.IsSet("bundle") {
		cfg.Model.BundlePath = cmd.String("bundle")
	}

	if cmd.IsSet("listen") {
		cfg.Server.Listen = cmd.String("listen")
	}

	p := predictor.NewPredictor(predictor.Config{
		BundlePath: cfg.Model.BundlePath,
		MinBars:    cfg.Prediction.MinBars,
	}, log)

	srv := server.NewServer(cfg.Server.Listen, p, cfg.Model.BundlePath, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "serve",
		Usage: "Serve predictions over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the yaml configuration file",
			},
			&cli.StringFlag{
				Name:    "bundle",
				Aliases: []string{"b"},
				Usage:   "Path to the pipeline bundle",
			},
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "HTTP listen address",
			},
		},
		Action: serveAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
