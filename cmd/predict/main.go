package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/helix-lab/signal-ml/internal/config"
	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/predictor"
	"github.com/helix-lab/signal-ml/internal/types"
)

// emit writes the single JSON result object. Stdout carries nothing else;
// operational logs go to stderr.
func emit(result types.PredictionResult) {
	encoder := json.NewEncoder(os.Stdout)
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
	}
}

func predictAction(_ context.Context, cmd *cli.Command) error {
	log, err := logger.NewStderrLogger()
	if err != nil {
		emit(types.NeutralPrediction("failed to create logger: " + err.Error()))
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg := config.DefaultConfig()

	if configPath := cmd.String("config"); configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			emit(types.NeutralPrediction(err.Error()))
			os.Exit(1)
		}

		cfg = *loaded
	}

	if cmd.IsSet("bundle") {
		cfg.Model.BundlePath = cmd.String("bundle")
	}

	if cmd.Args().Len() < 1 {
		emit(types.NeutralPrediction("no bars data provided"))
		os.Exit(1)
	}

	var bars []types.Bar
	if err := json.Unmarshal([]byte(cmd.Args().First()), &bars); err != nil {
		emit(types.NeutralPrediction("invalid bars JSON: " + err.Error()))
		os.Exit(1)
	}

	p := predictor.NewPredictor(predictor.Config{
		BundlePath: cfg.Model.BundlePath,
		MinBars:    cfg.Prediction.MinBars,
	}, log)

	emit(p.Predict(bars))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "predict",
		Usage:     "Score a JSON array of bars against the trained pipeline bundle",
		ArgsUsage: "'<json bars array>'",
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
		},
		Action: predictAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
