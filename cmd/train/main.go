package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/helix-lab/signal-ml/internal/config"
	"github.com/helix-lab/signal-ml/internal/dataset"
	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/pipeline"
	"github.com/helix-lab/signal-ml/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(14)
	valueStyle = lipgloss.NewStyle().Bold(true)
)

// trainAction loads the dataset, runs the training pipeline, and prints the
// evaluation report.
func trainAction(ctx context.Context, cmd *cli.Command) error {
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

	// flags override the config file
	if cmd.IsSet("dataset") {
		cfg.Training.DatasetPath = cmd.String("dataset")
	}

	if cmd.IsSet("horizon") {
		cfg.Training.Horizon = int(cmd.Int("horizon"))
	}

	if cmd.IsSet("threshold") {
		cfg.Training.Threshold = cmd.Float("threshold")
	}

	if cmd.IsSet("test-fraction") {
		cfg.Training.TestFraction = cmd.Float("test-fraction")
	}

	if cmd.IsSet("bundle") {
		cfg.Model.BundlePath = cmd.String("bundle")
	}

	if cfg.Training.DatasetPath == "" {
		return fmt.Errorf("no dataset provided: set --dataset or training.dataset_path in the config")
	}

	bars, err := dataset.LoadBars(cfg.Training.DatasetPath, log)
	if err != nil {
		return err
	}

	trainingConfig := pipeline.TrainingConfig{
		Horizon:      cfg.Training.Horizon,
		Threshold:    cfg.Training.Threshold,
		TestFraction: cfg.Training.TestFraction,
		MinSamples:   cfg.Training.MinSamples,
		Seed:         cfg.Training.Seed,
		BundlePath:   cfg.Model.BundlePath,
		ShowProgress: !cmd.Bool("quiet"),
	}

	trainer, err := pipeline.NewTrainer(trainingConfig, log)
	if err != nil {
		return err
	}

	report, err := trainer.Train(ctx, bars)
	if err != nil {
		return err
	}

	log.Info("Training completed",
		zap.String("run_id", report.RunID),
		zap.String("bundle", report.BundlePath),
	)

	printReport(report)

	return nil
}

func printReport(report *types.TrainingReport) {
	fmt.Println(titleStyle.Render("Training report"))

	rows := []struct {
		label string
		value string
	}{
		{"Run ID", report.RunID},
		{"Accuracy", fmt.Sprintf("%.4f", report.Accuracy)},
		{"Precision", fmt.Sprintf("%.4f", report.Precision)},
		{"Recall", fmt.Sprintf("%.4f", report.Recall)},
		{"F1", fmt.Sprintf("%.4f", report.F1)},
		{"Train samples", fmt.Sprintf("%d", report.TrainSamples)},
		{"Test samples", fmt.Sprintf("%d", report.TestSamples)},
		{"Features", fmt.Sprintf("%d", report.FeatureCount)},
		{"Bundle", report.BundlePath},
	}

	for _, row := range rows {
		fmt.Println(labelStyle.Render(row.label) + " " + valueStyle.Render(row.value))
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "train",
		Usage: "Train the signal confidence model and persist the pipeline bundle",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the yaml configuration file",
			},
			&cli.StringFlag{
				Name:    "dataset",
				Aliases: []string{"d"},
				Usage:   "Path to the bars dataset (.csv, .parquet, or .duckdb)",
			},
			&cli.IntFlag{
				Name:  "horizon",
				Usage: "Bars ahead for the forward-return label",
			},
			&cli.FloatFlag{
				Name:  "threshold",
				Usage: "Minimum forward return labeled as profitable",
			},
			&cli.FloatFlag{
				Name:  "test-fraction",
				Usage: "Chronological fraction of valid rows held out for evaluation",
			},
			&cli.StringFlag{
				Name:    "bundle",
				Aliases: []string{"b"},
				Usage:   "Output path for the pipeline bundle",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Disable the epoch progress bar",
			},
		},
		Action: trainAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
