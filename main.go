// Command replaydqn trains deep Q-networks with experience replay on
// discrete-action environments.
//
// Usage:
//
//	replaydqn train <hparams.json> [--env LunarLander-v2] [--runs-dir ../runs]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/samuelfneumann/replaydqn/config"
	"github.com/samuelfneumann/replaydqn/environment"
	_ "github.com/samuelfneumann/replaydqn/environment/cartpole"
	"github.com/samuelfneumann/replaydqn/environment/lunarlander"
	"github.com/samuelfneumann/replaydqn/experiment"
	"github.com/samuelfneumann/replaydqn/experiment/plot"
	"github.com/samuelfneumann/replaydqn/experiment/tracker"
)

const (
	runsDirEnv     = "REPLAYDQN_RUNS_DIR"
	defaultRunsDir = "../runs"
)

var (
	runsDir  string
	envName  string
	logLevel string
)

func main() {
	for _, envFile := range []string{".env", "../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd := &cobra.Command{
		Use:   "replaydqn",
		Short: "Deep Q-learning with (prioritized) experience replay",
	}

	trainCmd := &cobra.Command{
		Use:   "train <hparams.json>",
		Short: "Train a Q-network with the given hyperparameters",
		Args:  cobra.ExactArgs(1),
		RunE:  train,
	}

	defaultDir := defaultRunsDir
	if dir, ok := os.LookupEnv(runsDirEnv); ok && dir != "" {
		defaultDir = dir
	}
	trainCmd.Flags().StringVar(&runsDir, "runs-dir", defaultDir,
		"Directory holding one output directory per run (env "+runsDirEnv+")")
	trainCmd.Flags().StringVar(&envName, "env", lunarlander.Name,
		fmt.Sprintf("Environment to train on %v", environment.Names()))
	trainCmd.Flags().StringVar(&logLevel, "log-level", "info",
		"Log level (debug, info, warn, error)")

	rootCmd.AddCommand(trainCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(runID string) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %v",
			logLevel, err)
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(out).Level(level).With().Timestamp().
		Str("run_id", runID).Logger(), nil
}

func train(cmd *cobra.Command, args []string) error {
	hparamsPath := args[0]

	logger, err := newLogger(uuid.New().String())
	if err != nil {
		return err
	}

	h, err := config.Load(hparamsPath)
	if err != nil {
		return fmt.Errorf("failed to load hyperparameters: %v", err)
	}

	runPath := filepath.Join(runsDir, h.RunName)
	if err := config.Archive(hparamsPath, runPath); err != nil {
		return fmt.Errorf("failed to create run directory: %v", err)
	}
	logger.Info().Str("path", runPath).Msg("run directory ready")

	e, err := environment.Make(envName)
	if err != nil {
		return fmt.Errorf("failed to create environment: %v", err)
	}
	if closer, ok := e.(environment.Closer); ok {
		defer closer.Close()
	}

	train := tracker.NewReturn(filepath.Join(runPath, "returns.bin"))
	eval := tracker.NewReturn(filepath.Join(runPath, "eval_returns.bin"))

	trainer, err := experiment.NewTrainer(h, e, train, eval, logger,
		os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create trainer: %v", err)
	}
	trainer.Register(experiment.NewLogReporter(logger))
	trainer.Register(experiment.NewSaveReporter(train, eval))
	trainer.Register(plot.NewReporter(filepath.Join(runPath, "rewards.png"),
		train, eval, h.PlotInterval))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	if err := trainer.Run(ctx); err != nil {
		return fmt.Errorf("training failed: %v", err)
	}
	return nil
}
