package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityPool/internal/config"
	"liquidityPool/internal/replay"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Apply a JSONL operation stream to the engine",
		RunE:  runReplay,
	}
	cmd.Flags().String("in", "", "input operations JSONL")
	cmd.Flags().Bool("continue-on-error", false, "log failed operations and keep going")
	cmd.Flags().Int("checkpoint-every", 1, "operations between snapshot checkpoints")
	return cmd
}

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReplay(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.StatePath == "" {
		return fmt.Errorf("state path is required for checkpointing")
	}

	return runWith(cmd, cfg.Config, true, func(ctx context.Context, rt *runtime) error {
		checkpoint := &replay.SnapshotCheckpointer{Store: rt.snapshot, Export: rt.exportState}
		runner := replay.NewRunner(replay.RunConfig{
			CheckpointEvery: cfg.CheckpointEvery,
			ContinueOnError: cfg.ContinueOnError,
			MaxRetries:      cfg.MaxRetries,
			RetryBackoff:    cfg.RetryBackoff,
		}, rt.engine, rt.ledger, checkpoint, rt.logger)

		rt.logger.Info("replay start",
			zap.String("input", cfg.Input),
			zap.String("state", cfg.StatePath),
			zap.Bool("continue_on_error", cfg.ContinueOnError),
			zap.Int("checkpoint_every", cfg.CheckpointEvery),
		)

		summary, err := runner.Run(ctx, cfg.Input)
		rt.replaySeq = summary.LastSeq
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summary)
	})
}
