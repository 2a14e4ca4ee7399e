package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"liquidityPool/internal/model"
	"liquidityPool/internal/retry"
	"liquidityPool/internal/storage"
)

// RunConfig holds runtime settings for a replay.
type RunConfig struct {
	// CheckpointEvery is the number of processed operations between checkpoints.
	CheckpointEvery int
	ContinueOnError bool
	MaxRetries      int
	RetryBackoff    time.Duration
}

// Summary counts what a run did.
type Summary struct {
	Applied int
	Skipped int
	Failed  int
	LastSeq uint64
}

// Runner applies a JSONL operation stream to the engine.
type Runner struct {
	cfg        RunConfig
	engine     Engine
	funder     Funder
	checkpoint Checkpointer
	logger     *zap.Logger
}

// NewRunner builds a Runner with its dependencies. checkpoint may be nil.
func NewRunner(cfg RunConfig, engine Engine, funder Funder, checkpoint Checkpointer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CheckpointEvery <= 0 {
		cfg.CheckpointEvery = 1
	}
	return &Runner{
		cfg:        cfg,
		engine:     engine,
		funder:     funder,
		checkpoint: checkpoint,
		logger:     logger,
	}
}

// Run replays the operations in inputPath. Operations at or below the
// checkpoint are skipped; sequence numbers must increase strictly.
func (r *Runner) Run(ctx context.Context, inputPath string) (Summary, error) {
	if r.engine == nil {
		return Summary{}, fmt.Errorf("engine is nil")
	}

	var summary Summary
	var resumeFrom uint64
	var hasCheckpoint bool
	if r.checkpoint != nil {
		last, ok, err := r.checkpoint.Load(ctx)
		if err != nil {
			return Summary{}, fmt.Errorf("load checkpoint: %w", err)
		}
		if ok {
			resumeFrom, hasCheckpoint = last, true
			summary.LastSeq = last
			r.logger.Info("resume from checkpoint", zap.Uint64("last_applied", last))
		}
	}

	var prevSeq uint64
	var seen bool
	pending := 0

	err := storage.ScanJSONL(ctx, inputPath, func(lineNo int, line []byte) error {
		var op model.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			if r.cfg.ContinueOnError {
				summary.Failed++
				r.logger.Warn("decode operation", zap.Error(err), zap.Int("line", lineNo))
				return nil
			}
			return fmt.Errorf("decode operation at line %d: %w", lineNo, err)
		}

		if seen && op.Seq <= prevSeq {
			return fmt.Errorf("operation seq %d at line %d does not follow %d", op.Seq, lineNo, prevSeq)
		}
		prevSeq, seen = op.Seq, true

		if hasCheckpoint && op.Seq <= resumeFrom {
			summary.Skipped++
			return nil
		}

		if err := r.applyWithRetry(ctx, op); err != nil {
			if !r.cfg.ContinueOnError {
				return fmt.Errorf("apply operation %d (%s): %w", op.Seq, op.Kind, err)
			}
			summary.Failed++
			r.logger.Warn("operation failed",
				zap.Uint64("seq", op.Seq),
				zap.String("kind", string(op.Kind)),
				zap.String("category", string(model.CategoryOf(err))),
				zap.Error(err),
			)
		} else {
			summary.Applied++
		}

		summary.LastSeq = op.Seq
		pending++
		if pending >= r.cfg.CheckpointEvery {
			if err := r.saveCheckpoint(ctx, summary.LastSeq); err != nil {
				return err
			}
			pending = 0
		}
		return nil
	})

	if pending > 0 {
		if saveErr := r.saveCheckpoint(context.WithoutCancel(ctx), summary.LastSeq); saveErr != nil {
			err = errors.Join(err, saveErr)
		}
	}

	r.logger.Info("replay complete",
		zap.Int("applied", summary.Applied),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Uint64("last_seq", summary.LastSeq),
	)
	return summary, err
}

// applyWithRetry retries only ledger conflicts; every other failure is final.
func (r *Runner) applyWithRetry(ctx context.Context, op model.Operation) error {
	policy := retry.Policy{
		MaxRetries: r.cfg.MaxRetries,
		BaseDelay:  r.cfg.RetryBackoff,
		Retryable:  func(err error) bool { return errors.Is(err, model.ErrConflict) },
	}
	return retry.Do(ctx, policy, func(ctx context.Context) error {
		err := Apply(ctx, r.engine, r.funder, op)
		if errors.Is(err, model.ErrConflict) {
			r.logger.Warn("ledger conflict, retrying", zap.Uint64("seq", op.Seq), zap.Error(err))
		}
		return err
	})
}

func (r *Runner) saveCheckpoint(ctx context.Context, seq uint64) error {
	if r.checkpoint == nil {
		return nil
	}
	if err := r.checkpoint.Save(ctx, seq); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}
