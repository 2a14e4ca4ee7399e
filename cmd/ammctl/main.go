package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ammctl",
		Short:        "Constant-product liquidity pool engine",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("state", "./data/state.json", "engine snapshot file")
	pf.String("journal", "./data/events.jsonl", "pool event journal (JSONL); empty disables it")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("rpc", "", "RPC URL; when set, deadlines are checked against the head block time")
	pf.String("pg-dsn", "", "Postgres DSN for mirroring pools and events")
	pf.String("metrics-file", "", "write Prometheus metrics to this textfile after each command")
	pf.Int("max-retries", 5, "maximum retry attempts for RPC calls and ledger conflicts")
	pf.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	pf.Duration("deadline-ttl", 5*time.Minute, "default expiration offset for trades without --expiration")

	root.AddCommand(
		newInitCmd(),
		newLockCmd(true),
		newLockCmd(false),
		newShowCmd(),
		newQuoteCmd(),
		newFundCmd(),
		newDepositCmd(),
		newWithdrawCmd(),
		newSwapCmd(),
		newReplayCmd(),
		newStatsCmd(),
	)
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
