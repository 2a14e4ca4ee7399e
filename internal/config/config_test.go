package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestLoadLayersFlagsOverEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "ammctl.yaml")
	content := "journal: /from/file.jsonl\nlog-level: warn\nmax-retries: 9\n"
	if err := os.WriteFile(cfgFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AMM_PG_DSN", "postgres://env")
	t.Setenv("AMM_LOG_LEVEL", "error")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("state", "", "")
	if err := flags.Parse([]string{"--log-level=debug"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(cfgFile, flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("flag should win, got %q", cfg.LogLevel)
	}
	if cfg.PGDSN != "postgres://env" {
		t.Fatalf("env not applied: %q", cfg.PGDSN)
	}
	if cfg.Journal != "/from/file.jsonl" || cfg.MaxRetries != 9 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.DeadlineTTL != 5*time.Minute {
		t.Fatalf("unexpected default ttl %s", cfg.DeadlineTTL)
	}
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadReplayDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("in", "", "")
	flags.Bool("continue-on-error", false, "")
	if err := flags.Parse([]string{"--in=ops.jsonl", "--continue-on-error"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadReplay("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Input != "ops.jsonl" || !cfg.ContinueOnError || cfg.CheckpointEvery != 1 {
		t.Fatalf("unexpected replay config: %+v", cfg)
	}
	if cfg.StatePath != "./data/state.json" {
		t.Fatalf("unexpected state path %q", cfg.StatePath)
	}
}

func TestLoadStatsFallsBackToJournal(t *testing.T) {
	t.Setenv("AMM_JOURNAL", "/tmp/journal.jsonl")
	cfg, err := LoadStats("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Input != "/tmp/journal.jsonl" {
		t.Fatalf("unexpected input %q", cfg.Input)
	}
	secs, err := cfg.WindowSeconds()
	if err != nil || secs != 300 {
		t.Fatalf("window seconds: %d, %v", secs, err)
	}
}

func TestWindowSecondsRejectsSubSecond(t *testing.T) {
	for _, window := range []string{"500ms", "-1m", "soon"} {
		if _, err := (StatsConfig{Window: window}).WindowSeconds(); err == nil {
			t.Fatalf("expected error for %q", window)
		}
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]uint64{
		"":                     0,
		"1700000000":           1_700_000_000,
		"2023-11-14T22:13:20Z": 1_700_000_000,
	}
	for input, want := range cases {
		got, err := ParseTimestamp(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %d, got %d", input, want, got)
		}
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected error")
	}
}
