package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// StatsConfig holds configuration for journal aggregation.
type StatsConfig struct {
	Input         string
	Out           string
	Window        string
	PGDSN         string
	BatchSize     int
	StateFile     string
	RecomputeFrom string
	LogLevel      string
}

// LoadStats merges config file, environment variables, and flags into StatsConfig.
// The input defaults to the event journal.
func LoadStats(cfgFile string, flags *pflag.FlagSet) (StatsConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return StatsConfig{}, err
	}
	v.SetDefault("batch-size", 1000)
	v.SetDefault("window", "5m")

	input := v.GetString("in")
	if input == "" {
		input = v.GetString("journal")
	}

	return StatsConfig{
		Input:         input,
		Out:           v.GetString("out"),
		Window:        v.GetString("window"),
		PGDSN:         v.GetString("pg-dsn"),
		BatchSize:     v.GetInt("batch-size"),
		StateFile:     v.GetString("state-file"),
		RecomputeFrom: v.GetString("recompute-from"),
		LogLevel:      v.GetString("log-level"),
	}, nil
}

// WindowSeconds parses Window as a duration of at least one second.
func (c StatsConfig) WindowSeconds() (uint64, error) {
	d, err := time.ParseDuration(c.Window)
	if err != nil {
		return 0, fmt.Errorf("invalid window: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("window must be positive")
	}
	secs := uint64(d.Seconds())
	if secs == 0 {
		return 0, fmt.Errorf("window must be at least 1s")
	}
	return secs, nil
}
