package config

import "github.com/spf13/pflag"

// ReplayConfig holds configuration for the replay command.
type ReplayConfig struct {
	Config
	Input           string
	ContinueOnError bool
	CheckpointEvery int
}

// LoadReplay merges config file, environment variables, and flags into ReplayConfig.
func LoadReplay(cfgFile string, flags *pflag.FlagSet) (ReplayConfig, error) {
	v, err := newViper(cfgFile, flags)
	if err != nil {
		return ReplayConfig{}, err
	}
	v.SetDefault("checkpoint-every", 1)

	return ReplayConfig{
		Config:          loadCommon(v),
		Input:           v.GetString("in"),
		ContinueOnError: v.GetBool("continue-on-error"),
		CheckpointEvery: v.GetInt("checkpoint-every"),
	}, nil
}
