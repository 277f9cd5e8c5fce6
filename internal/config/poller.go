package config

import (
	"errors"
	"time"
)

type PollerConfig struct {
	DeadlineCheckInterval time.Duration `mapstructure:"deadline-check-interval"`
	SnapshotInterval      time.Duration `mapstructure:"snapshot-interval"`
	StatsInterval         time.Duration `mapstructure:"stats-interval"`
	ChangeBatchSize       int           `mapstructure:"change-batch-size"`
	SnapshotsToKeep       int64         `mapstructure:"snapshots-to-keep"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.DeadlineCheckInterval <= 0 {
		return errors.New("deadline-check-interval must be positive")
	}

	if cfg.SnapshotInterval <= 0 {
		return errors.New("snapshot-interval must be positive")
	}

	if cfg.StatsInterval <= 0 {
		return errors.New("stats-interval must be positive")
	}

	if cfg.ChangeBatchSize <= 0 {
		return errors.New("change-batch-size must be positive")
	}

	if cfg.SnapshotsToKeep <= 0 {
		return errors.New("snapshots-to-keep must be positive")
	}

	return nil
}
