package assignment

import (
	"time"

	appconfig "github.com/bdecent/avatarhub/internal/config"
)

// Config controls the auto-assignment job interval and scan sizing.
type Config struct {
	Enabled     bool
	RunInterval time.Duration
	BatchSize   int
	// MaxIterations caps how many batches a single run may process. The
	// cursor persists, so a capped run resumes on the next tick.
	MaxIterations int
	// MatchField is the host profile field compared against avatar names
	// and idnumbers. Empty disables the job.
	MatchField string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:   time.Minute,
		BatchSize:     2,
		MaxIterations: 1000,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = defaults.MaxIterations
	}
	return c
}

func fromApp(cfg appconfig.AssignmentConfig) Config {
	return Config{
		Enabled:       cfg.Enabled,
		RunInterval:   cfg.RunInterval,
		BatchSize:     cfg.BatchSize,
		MaxIterations: cfg.MaxIterations,
		MatchField:    cfg.MatchField,
	}
}
