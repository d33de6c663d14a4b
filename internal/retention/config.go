package retention

import "time"

// Config controls the expired report data purge loop.
type Config struct {
	RetentionMonths int
	PollInterval    time.Duration
	RunTimeout      time.Duration
}

func DefaultConfig() Config {
	return Config{
		RetentionMonths: 3,
		PollInterval:    time.Hour,
		RunTimeout:      10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RetentionMonths <= 0 {
		c.RetentionMonths = defaults.RetentionMonths
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.RunTimeout <= 0 {
		c.RunTimeout = defaults.RunTimeout
	}
	return c
}
