package scheduler

import "time"

// Config controls scheduler intervals and behavior.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration

	// FinalizeInvoices finalizes the draft right after month close. Off by
	// default so a human can review drafts before numbers are assigned.
	FinalizeInvoices bool
}

func DefaultConfig() Config {
	return Config{
		RunInterval: time.Minute,
		JobTimeout:  5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}
