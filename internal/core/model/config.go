package model

import "time"

// SessionConfig contains runtime settings for the breathing session engine.
type SessionConfig struct {
	TotalDuration  time.Duration
	InhaleDuration time.Duration
	ExhaleDuration time.Duration

	DefaultHoldDuration  time.Duration
	AllowedHoldDurations []time.Duration
}

// DefaultSessionConfig returns the built-in breathing pattern.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TotalDuration:       3 * time.Minute,
		InhaleDuration:      4 * time.Second,
		ExhaleDuration:      4 * time.Second,
		DefaultHoldDuration: 4 * time.Second,
		AllowedHoldDurations: []time.Duration{
			2 * time.Second,
			4 * time.Second,
			6 * time.Second,
			8 * time.Second,
		},
	}
}

// HoldAllowed reports whether value is a permitted hold duration.
func (config SessionConfig) HoldAllowed(value time.Duration) bool {
	for _, allowed := range config.AllowedHoldDurations {
		if allowed == value {
			return true
		}
	}
	return false
}
