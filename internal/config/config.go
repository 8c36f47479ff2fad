// Package config defines service configuration and how it is loaded.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// MaxRoundTimeLimitSeconds caps the per-turn draft budget at one day.
const MaxRoundTimeLimitSeconds = 24 * 60 * 60

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory XP event queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of XP scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize caps remembered request IDs; 0 keeps all.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// ActivityWeights maps activity names to XP multipliers.
	ActivityWeights map[string]float64 `koanf:"activity_weights"`

	// DefaultActivityWeight is used for unknown activities.
	DefaultActivityWeight float64 `koanf:"default_activity_weight"`

	// RoundTimeLimitSeconds is the default per-turn draft budget; 0 disables it.
	RoundTimeLimitSeconds int `koanf:"round_time_limit_seconds"`

	// TurnCheckIntervalMS is how often expired draft turns are skipped.
	TurnCheckIntervalMS int `koanf:"turn_check_interval_ms"`

	// DraftRetentionSeconds is how long a finished draft stays in memory.
	// Older drafts are read back from the archive when one is configured.
	DraftRetentionSeconds int `koanf:"draft_retention_seconds"`

	// ThemeLabels names balanced teams when a request brings none.
	ThemeLabels []string `koanf:"theme_labels"`

	// ArchiveDSN selects the archive: sqlite://path, postgres://..., or empty
	// to disable archiving.
	ArchiveDSN string `koanf:"archive_dsn"`

	// ShutdownTimeoutSeconds bounds graceful shutdown.
	ShutdownTimeoutSeconds int `koanf:"shutdown_timeout_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          100_000,
		MaxLeaderboardLimit: 100,
		ActivityWeights: map[string]float64{
			"challenge_solved": 25,
			"bug_fixed":        15,
			"peer_review":      10,
			"lesson_completed": 5,
		},
		DefaultActivityWeight:  1,
		RoundTimeLimitSeconds:  60,
		TurnCheckIntervalMS:    500,
		DraftRetentionSeconds:  3600,
		ThemeLabels:            nil,
		ArchiveDSN:             "",
		ShutdownTimeoutSeconds: 10,
	}
}

// RoundTimeLimit returns RoundTimeLimitSeconds as a duration.
func (c *Config) RoundTimeLimit() time.Duration {
	return time.Duration(c.RoundTimeLimitSeconds) * time.Second
}

// TurnCheckInterval returns TurnCheckIntervalMS as a duration.
func (c *Config) TurnCheckInterval() time.Duration {
	return time.Duration(c.TurnCheckIntervalMS) * time.Millisecond
}

// DraftRetention returns DraftRetentionSeconds as a duration.
func (c *Config) DraftRetention() time.Duration {
	return time.Duration(c.DraftRetentionSeconds) * time.Second
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("queue_size must be positive, got %d: %w", c.QueueSize, ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("worker_count must be positive, got %d: %w", c.WorkerCount, ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("max_leaderboard_limit must be positive, got %d: %w", c.MaxLeaderboardLimit, ErrInvalidConfig)
	case c.DefaultActivityWeight <= 0:
		return fmt.Errorf("default_activity_weight must be positive: %w", ErrInvalidConfig)
	case c.RoundTimeLimitSeconds < 0 || c.RoundTimeLimitSeconds > MaxRoundTimeLimitSeconds:
		return fmt.Errorf("round_time_limit_seconds must be within [0, %d]: %w", MaxRoundTimeLimitSeconds, ErrInvalidConfig)
	case c.TurnCheckIntervalMS < 1:
		return fmt.Errorf("turn_check_interval_ms must be positive: %w", ErrInvalidConfig)
	case c.DraftRetentionSeconds < 1:
		return fmt.Errorf("draft_retention_seconds must be positive: %w", ErrInvalidConfig)
	case c.ShutdownTimeoutSeconds < 1:
		return fmt.Errorf("shutdown_timeout_seconds must be positive: %w", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q: %w", c.LogLevel, ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q: %w", c.LogFormat, ErrInvalidConfig)
	}
	return nil
}
