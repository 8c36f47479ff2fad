package service

import (
	"time"

	"github.com/okian/teamforge/internal/adapters/archive"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the XP event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency caches.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithActivityWeights sets the XP weight per activity and the weight for
// activities not in the table.
func WithActivityWeights(weights map[string]float64, defaultWeight float64) Option {
	return func(s *Service) {
		s.activityWeights = weights
		s.defaultWeight = defaultWeight
	}
}

// WithRoundTimeLimit sets the per-turn budget for new drafts that do not
// name one. Zero disables the turn timer for them.
func WithRoundTimeLimit(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.roundTimeLimit = d
		}
	}
}

// WithTurnCheckInterval sets how often expired turns are looked for.
func WithTurnCheckInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.turnCheckInterval = d
		}
	}
}

// WithDraftRetention sets how long completed drafts stay in memory.
func WithDraftRetention(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.draftRetention = d
		}
	}
}

// WithThemeLabels sets the default team names used by FormTeams.
func WithThemeLabels(labels ...string) Option {
	return func(s *Service) {
		s.themeLabels = labels
	}
}

// WithArchive stores balancing runs and completed drafts in a.
func WithArchive(a archive.Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

// WithClock sets the clock handed to draft sessions.
func WithClock(c draft.Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}
