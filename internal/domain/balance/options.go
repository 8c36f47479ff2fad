package balance

import (
	"fmt"
	"strings"
)

// Option configures a Form call.
type Option func(*config)

type config struct {
	count    int
	countSet bool
	size     int
	sizeSet  bool
	themes   []string
	tieSeed  *int64
}

// WithTeamCount fixes the number of teams.
func WithTeamCount(n int) Option {
	return func(c *config) {
		c.count = n
		c.countSet = true
	}
}

// WithTargetTeamSize derives the team count as ceil(len(roster)/size).
func WithTargetTeamSize(size int) Option {
	return func(c *config) {
		c.size = size
		c.sizeSet = true
	}
}

// WithThemeLabels names teams in bucket order, cycling when there are fewer
// labels than teams. Blank labels are ignored.
func WithThemeLabels(labels ...string) Option {
	return func(c *config) {
		c.themes = c.themes[:0]
		for _, l := range labels {
			if l = strings.TrimSpace(l); l != "" {
				c.themes = append(c.themes, l)
			}
		}
	}
}

// WithTieSeed shuffles participants of exactly equal strength using seed.
// Without it ties are broken by participant ID.
func WithTieSeed(seed int64) Option {
	return func(c *config) {
		c.tieSeed = &seed
	}
}

// teamCount resolves and validates the number of teams for a roster of size n.
func (c config) teamCount(n int) (int, error) {
	if c.countSet == c.sizeSet {
		return 0, fmt.Errorf("exactly one of team count or target team size is required: %w", ErrInvalidConfiguration)
	}
	if n == 0 {
		return 0, fmt.Errorf("roster is empty: %w", ErrInvalidConfiguration)
	}
	count := c.count
	if c.sizeSet {
		if c.size < 1 {
			return 0, fmt.Errorf("target team size %d < 1: %w", c.size, ErrInvalidConfiguration)
		}
		count = n / c.size
		if n%c.size != 0 {
			count++
		}
	}
	if count < 1 {
		return 0, fmt.Errorf("team count %d < 1: %w", count, ErrInvalidConfiguration)
	}
	if count > n {
		return 0, fmt.Errorf("team count %d exceeds %d participants: %w", count, n, ErrInvalidConfiguration)
	}
	return count, nil
}

func (c config) label(i int) string {
	if len(c.themes) == 0 {
		return DefaultName(i)
	}
	return c.themes[i%len(c.themes)]
}
