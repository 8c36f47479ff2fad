package draft

import "time"

// Clock supplies the current time for pick timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a new Session.
type Option func(*Session)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithID sets the session identifier.
func WithID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}
