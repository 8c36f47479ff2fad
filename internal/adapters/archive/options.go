package archive

import "github.com/okian/teamforge/internal/domain/draft"

// Option applies a configuration option to an archive backend.
type Option func(*options)

type options struct {
	clock draft.Clock
}

// WithClock sets the clock used to render time-dependent draft fields.
func WithClock(c draft.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{clock: draft.ClockFunc(timeNow)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
