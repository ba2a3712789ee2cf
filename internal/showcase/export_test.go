package showcase

import "time"

type fixedTime struct {
	now func() time.Time
}

func (f fixedTime) Now() time.Time {
	return f.now()
}

// WithTimeProvider overrides the clock used for staleness and fetch times.
func WithTimeProvider(now func() time.Time) Options {
	return func(o *options) {
		o.timeProvider = fixedTime{now: now}
	}
}
