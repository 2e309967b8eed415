package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultInterval is the time each stimulus stays on screen.
const DefaultInterval = 2000 * time.Millisecond

// WaitFunc suspends the walk for one step. It returns early with an error
// when ctx is cancelled.
type WaitFunc func(ctx context.Context, d time.Duration) error

type options struct {
	interval time.Duration
	wait     WaitFunc
	logger   *slog.Logger
	newID    func() string
}

// Option configures a controller.
type Option func(*options)

// WithInterval sets the step interval; non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithWait replaces the wall-clock sleep between steps.
func WithWait(w WaitFunc) Option {
	return func(o *options) {
		if w != nil {
			o.wait = w
		}
	}
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIDFunc replaces the session ID source.
func WithIDFunc(f func() string) Option {
	return func(o *options) {
		if f != nil {
			o.newID = f
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		interval: DefaultInterval,
		wait:     sleep,
		logger:   slog.New(slog.DiscardHandler),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
