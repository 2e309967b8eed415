package session

import (
	"context"
	"sync"

	"svw.info/nback/internal/domain"
	"svw.info/nback/internal/ports"
)

// Timed walks the sequence on the wall clock, one stimulus per interval.
type Timed struct {
	opts  options
	store ports.HighScoreStore
	hub   hub

	startMu sync.Mutex // serialises Start

	mu     sync.Mutex
	g      game
	cancel context.CancelFunc
	done   chan struct{}
}

var _ ports.Controller = (*Timed)(nil)

// NewTimed reads the stored high score once and returns an idle controller.
// A nil store keeps high scores in memory only.
func NewTimed(ctx context.Context, store ports.HighScoreStore, opts ...Option) (*Timed, error) {
	high, err := readHighScore(ctx, store)
	if err != nil {
		return nil, err
	}
	c := &Timed{opts: buildOptions(opts), store: store}
	c.g.high = high
	return c, nil
}

// Start validates the session, stops any walk in progress and begins a new
// one. It returns as soon as the first stimulus is shown.
func (c *Timed) Start(seq domain.Sequence, n int, gt domain.GameType, gridSize int) error {
	gridSize, err := validateStart(seq, n, gt, gridSize)
	if err != nil {
		return err
	}
	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.stopWalk()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel, c.done = cancel, done
	c.g.begin(c.opts.newID(), seq, n, gt, gridSize)
	snap := c.g.snapshot()
	c.hub.publish(snap)
	c.mu.Unlock()

	c.opts.logger.Info("session started",
		"session", snap.SessionID,
		"game", gt.String(),
		"n", n,
		"length", len(seq),
		"grid", gridSize,
		"interval", c.opts.interval,
	)
	go c.walk(ctx, done)
	return nil
}

// CheckMatch judges a match press for the current step.
func (c *Timed) CheckMatch() domain.Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	fb := c.g.check()
	if fb != domain.Neutral {
		c.hub.publish(c.g.snapshot())
	}
	return fb
}

// Cancel stops the walk early. It never blocks on the walk goroutine.
func (c *Timed) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	if c.g.stop() {
		c.hub.publish(c.g.snapshot())
		c.opts.logger.Info("session cancelled", "session", c.g.id, "index", c.g.index, "score", c.g.score)
	}
}

// Snapshot returns the current state.
func (c *Timed) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g.snapshot()
}

// Subscribe streams snapshots, starting with the current one.
func (c *Timed) Subscribe() (<-chan domain.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hub.subscribe(c.g.snapshot())
}

// Wait blocks until the current walk, if any, has exited.
func (c *Timed) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (c *Timed) stopWalk() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.g.stop()
	c.mu.Unlock()
	if cancel != nil {
		cancel()
		<-done
	}
}

func (c *Timed) walk(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if err := c.opts.wait(ctx, c.opts.interval); err != nil {
			return
		}

		c.mu.Lock()
		if ctx.Err() != nil || c.g.phase != domain.Running {
			c.mu.Unlock()
			return
		}
		if !c.g.advance() {
			c.hub.publish(c.g.snapshot())
			c.mu.Unlock()
			continue
		}
		id, score := c.g.id, c.g.score
		improved := c.g.raiseHigh()
		c.mu.Unlock()

		if improved {
			writeHighScore(c.store, c.opts.logger, id, score)
		}
		c.mu.Lock()
		c.hub.publish(c.g.snapshot())
		c.mu.Unlock()
		c.opts.logger.Info("session finished", "session", id, "score", score, "improved", improved)
		return
	}
}
