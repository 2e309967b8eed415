package session

import (
	"context"
	"sync"

	"svw.info/nback/internal/domain"
	"svw.info/nback/internal/ports"
)

// Manual is a deterministic controller advanced by explicit Step calls
// instead of a clock.
type Manual struct {
	opts  options
	store ports.HighScoreStore
	hub   hub

	mu sync.Mutex
	g  game
}

var _ ports.Controller = (*Manual)(nil)

// NewManual reads the stored high score once and returns an idle controller.
func NewManual(ctx context.Context, store ports.HighScoreStore, opts ...Option) (*Manual, error) {
	high, err := readHighScore(ctx, store)
	if err != nil {
		return nil, err
	}
	c := &Manual{opts: buildOptions(opts), store: store}
	c.g.high = high
	return c, nil
}

func (c *Manual) Start(seq domain.Sequence, n int, gt domain.GameType, gridSize int) error {
	gridSize, err := validateStart(seq, n, gt, gridSize)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.g.begin(c.opts.newID(), seq, n, gt, gridSize)
	c.hub.publish(c.g.snapshot())
	return nil
}

func (c *Manual) CheckMatch() domain.Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	fb := c.g.check()
	if fb != domain.Neutral {
		c.hub.publish(c.g.snapshot())
	}
	return fb
}

func (c *Manual) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.g.stop() {
		c.hub.publish(c.g.snapshot())
	}
}

// Step ends the current step as if the interval had elapsed. It reports
// false when no session is running.
func (c *Manual) Step() bool {
	c.mu.Lock()
	if c.g.phase != domain.Running {
		c.mu.Unlock()
		return false
	}
	finished := c.g.advance()
	improved := finished && c.g.raiseHigh()
	id, score := c.g.id, c.g.score
	if !improved {
		c.hub.publish(c.g.snapshot())
		c.mu.Unlock()
		return true
	}
	c.mu.Unlock()

	writeHighScore(c.store, c.opts.logger, id, score)
	c.mu.Lock()
	c.hub.publish(c.g.snapshot())
	c.mu.Unlock()
	return true
}

func (c *Manual) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.g.snapshot()
}

func (c *Manual) Subscribe() (<-chan domain.Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hub.subscribe(c.g.snapshot())
}
