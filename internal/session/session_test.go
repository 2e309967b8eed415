package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"svw.info/nback/internal/domain"
	"svw.info/nback/internal/ports"
)

// memStore is an in-memory high score store that counts writes.
type memStore struct {
	mu      sync.Mutex
	high    int
	writes  []int
	readErr error
	wErr    error
}

func (s *memStore) Read(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.high, s.readErr
}

func (s *memStore) Write(_ context.Context, v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, v)
	if s.wErr != nil {
		return s.wErr
	}
	s.high = v
	return nil
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

// stepper replaces the clock: the walk blocks in wait until the test ticks.
type stepper struct {
	entered chan struct{}
	tick    chan struct{}
}

func newStepper() *stepper {
	return &stepper{entered: make(chan struct{}), tick: make(chan struct{})}
}

func (s *stepper) wait(ctx context.Context, _ time.Duration) error {
	select {
	case s.entered <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-s.tick:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await blocks until the walk sits in its wait for the current step.
func (s *stepper) await(t *testing.T) {
	t.Helper()
	select {
	case <-s.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("walk never reached its wait")
	}
}

var example = domain.Sequence{1, 2, 1, 3, 1, 2, 1}

func newTimed(t *testing.T, store *memStore) (*Timed, *stepper) {
	t.Helper()
	st := newStepper()
	var s ports.HighScoreStore
	if store != nil {
		s = store
	}
	c, err := NewTimed(context.Background(), s, WithWait(st.wait))
	if err != nil {
		t.Fatalf("NewTimed: %v", err)
	}
	return c, st
}

// next ends the current step and waits for the walk to settle.
func next(t *testing.T, c *Timed, st *stepper) {
	t.Helper()
	snap := c.Snapshot()
	st.tick <- struct{}{}
	if snap.Index+1 >= snap.Length {
		c.Wait()
		return
	}
	st.await(t)
}

func TestTimedExampleScoring(t *testing.T) {
	c, st := newTimed(t, &memStore{})
	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	st.await(t)

	// index 0 and 1 have nothing n steps back
	if fb := c.CheckMatch(); fb != domain.Neutral {
		t.Fatalf("index 0 feedback = %v, want neutral", fb)
	}
	next(t, c, st)
	if fb := c.CheckMatch(); fb != domain.Neutral {
		t.Fatalf("index 1 feedback = %v, want neutral", fb)
	}
	next(t, c, st)

	if fb := c.CheckMatch(); fb != domain.Correct {
		t.Fatalf("index 2 feedback = %v, want correct", fb)
	}
	if got := c.Snapshot().Score; got != 1 {
		t.Fatalf("score after index 2 = %d, want 1", got)
	}
	next(t, c, st)

	snap := c.Snapshot()
	if snap.Feedback != domain.Neutral || snap.ScoredThisStep {
		t.Fatalf("feedback not reset on advance: %+v", snap)
	}
	if fb := c.CheckMatch(); fb != domain.Incorrect {
		t.Fatalf("index 3 feedback = %v, want incorrect", fb)
	}
	if got := c.Snapshot().Score; got != 1 {
		t.Fatalf("score after index 3 = %d, want 1", got)
	}
	c.Cancel()
	c.Wait()
}

func TestTimedDoubleCheckScoresOnce(t *testing.T) {
	c, st := newTimed(t, nil)
	if err := c.Start(example, 2, domain.Audio, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)
	next(t, c, st)
	next(t, c, st)

	if fb := c.CheckMatch(); fb != domain.Correct {
		t.Fatalf("first check = %v, want correct", fb)
	}
	if fb := c.CheckMatch(); fb != domain.Neutral {
		t.Fatalf("second check = %v, want neutral (ignored)", fb)
	}
	if got := c.Snapshot().Score; got != 1 {
		t.Fatalf("score = %d, want 1", got)
	}
	c.Cancel()
	c.Wait()
}

func TestTimedIndexWalksEveryPosition(t *testing.T) {
	c, st := newTimed(t, nil)
	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()
	<-updates // idle snapshot

	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)

	var seen []int
	for {
		snap := c.Snapshot()
		seen = append(seen, snap.Index)
		if snap.Phase != domain.Running {
			break
		}
		if snap.Stimulus != example[snap.Index] {
			t.Fatalf("stimulus at %d = %d, want %d", snap.Index, snap.Stimulus, example[snap.Index])
		}
		next(t, c, st)
	}
	if len(seen) != len(example)+1 {
		t.Fatalf("indices = %v, want 0..%d", seen, len(example))
	}
	for i, v := range seen {
		if v != i {
			t.Fatalf("indices = %v, want 0..%d", seen, len(example))
		}
	}
	final := c.Snapshot()
	if final.Phase != domain.Finished || final.Stimulus != domain.NoStimulus {
		t.Fatalf("final snapshot = %+v", final)
	}
	if latest := <-updates; latest != final {
		t.Fatalf("subscriber holds %+v, want %+v", latest, final)
	}
	if fb := c.CheckMatch(); fb != domain.Neutral {
		t.Fatalf("check after finish = %v, want neutral", fb)
	}
}

func TestTimedCheckBeforeStartIsNoop(t *testing.T) {
	c, _ := newTimed(t, nil)
	if fb := c.CheckMatch(); fb != domain.Neutral {
		t.Fatalf("feedback = %v, want neutral", fb)
	}
	c.Cancel() // idempotent on idle
	if snap := c.Snapshot(); snap.Phase != domain.Idle || snap.Score != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestTimedStartRejectsBadConfig(t *testing.T) {
	c, st := newTimed(t, nil)
	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)
	next(t, c, st)
	before := c.Snapshot()

	// stimuli 1..30 would need letters past Z
	long := make(domain.Sequence, 30)
	for i := range long {
		long[i] = domain.Stimulus(i + 1)
	}

	cases := []struct {
		name string
		seq  domain.Sequence
		n    int
		gt   domain.GameType
		grid int
	}{
		{"empty", nil, 1, domain.Visual, 0},
		{"n zero", example, 0, domain.Visual, 0},
		{"n equals length", example, len(example), domain.Visual, 0},
		{"n above length", example, 10, domain.Visual, 0},
		{"sentinel stimulus", domain.Sequence{1, 0, 2}, 1, domain.Visual, 0},
		{"stimulus outside grid", domain.Sequence{1, 5, 2}, 1, domain.Visual, 4},
		{"negative grid", example, 2, domain.Visual, -1},
		{"audio grid past alphabet", example, 2, domain.Audio, 40},
		{"audio stimuli past alphabet", long, 2, domain.Audio, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := c.Start(tc.seq, tc.n, tc.gt, tc.grid)
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Fatalf("err = %v, want ErrConfiguration", err)
			}
			if after := c.Snapshot(); after != before {
				t.Fatalf("state changed on rejection: %+v -> %+v", before, after)
			}
		})
	}
	c.Cancel()
	c.Wait()
}

func TestTimedCancelThenRestart(t *testing.T) {
	c, st := newTimed(t, nil)
	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)
	next(t, c, st)
	next(t, c, st)
	c.CheckMatch()

	c.Cancel()
	c.Wait()
	snap := c.Snapshot()
	if snap.Phase != domain.Cancelled || snap.Stimulus != domain.NoStimulus {
		t.Fatalf("after cancel: %+v", snap)
	}
	if snap.Index != 2 {
		t.Fatalf("index advanced after cancel: %d", snap.Index)
	}
	c.Cancel() // idempotent

	first := snap.SessionID
	if err := c.Start(example, 3, domain.Audio, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)
	snap = c.Snapshot()
	if snap.Score != 0 || snap.Index != 0 || snap.Phase != domain.Running {
		t.Fatalf("restart did not reset: %+v", snap)
	}
	if snap.SessionID == first || snap.N != 3 || snap.GameType != domain.Audio {
		t.Fatalf("restart kept old session: %+v", snap)
	}
	c.Cancel()
	c.Wait()
}

func TestTimedStartStopsPreviousWalk(t *testing.T) {
	c, st := newTimed(t, nil)
	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)
	// restart while the first walk is suspended
	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)
	next(t, c, st)
	if got := c.Snapshot().Index; got != 1 {
		t.Fatalf("index = %d, want 1 (one walk only)", got)
	}
	c.Cancel()
	c.Wait()
}

func TestTimedRealClock(t *testing.T) {
	c, err := NewTimed(context.Background(), nil, WithInterval(time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	snap := c.Snapshot()
	if snap.Phase != domain.Finished || snap.Index != len(example) {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestHighScorePersistence(t *testing.T) {
	// every position from n on matches: a perfect run scores length-n
	perfect := domain.Sequence{4, 4, 4, 4, 4, 4, 4}

	cases := []struct {
		name       string
		stored     int
		wantWrites int
		wantHigh   int
	}{
		{"improves", 3, 1, 5},
		{"does not improve", 5, 0, 5},
		{"stored is higher", 6, 0, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := &memStore{high: tc.stored}
			c, st := newTimed(t, store)
			if c.Snapshot().HighScore != tc.stored {
				t.Fatalf("high score not read at init")
			}
			if err := c.Start(perfect, 2, domain.Visual, 0); err != nil {
				t.Fatal(err)
			}
			st.await(t)
			for c.Snapshot().Phase == domain.Running {
				c.CheckMatch()
				next(t, c, st)
			}
			if got := c.Snapshot().Score; got != 5 {
				t.Fatalf("score = %d, want 5", got)
			}
			if got := store.writeCount(); got != tc.wantWrites {
				t.Fatalf("writes = %d, want %d", got, tc.wantWrites)
			}
			if got := c.Snapshot().HighScore; got != tc.wantHigh {
				t.Fatalf("high score = %d, want %d", got, tc.wantHigh)
			}
		})
	}
}

func TestCancelledSessionDoesNotPersist(t *testing.T) {
	store := &memStore{}
	c, st := newTimed(t, store)
	if err := c.Start(domain.Sequence{2, 2, 2}, 1, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	st.await(t)
	next(t, c, st)
	c.CheckMatch()
	c.Cancel()
	c.Wait()
	if got := store.writeCount(); got != 0 {
		t.Fatalf("writes = %d, want 0", got)
	}
}

func TestNewTimedReadError(t *testing.T) {
	_, err := NewTimed(context.Background(), &memStore{readErr: errors.New("disk gone")})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteFailureStillRaisesHighScore(t *testing.T) {
	store := &memStore{wErr: errors.New("read-only")}
	c, err := NewManual(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(domain.Sequence{1, 1}, 1, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	c.Step()
	c.CheckMatch()
	c.Step()
	if got := c.Snapshot().HighScore; got != 1 {
		t.Fatalf("high score = %d, want 1", got)
	}
	if got := store.writeCount(); got != 1 {
		t.Fatalf("writes = %d, want 1", got)
	}
}

func TestStartResolvesGridSize(t *testing.T) {
	c, err := NewManual(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(example, 2, domain.Visual, 0); err != nil {
		t.Fatal(err)
	}
	if got := c.Snapshot().GridSize; got != 3 {
		t.Fatalf("derived grid size = %d, want 3 (largest stimulus)", got)
	}
	if err := c.Start(example, 2, domain.Visual, 16); err != nil {
		t.Fatal(err)
	}
	c.Step()
	if got := c.Snapshot().GridSize; got != 16 {
		t.Fatalf("grid size = %d, want 16", got)
	}
	if err := c.Start(example, 2, domain.Audio, 26); err != nil {
		t.Fatalf("audio game with a full alphabet rejected: %v", err)
	}
}
