// Package session drives N-back playthroughs: it walks a pre-generated
// stimulus sequence, judges match presses and keeps score.
package session

import (
	"slices"

	"svw.info/nback/internal/domain"
)

// game is the state machine shared by Timed and Manual. Callers hold the
// owning controller's mutex for every method.
type game struct {
	id       string
	gameType domain.GameType
	seq      domain.Sequence
	n        int
	gridSize int
	index    int
	stimulus domain.Stimulus
	score    int
	high     int
	feedback domain.Feedback
	phase    domain.Phase
	scored   bool
}

// validateStart checks a session and resolves its grid size.
func validateStart(seq domain.Sequence, n int, gt domain.GameType, gridSize int) (int, error) {
	if len(seq) == 0 {
		return 0, domain.Configf("sequence", "must not be empty")
	}
	if n < 1 {
		return 0, domain.Configf("n", "must be at least 1, got %d", n)
	}
	if n >= len(seq) {
		return 0, domain.Configf("n", "must be below sequence length %d, got %d", len(seq), n)
	}
	if gridSize < 0 {
		return 0, domain.Configf("gridSize", "must not be negative, got %d", gridSize)
	}
	largest := 0
	for i, s := range seq {
		if s < 1 {
			return 0, domain.Configf("sequence", "stimulus %d at position %d is below 1", s, i)
		}
		if gridSize > 0 && int(s) > gridSize {
			return 0, domain.Configf("sequence", "stimulus %d at position %d exceeds grid size %d", s, i, gridSize)
		}
		largest = max(largest, int(s))
	}
	if gridSize == 0 {
		gridSize = largest
	}
	if err := domain.CheckGridSize(gt, gridSize); err != nil {
		return 0, err
	}
	return gridSize, nil
}

// begin resets counters and shows the first stimulus.
func (g *game) begin(id string, seq domain.Sequence, n int, gt domain.GameType, gridSize int) {
	g.id = id
	g.gameType = gt
	g.seq = slices.Clone(seq)
	g.n = n
	g.gridSize = gridSize
	g.index = 0
	g.score = 0
	g.feedback = domain.Neutral
	g.scored = false
	g.phase = domain.Running
	g.stimulus = g.seq[0]
}

// check judges a match press against the stimulus n steps back. It returns
// Neutral when the press is ignored.
func (g *game) check() domain.Feedback {
	if g.phase != domain.Running || g.scored {
		return domain.Neutral
	}
	if g.index < g.n || g.index >= len(g.seq) {
		return domain.Neutral
	}
	if g.seq.IsMatch(g.index, g.n) {
		g.score++
		g.scored = true
		g.feedback = domain.Correct
	} else {
		g.feedback = domain.Incorrect
	}
	return g.feedback
}

// advance closes the current step and shows the next stimulus. It reports
// true once the sequence is exhausted.
func (g *game) advance() bool {
	g.feedback = domain.Neutral
	g.scored = false
	g.index++
	if g.index >= len(g.seq) {
		g.index = len(g.seq)
		g.stimulus = domain.NoStimulus
		g.phase = domain.Finished
		return true
	}
	g.stimulus = g.seq[g.index]
	return false
}

// raiseHigh lifts the high score to the final score when it improves on it.
func (g *game) raiseHigh() bool {
	if g.score <= g.high {
		return false
	}
	g.high = g.score
	return true
}

// stop ends a running walk early.
func (g *game) stop() bool {
	if g.phase != domain.Running {
		return false
	}
	g.phase = domain.Cancelled
	g.stimulus = domain.NoStimulus
	g.feedback = domain.Neutral
	return true
}

func (g *game) snapshot() domain.Snapshot {
	return domain.Snapshot{
		SessionID:      g.id,
		GameType:       g.gameType,
		N:              g.n,
		Length:         len(g.seq),
		GridSize:       g.gridSize,
		Index:          g.index,
		Stimulus:       g.stimulus,
		Score:          g.score,
		HighScore:      g.high,
		Feedback:       g.feedback,
		Phase:          g.phase,
		ScoredThisStep: g.scored,
	}
}
