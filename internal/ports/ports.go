package ports

import (
	"context"

	"svw.info/nback/internal/domain"
)

// Generator produces the stimulus sequence for one session.
type Generator interface {
	Generate(ctx context.Context, length, gridSize, matches, n int, seed int64) (domain.Sequence, error)
}

// HighScoreStore persists the best score across sessions.
type HighScoreStore interface {
	Read(ctx context.Context) (int, error)
	Write(ctx context.Context, score int) error
}

// Controller drives one playthrough at a time. Start, CheckMatch and Cancel
// are the only mutating entry points exposed to the presentation layer.
// A gridSize of 0 in Start means "the largest stimulus in seq".
type Controller interface {
	Start(seq domain.Sequence, n int, gt domain.GameType, gridSize int) error
	CheckMatch() domain.Feedback
	Cancel()
	Snapshot() domain.Snapshot
	// Subscribe returns a channel carrying the latest snapshot after each
	// change and a func that detaches it.
	Subscribe() (<-chan domain.Snapshot, func())
}
