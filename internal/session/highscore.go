package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"svw.info/nback/internal/ports"
)

const writeTimeout = 5 * time.Second

func readHighScore(ctx context.Context, store ports.HighScoreStore) (int, error) {
	if store == nil {
		return 0, nil
	}
	high, err := store.Read(ctx)
	if err != nil {
		return 0, fmt.Errorf("read high score: %w", err)
	}
	if high < 0 {
		high = 0
	}
	return high, nil
}

// writeHighScore persists an improved score. Failures are logged only: the
// in-memory high score has already been raised.
func writeHighScore(store ports.HighScoreStore, logger *slog.Logger, id string, score int) {
	if store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := store.Write(ctx, score); err != nil {
		logger.Error("persist high score", "session", id, "score", score, "err", err)
		return
	}
	logger.Info("new high score", "session", id, "score", score)
}
