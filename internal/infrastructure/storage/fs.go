package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PreferencesFile is the JSON document FS keeps under its directory.
const PreferencesFile = "preferences.json"

type preferences struct {
	HighScore int `json:"high_score"`
}

// FS keeps the high score in a small JSON preferences file.
type FS struct {
	dir string
	mu  sync.Mutex
}

func NewFS(dir string) *FS { return &FS{dir: dir} }

func (s *FS) path() string { return filepath.Join(s.dir, PreferencesFile) }

// Read returns the stored high score; a missing file reads as 0.
func (s *FS) Read(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path())
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var p preferences
	if err := json.Unmarshal(data, &p); err != nil {
		return 0, fmt.Errorf("decode %s: %w", PreferencesFile, err)
	}
	return p.HighScore, nil
}

// Write replaces the stored high score via temp file + rename.
func (s *FS) Write(ctx context.Context, score int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if score < 0 {
		return fmt.Errorf("invalid high score %d", score)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, PreferencesFile+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(preferences{HighScore: score}); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
