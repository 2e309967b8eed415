package domain

import "math"

// Stimulus is one element of a sequence, in [1, gridSize].
type Stimulus int

// NoStimulus is shown between sessions.
const NoStimulus Stimulus = 0

// Sequence is the pre-generated stimulus list for one session.
type Sequence []Stimulus

// IsMatch reports whether position i repeats the stimulus n steps back.
func (s Sequence) IsMatch(i, n int) bool {
	if n < 1 || i < n || i >= len(s) {
		return false
	}
	return s[i] == s[i-n]
}

// Matches counts the N-back matches in the sequence.
func (s Sequence) Matches(n int) int {
	c := 0
	for i := n; i < len(s); i++ {
		if s.IsMatch(i, n) {
			c++
		}
	}
	return c
}

// Settings parameterise the generation of one session.
type Settings struct {
	GameType GameType `json:"gameType"`
	N        int      `json:"n"`
	Length   int      `json:"length"`
	GridSize int      `json:"gridSize"`
	Matches  int      `json:"matches"`
	Seed     int64    `json:"seed,omitempty"`
}

// Snapshot is a read-only copy of session state for the presentation layer.
type Snapshot struct {
	SessionID      string   `json:"sessionId,omitempty"`
	GameType       GameType `json:"gameType"`
	N              int      `json:"n"`
	Length         int      `json:"length"`
	GridSize       int      `json:"gridSize"`
	Index          int      `json:"index"`
	Stimulus       Stimulus `json:"stimulus"`
	Score          int      `json:"score"`
	HighScore      int      `json:"highScore"`
	Feedback       Feedback `json:"feedback"`
	Phase          Phase    `json:"phase"`
	ScoredThisStep bool     `json:"scoredThisStep"`
}

// Running reports whether a walk is in progress.
func (s Snapshot) Running() bool { return s.Phase == Running }

// MaxAudioStimuli is the number of distinct spoken letters.
const MaxAudioStimuli = 26

// CheckGridSize rejects grids an audio game cannot voice distinctly.
func CheckGridSize(gt GameType, gridSize int) error {
	if gt == Audio && gridSize > MaxAudioStimuli {
		return Configf("gridSize", "audio games have %d letters, got %d", MaxAudioStimuli, gridSize)
	}
	return nil
}

// Letter returns the spoken letter for an audio stimulus ("" for none).
func Letter(s Stimulus) string {
	if s < 1 || s > MaxAudioStimuli {
		return ""
	}
	return string(rune('A' + int(s) - 1))
}

// CellCoord identifies a cell on the visual grid.
type CellCoord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// GridSide is the side of the smallest square grid holding gridSize cells.
func GridSide(gridSize int) int {
	if gridSize < 1 {
		return 0
	}
	return int(math.Ceil(math.Sqrt(float64(gridSize))))
}

// GridCell places a stimulus on a grid of the given side, row-major.
func GridCell(s Stimulus, side int) (CellCoord, bool) {
	if s < 1 || side < 1 {
		return CellCoord{}, false
	}
	i := int(s) - 1
	return CellCoord{Row: i / side, Col: i % side}, true
}
