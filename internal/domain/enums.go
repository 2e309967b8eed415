package domain

import "strings"

// GameType selects how stimuli are presented.
type GameType int

const (
	Visual GameType = iota // lit cell on a square grid
	Audio                  // spoken letter
)

func (g GameType) String() string {
	if g == Audio {
		return "audio"
	}
	return "visual"
}

// LookupGameType maps "visual"/"audio" to a GameType and reports whether s
// named a known game.
func LookupGameType(s string) (GameType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "visual", "image":
		return Visual, true
	case "audio", "sound":
		return Audio, true
	}
	return Visual, false
}

// ParseGameType is LookupGameType with unknown names mapped to Visual.
func ParseGameType(s string) GameType {
	g, _ := LookupGameType(s)
	return g
}

// Feedback is the marker shown after a match check.
type Feedback int

const (
	Neutral Feedback = iota
	Correct
	Incorrect
)

func (f Feedback) String() string {
	switch f {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return "neutral"
	}
}

// Phase is the lifecycle of one session.
type Phase int

const (
	Idle Phase = iota // not started
	Running
	Finished
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

func (g GameType) MarshalText() ([]byte, error) { return []byte(g.String()), nil }

func (g *GameType) UnmarshalText(b []byte) error {
	*g = ParseGameType(string(b))
	return nil
}

func (f Feedback) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
