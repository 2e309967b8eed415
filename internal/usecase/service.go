package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"svw.info/nback/internal/domain"
	"svw.info/nback/internal/ports"
)

// DefaultSettings match the classic 2-back game on a 3x3 grid.
var DefaultSettings = domain.Settings{
	GameType: domain.Visual,
	N:        2,
	Length:   10,
	GridSize: 9,
	Matches:  3,
}

type Service struct {
	Generator  ports.Generator
	Controller ports.Controller
	Defaults   domain.Settings

	mu      sync.Mutex
	current domain.Settings
}

func NewService(g ports.Generator, c ports.Controller, defaults domain.Settings) *Service {
	return &Service{Generator: g, Controller: c, Defaults: defaults}
}

var errNotConfigured = errors.New("usecase dependency not configured")

// Fill replaces zero fields of s with the service defaults.
func (u *Service) Fill(s domain.Settings) domain.Settings {
	d := u.Defaults
	if d.N == 0 {
		d = DefaultSettings
	}
	if s.N == 0 {
		s.N = d.N
	}
	if s.Length == 0 {
		s.Length = d.Length
	}
	if s.GridSize == 0 {
		s.GridSize = d.GridSize
	}
	if s.Matches == 0 {
		s.Matches = d.Matches
		if s.Matches > s.Length-s.N && s.Length > s.N {
			s.Matches = s.Length - s.N
		}
	}
	if s.Seed == 0 {
		s.Seed = time.Now().UnixNano()
	}
	return s
}

// NewGame generates a sequence for s and starts the controller on it.
func (u *Service) NewGame(ctx context.Context, s domain.Settings) (domain.Snapshot, error) {
	if u.Generator == nil || u.Controller == nil {
		return domain.Snapshot{}, errNotConfigured
	}
	s = u.Fill(s)
	if err := domain.CheckGridSize(s.GameType, s.GridSize); err != nil {
		return domain.Snapshot{}, err
	}
	seq, err := u.Generator.Generate(ctx, s.Length, s.GridSize, s.Matches, s.N, s.Seed)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("generate sequence: %w", err)
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if err := u.Controller.Start(seq, s.N, s.GameType, s.GridSize); err != nil {
		return domain.Snapshot{}, err
	}
	u.current = s
	return u.Controller.Snapshot(), nil
}

// Current returns the settings of the most recently started game.
func (u *Service) Current() domain.Settings {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.current.N == 0 {
		return u.Fill(domain.Settings{})
	}
	return u.current
}

func (u *Service) CheckMatch() (domain.Feedback, domain.Snapshot, error) {
	if u.Controller == nil {
		return domain.Neutral, domain.Snapshot{}, errNotConfigured
	}
	fb := u.Controller.CheckMatch()
	return fb, u.Controller.Snapshot(), nil
}

func (u *Service) Cancel() (domain.Snapshot, error) {
	if u.Controller == nil {
		return domain.Snapshot{}, errNotConfigured
	}
	u.Controller.Cancel()
	return u.Controller.Snapshot(), nil
}

func (u *Service) State() (domain.Snapshot, error) {
	if u.Controller == nil {
		return domain.Snapshot{}, errNotConfigured
	}
	return u.Controller.Snapshot(), nil
}

func (u *Service) Subscribe() (<-chan domain.Snapshot, func(), error) {
	if u.Controller == nil {
		return nil, nil, errNotConfigured
	}
	ch, stop := u.Controller.Subscribe()
	return ch, stop, nil
}
