package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"svw.info/nback/internal/domain"
	"svw.info/nback/internal/usecase"
)

type Handler struct {
	UC *usecase.Service
}

func New(uc *usecase.Service) *Handler { return &Handler{UC: uc} }

// Register mounts the JSON API under /api.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleState)
		r.Post("/start", h.handleStart)
		r.Post("/check", h.handleCheck)
		r.Post("/cancel", h.handleCancel)
		r.Get("/events", h.handleEvents)
	})
}

// ---- State ----

// stateView decorates a snapshot with what each screen renders.
type stateView struct {
	domain.Snapshot
	Letter   string            `json:"letter,omitempty"`
	Cell     *domain.CellCoord `json:"cell,omitempty"`
	GridSide int               `json:"gridSide"`
}

type stateResp struct {
	State *stateView `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}

func (h *Handler) view(s domain.Snapshot) *stateView {
	grid := s.GridSize
	if grid == 0 {
		// nothing started yet: draw the default grid
		grid = h.UC.Current().GridSize
	}
	side := domain.GridSide(grid)
	v := &stateView{Snapshot: s, GridSide: side}
	if s.Stimulus == domain.NoStimulus {
		return v
	}
	if s.GameType == domain.Audio {
		v.Letter = domain.Letter(s.Stimulus)
	} else if c, ok := domain.GridCell(s.Stimulus, side); ok {
		v.Cell = &c
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	s, err := h.UC.State()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, stateResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stateResp{State: h.view(s)})
}

// ---- Start ----

type startReq struct {
	GameType string `json:"gameType,omitempty"`
	N        int    `json:"n,omitempty"`
	Length   int    `json:"length,omitempty"`
	GridSize int    `json:"gridSize,omitempty"`
	Matches  int    `json:"matches,omitempty"`
	Seed     int64  `json:"seed,omitempty"`
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, stateResp{Error: "invalid JSON: " + err.Error()})
		return
	}
	gt := h.UC.Defaults.GameType
	if req.GameType != "" {
		var ok bool
		if gt, ok = domain.LookupGameType(req.GameType); !ok {
			err := domain.Configf("gameType", "must be visual or audio, got %q", req.GameType)
			writeJSON(w, http.StatusBadRequest, stateResp{Error: err.Error()})
			return
		}
	}
	s, err := h.UC.NewGame(r.Context(), domain.Settings{
		GameType: gt,
		N:        req.N,
		Length:   req.Length,
		GridSize: req.GridSize,
		Matches:  req.Matches,
		Seed:     req.Seed,
	})
	if errors.Is(err, domain.ErrConfiguration) {
		writeJSON(w, http.StatusBadRequest, stateResp{Error: err.Error()})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, stateResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stateResp{State: h.view(s)})
}

// ---- Check / Cancel ----

type checkResp struct {
	Feedback domain.Feedback `json:"feedback"`
	State    *stateView      `json:"state,omitempty"`
	Error    string          `json:"error,omitempty"`
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	fb, s, err := h.UC.CheckMatch()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, checkResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, checkResp{Feedback: fb, State: h.view(s)})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	s, err := h.UC.Cancel()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, stateResp{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stateResp{State: h.view(s)})
}

// ---- Events ----

// handleEvents streams snapshots as server-sent events until the client
// goes away.
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, stateResp{Error: "streaming unsupported"})
		return
	}
	updates, stop, err := h.UC.Subscribe()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, stateResp{Error: err.Error()})
		return
	}
	defer stop()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(h.view(s))
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
