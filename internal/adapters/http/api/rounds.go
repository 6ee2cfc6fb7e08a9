package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/internal/domain/types"
)

// RoundDependencies defines the round lifecycle operations.
type RoundDependencies interface {
	StartRound(ctx context.Context, req service.StartRequest) (types.RoundView, error)
	ListRounds(ctx context.Context) ([]types.RoundSummary, error)
	Round(ctx context.Context, id string) (types.RoundView, error)
	DiscardRound(ctx context.Context, id string) error
	Advance(ctx context.Context, id string) (types.RoundView, error)
	Result(ctx context.Context, id string) (types.ResultView, error)
}

// startRoundRequest mirrors the OpenAPI schema for POST /rounds.
type startRoundRequest struct {
	Players []string `json:"players"`
	// Pars accepts numbers or numeric strings, like strokes.
	Pars       []json.RawMessage `json:"pars,omitempty"`
	Course     string            `json:"course,omitempty"`
	Difficulty string            `json:"difficulty,omitempty"`
	OrderMode  string            `json:"order_mode,omitempty"`
}

// pars returns nil when no pars were sent so the course catalog applies.
func (s startRoundRequest) pars() ([]int, error) {
	if s.Pars == nil {
		return nil, nil
	}
	out := make([]int, len(s.Pars))
	for i, raw := range s.Pars {
		par, err := round.ParsePar(i+1, numberText(raw))
		if err != nil {
			return nil, err
		}
		out[i] = par
	}
	return out, nil
}

// RoundsHandler handles round requests.
type RoundsHandler struct {
	deps RoundDependencies
}

// NewRoundsHandler creates a new rounds handler.
func NewRoundsHandler(deps RoundDependencies) *RoundsHandler {
	return &RoundsHandler{deps: deps}
}

// HandleStartRound handles POST /rounds requests.
func (h *RoundsHandler) HandleStartRound(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_round"
	var req startRoundRequest
	if err := decode(op, r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	pars, err := req.pars()
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	view, err := h.deps.StartRound(r.Context(), service.StartRequest{
		Players:    req.Players,
		Pars:       pars,
		Course:     req.Course,
		Difficulty: req.Difficulty,
		OrderMode:  req.OrderMode,
	})
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	w.Header().Set("Location", "/rounds/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// HandleListRounds handles GET /rounds requests.
func (h *RoundsHandler) HandleListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.deps.ListRounds(r.Context())
	if err != nil {
		writeFailure(w, r, "api.list_rounds", err)
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

// HandleGetRound handles GET /rounds/{id} requests.
func (h *RoundsHandler) HandleGetRound(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Round(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.get_round", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDiscardRound handles DELETE /rounds/{id} requests.
func (h *RoundsHandler) HandleDiscardRound(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DiscardRound(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, r, "api.discard_round", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdvance handles POST /rounds/{id}/advance requests.
func (h *RoundsHandler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Advance(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.advance", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleResult handles GET /rounds/{id}/result requests.
func (h *RoundsHandler) HandleResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.result", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
