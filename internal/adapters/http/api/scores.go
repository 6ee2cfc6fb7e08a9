package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/internal/domain/types"
)

// idempotencyHeader carries the request id when the body does not.
const idempotencyHeader = "Idempotency-Key"

// ScoreDependencies defines the score and player operations.
type ScoreDependencies interface {
	RecordScore(ctx context.Context, id string, strokes int, requestID string) (types.RoundView, error)
	EditScore(ctx context.Context, id string, playerID, holeIndex, strokes int) (types.RoundView, error)
	BeginEdit(ctx context.Context, id string, playerID, holeIndex int) (types.RoundView, error)
	CancelEdit(ctx context.Context, id string) (types.RoundView, error)
	RemovePlayer(ctx context.Context, id string, playerID int) (types.RoundView, error)
}

// scoreRequest mirrors the OpenAPI schema for score submissions. Strokes may
// be a JSON number or the text typed by the player.
type scoreRequest struct {
	Strokes   json.RawMessage `json:"strokes"`
	RequestID string          `json:"request_id,omitempty"`
}

func (s scoreRequest) strokes() (int, error) {
	return round.ParseStrokes(numberText(s.Strokes))
}

// numberText returns the text of a JSON number or string. Anything else
// yields "", which the round parsers reject as a validation error.
func numberText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return ""
		}
		return text
	}
	return string(raw)
}

// ScoresHandler handles score and player requests.
type ScoresHandler struct {
	deps ScoreDependencies
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreDependencies) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleRecordScore handles POST /rounds/{id}/scores requests.
func (h *ScoresHandler) HandleRecordScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_score"
	var req scoreRequest
	if err := decode(op, r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	strokes, err := req.strokes()
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	requestID := req.RequestID
	if requestID == "" {
		requestID = r.Header.Get(idempotencyHeader)
	}

	view, err := h.deps.RecordScore(r.Context(), r.PathValue("id"), strokes, requestID)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleEditScore handles PUT /rounds/{id}/players/{player}/holes/{hole} requests.
func (h *ScoresHandler) HandleEditScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.edit_score"
	playerID, hole, err := scoreRef(op, r)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	var req scoreRequest
	if err := decode(op, r, &req); err != nil {
		writeFailure(w, r, op, err)
		return
	}
	strokes, err := req.strokes()
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}

	view, err := h.deps.EditScore(r.Context(), r.PathValue("id"), playerID, hole, strokes)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleBeginEdit handles POST /rounds/{id}/players/{player}/holes/{hole}/edit requests.
func (h *ScoresHandler) HandleBeginEdit(w http.ResponseWriter, r *http.Request) {
	const op = "api.begin_edit"
	playerID, hole, err := scoreRef(op, r)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	view, err := h.deps.BeginEdit(r.Context(), r.PathValue("id"), playerID, hole)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleCancelEdit handles DELETE /rounds/{id}/edit requests.
func (h *ScoresHandler) HandleCancelEdit(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.CancelEdit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, "api.cancel_edit", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleRemovePlayer handles DELETE /rounds/{id}/players/{player} requests.
func (h *ScoresHandler) HandleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_player"
	playerID, err := pathInt(op, r, "player")
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	view, err := h.deps.RemovePlayer(r.Context(), r.PathValue("id"), playerID)
	if err != nil {
		writeFailure(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func scoreRef(op string, r *http.Request) (playerID, hole int, err error) {
	if playerID, err = pathInt(op, r, "player"); err != nil {
		return 0, 0, err
	}
	if hole, err = holeIndex(op, r); err != nil {
		return 0, 0, err
	}
	return playerID, hole, nil
}
