// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	service "github.com/okian/scorecard/internal/app"
	"github.com/okian/scorecard/internal/domain/course"
	"github.com/okian/scorecard/internal/domain/round"
	"github.com/okian/scorecard/internal/domain/types"
	"github.com/okian/scorecard/pkg/logger"
)

const maxBodyBytes = 64 << 10

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider
	RoundDependencies
	ScoreDependencies
	CourseDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	roundsHandler *RoundsHandler
	scoresHandler *ScoresHandler
	watchHandler  *WatchHandler
	courseHandler *CourseHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, watcher Watcher) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
		roundsHandler: NewRoundsHandler(deps),
		scoresHandler: NewScoresHandler(deps),
		watchHandler:  NewWatchHandler(deps, watcher),
		courseHandler: NewCourseHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /courses", MetricsMiddleware(s.courseHandler.HandleListCourses, "courses"))

	mux.HandleFunc("POST /rounds", MetricsMiddleware(s.roundsHandler.HandleStartRound, "rounds"))
	mux.HandleFunc("GET /rounds", MetricsMiddleware(s.roundsHandler.HandleListRounds, "rounds"))
	mux.HandleFunc("GET /rounds/{id}", MetricsMiddleware(s.roundsHandler.HandleGetRound, "round"))
	mux.HandleFunc("DELETE /rounds/{id}", MetricsMiddleware(s.roundsHandler.HandleDiscardRound, "round"))
	mux.HandleFunc("POST /rounds/{id}/advance", MetricsMiddleware(s.roundsHandler.HandleAdvance, "advance"))
	mux.HandleFunc("GET /rounds/{id}/result", MetricsMiddleware(s.roundsHandler.HandleResult, "result"))
	mux.HandleFunc("GET /rounds/{id}/watch", MetricsMiddleware(s.watchHandler.HandleWatch, "watch"))

	mux.HandleFunc("POST /rounds/{id}/scores", MetricsMiddleware(s.scoresHandler.HandleRecordScore, "scores"))
	mux.HandleFunc("PUT /rounds/{id}/players/{player}/holes/{hole}", MetricsMiddleware(s.scoresHandler.HandleEditScore, "score"))
	mux.HandleFunc("POST /rounds/{id}/players/{player}/holes/{hole}/edit", MetricsMiddleware(s.scoresHandler.HandleBeginEdit, "edit"))
	mux.HandleFunc("DELETE /rounds/{id}/edit", MetricsMiddleware(s.scoresHandler.HandleCancelEdit, "edit"))
	mux.HandleFunc("DELETE /rounds/{id}/players/{player}", MetricsMiddleware(s.scoresHandler.HandleRemovePlayer, "player"))
}

// RoundView mirrors the round read shape returned by most endpoints.
type RoundView = types.RoundView

// Course mirrors a catalog entry.
type Course = course.Course

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps an operation error to its HTTP status and error code.
// Round errors expose their message only, without the operation prefix.
func writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	var re *round.Error
	msgErr := err
	if errors.As(err, &re) {
		msgErr = errors.New(re.Msg)
	}

	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case round.IsValidation(err):
		writeError(w, http.StatusBadRequest, "validation_error", msgErr)
	case round.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not_found", msgErr)
	case round.IsInvalidState(err):
		writeError(w, http.StatusConflict, "invalid_state", msgErr)
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		logger.Get().Named("api").Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// decode reads a single JSON document from the request body.
func decode(op string, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return WrapKind(op, ErrBadRequest, errors.New("request body is empty"))
		}
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// pathInt reads an integer path parameter.
func pathInt(op string, r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		return 0, WrapKind(op, ErrBadRequest, errors.New("invalid "+name+" "+strconv.Quote(r.PathValue(name))))
	}
	return n, nil
}

// holeIndex converts the 1-based hole number of the path into an index.
func holeIndex(op string, r *http.Request) (int, error) {
	n, err := pathInt(op, r, "hole")
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}
