package api

import (
	"context"
	"net/http"

	"github.com/okian/scorecard/internal/adapters/ws"
	"github.com/okian/scorecard/internal/domain/types"
)

// Watcher streams round views to WebSocket subscribers.
type Watcher interface {
	ServeRound(w http.ResponseWriter, r *http.Request, roundID string, initial ws.InitialFunc) error
}

// WatchDependencies provides the view a new subscriber starts from.
type WatchDependencies interface {
	Round(ctx context.Context, id string) (types.RoundView, error)
}

// WatchHandler handles scoreboard feed requests.
type WatchHandler struct {
	deps    WatchDependencies
	watcher Watcher
}

// NewWatchHandler creates a new watch handler.
func NewWatchHandler(deps WatchDependencies, watcher Watcher) *WatchHandler {
	return &WatchHandler{deps: deps, watcher: watcher}
}

// HandleWatch handles GET /rounds/{id}/watch requests.
func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.watch"
	if h.watcher == nil {
		writeError(w, http.StatusNotImplemented, "unavailable", nil)
		return
	}
	id := r.PathValue("id")
	err := h.watcher.ServeRound(w, r, id, func(ctx context.Context) (types.RoundView, error) {
		return h.deps.Round(ctx, id)
	})
	if err != nil {
		writeFailure(w, r, op, err)
	}
}
