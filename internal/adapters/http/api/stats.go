package api

import (
	"maps"
	"net/http"
	"time"
)

// StatsProvider reports service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
	started  time.Time
}

// NewStatsHandler creates a stats handler backed by provider.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider, started: time.Now()}
}

// HandleStats writes the provider's statistics plus the handler uptime.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	stats := maps.Clone(h.provider.GetStats())
	if stats == nil {
		stats = map[string]interface{}{}
	}
	stats["uptimeSeconds"] = int64(time.Since(h.started).Seconds())
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, stats)
}
