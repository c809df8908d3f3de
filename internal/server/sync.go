package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/arcova/tidalbridge/internal/tasks"
)

// MaxTrackLimit bounds caller-supplied track limits at every trigger
// boundary, HTTP and CLI alike.
const MaxTrackLimit = 500

// Syncer runs a reconciliation pass. Implemented by tasks.Engine.
type Syncer interface {
	SyncArtistsAndAlbums(ctx context.Context, query string, trackLimit int) (*tasks.RunResult, error)
}

// triggerResponse echoes the effective parameters of a manual sync run.
type triggerResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Query      string `json:"query,omitempty"`
	TrackLimit int    `json:"trackLimit,omitempty"`
}

// SyncHandler serves the manual sync trigger and the health probe.
//
// Parameter validation lives here, not in the engine: the engine trusts its
// callers and only applies configured defaults.
type SyncHandler struct {
	engine Syncer
	logger *log.Logger
}

// NewSyncHandler creates a SyncHandler around the given engine.
func NewSyncHandler(engine Syncer, logger *log.Logger) *SyncHandler {
	return &SyncHandler{engine: engine, logger: logger}
}

// Routes returns the patterns this handler serves.
func (h *SyncHandler) Routes() []string {
	return []string{
		"POST /api/sync/trigger",
		"GET /health",
	}
}

// ServeHTTP dispatches to the operation matching the request pattern.
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	h.trigger(w, r)
}

// trigger validates the optional query and trackLimit parameters and runs a
// sync pass synchronously, reporting a structured result. Absent parameters
// fall through to the engine's configured defaults.
func (h *SyncHandler) trigger(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := params.Get("query")
	if params.Has("query") && strings.TrimSpace(query) == "" {
		writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid sync parameters",
			map[string]string{"query": "must not be blank"})
		return
	}

	trackLimit := 0
	if raw := params.Get("trackLimit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid sync parameters",
				map[string]string{"trackLimit": "must be a positive integer"})
			return
		}
		if parsed > MaxTrackLimit {
			writeError(w, r, http.StatusBadRequest, "Validation Failed", "invalid sync parameters",
				map[string]string{"trackLimit": "must not exceed " + strconv.Itoa(MaxTrackLimit)})
			return
		}
		trackLimit = parsed
	}

	result, err := h.engine.SyncArtistsAndAlbums(r.Context(), query, trackLimit)
	if err != nil {
		h.logger.Error("manual sync failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, triggerResponse{
			Status:     "error",
			Message:    "sync failed",
			Query:      query,
			TrackLimit: trackLimit,
		})
		return
	}

	writeJSON(w, http.StatusOK, triggerResponse{
		Status:     "success",
		Message:    "sync completed",
		Query:      result.Query,
		TrackLimit: result.TrackLimit,
	})
}
