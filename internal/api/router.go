package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corporealshift/driftwatcher/internal/drift"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(eng *drift.Engine, target string, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(eng, target)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Drift state.
	r.Get("/report", h.Report)
	r.Get("/summary", h.Summary)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
