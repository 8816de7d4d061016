package api

import (
	"log/slog"
	"net/http"

	"github.com/corporealshift/driftwatcher/internal/drift"
	"github.com/corporealshift/driftwatcher/internal/report"
)

// Handler holds API route handlers. Every request runs a fresh scan so
// responses always reflect the filesystem, never a cache.
type Handler struct {
	eng    *drift.Engine
	target string
}

// NewHandler creates a Handler scanning the given target.
func NewHandler(eng *drift.Engine, target string) *Handler {
	return &Handler{eng: eng, target: target}
}

// Report handles GET /api/report.
//
//	@Summary		Scan tracked documents and report entry statuses
//	@Tags			drift
//	@Produce		json
//	@Success		200	{object}	ReportResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	res, err := h.eng.Scan(r.Context(), h.target)
	if err != nil {
		slog.Error("report scan failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, report.Map(res))
}

// Summary handles GET /api/summary.
//
//	@Summary		Scan tracked documents and return status counts
//	@Tags			drift
//	@Produce		json
//	@Success		200	{object}	SummaryResponse
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	res, err := h.eng.Scan(r.Context(), h.target)
	if err != nil {
		slog.Error("summary scan failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, res.Summary())
}
