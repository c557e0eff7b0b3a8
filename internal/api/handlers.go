// Package api implements the Algiz HTTP API using chi.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/algiz/internal/apperr"
	"github.com/starford/algiz/internal/sdnservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *sdnservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *sdnservice.Service) *Handler {
	return &Handler{svc: svc}
}

// GetSDN handles GET /getsdn. It searches the cached SDN list by name
// substring and returns the count plus a size-limited result page.
func (h *Handler) GetSDN(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	res, err := h.svc.Search(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrInvalidArgument):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrUpstreamUnavailable):
			slog.Error("sdn fetch failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusServiceUnavailable, errorBody("failed to fetch SDN data"))
		case errors.Is(err, apperr.ErrDecodeFailed):
			slog.Error("sdn decode failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("failed to decode SDN data"))
		default:
			slog.Error("search failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Healthz handles GET /healthz. It always answers 200; upstream trouble is
// reported in the body as a degraded status, never as an HTTP failure.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	st := h.svc.Health(r.Context())
	if st.Status != "ok" {
		slog.Warn("health degraded", slog.String("detail", st.Detail))
	}
	writeJSON(w, http.StatusOK, st)
}
