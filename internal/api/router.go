package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/algiz/internal/sdnservice"
)

// NewRouter creates a chi router with the API routes mounted at the root.
// sseHandler, if non-nil, is mounted at GET /events.
func NewRouter(svc *sdnservice.Service, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()

	r.Get("/getsdn", h.GetSDN)
	r.Get("/healthz", h.Healthz)

	// Bare liveness probe; never touches the cache.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
