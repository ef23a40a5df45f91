// Package httpapi assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the onboarding routes.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"onboard/pkg/platform/httputil"
	"onboard/pkg/platform/middleware/metadata"
	"onboard/pkg/platform/middleware/requesttime"
)

// Registrar mounts a module's routes onto the router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the application router. Every registrar's routes run behind
// the shared middleware chain.
func NewRouter(registrars ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, registrar := range registrars {
		registrar.Register(r)
	}
	return r
}
