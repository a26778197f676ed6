package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter constructs the API HTTP router. authMW resolves the caller's
// identity (bearer token in production, debug header in dev).
func NewRouter(srv *Server, authMW func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	// Infra endpoints stay unauthenticated.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Get("/targets", srv.handleReloadTargets)
		r.Post("/targets/submit", srv.handleSubmit)
		r.Post("/targets/edit/{personID}", srv.handleBeginEdit)
		r.Delete("/targets/edit", srv.handleCancelEdit)
		r.Post("/targets/delete/confirm", srv.handleConfirmDelete)
		r.Delete("/targets/delete", srv.handleCancelDelete)
		r.Post("/targets/{personID}/delete", srv.handleRequestDelete)
		r.Post("/targets/expanded/{group}/{personID}", srv.handleToggleExpanded)

		r.Get("/books", srv.handleListBooks)
		r.Post("/books", srv.handleAddBook)
		r.Patch("/books/{bookID}", srv.handlePatchBook)
		r.Delete("/books/{bookID}", srv.handleDeleteBook)
	})

	return r
}
