// internal/app/features/availability/routes.go
package availability

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter that serves the availability endpoints.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Put("/{scopeID}/{userID}", h.Submit)
	r.Get("/{scopeID}", h.List)
	r.Delete("/{scopeID}", h.Purge)
	return r
}
