// internal/app/features/events/routes.go
package events

import (
	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/schedhub/internal/app/system/ratelimit"
)

// Routes returns a subrouter that serves the event endpoints. joinLimiter
// throttles the roster mutations per client IP; reads are unthrottled.
func Routes(h *Handler, joinLimiter *ratelimit.Limiter) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.ListByScope)
	r.Get("/share/{code}", h.GetByShareCode)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/candidates", h.Candidates)
		r.Post("/confirm", h.Confirm)
		r.Get("/roster", h.RosterView)

		r.Group(func(r chi.Router) {
			r.Use(joinLimiter.Middleware)
			r.Post("/join", h.Join)
			r.Post("/cancel", h.Cancel)
		})
	})

	return r
}
