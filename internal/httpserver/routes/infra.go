package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/mw"
)

func init() { Register("infra", registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
		r.Get("/infra", handlers.Infra(d))
		if d.Metrics != nil {
			r.Method("GET", "/metrics", d.Metrics)
		}
	})
}
