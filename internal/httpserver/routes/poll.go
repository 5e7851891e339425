package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/mw"
)

func init() { Register("poll", registerPoll) }

func registerPoll(r chi.Router, d deps.Deps) {
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger), mw.EnforceHost(d.AllowedHosts, d.Logger)).Post("/poll", handlers.Poll(d))
}
