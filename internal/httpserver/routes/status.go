package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/mw"
)

func init() { Register("status", registerStatus) }

func registerStatus(r chi.Router, d deps.Deps) {
	r.With(mw.EnforceHost(d.AllowedHosts, d.Logger)).Get("/status", handlers.Status(d))
}
