package routes

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	name string
	reg  Registrar
	mws  []Middleware
}

var registry []entry

// Register adds a named group of endpoints from an init() function.
// mws wrap every endpoint of the group.
func Register(name string, reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{name: name, reg: reg, mws: mws})
}

// Names lists the registered groups, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, e := range registry {
		names = append(names, e.name)
	}
	slices.Sort(names)
	return names
}

// RegisterAll mounts every group on r. Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		target := r
		if len(e.mws) > 0 {
			target = r.With(e.mws...)
		}
		e.reg(target, d)
		d.Logger.Debug("registered routes", logger.String("group", e.name))
	}
}
