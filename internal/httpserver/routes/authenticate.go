package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/mw"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/metrics"
)

func init() { Register("authenticate", registerAuthenticate) }

func registerAuthenticate(r chi.Router, d deps.Deps) {
	limited := r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:             d.OnboardBurst,
			RefillPerIPPerMin: d.OnboardRefillPerMin,
			MaxEntries:        10000,
			TrustProxy:        d.TrustProxy,
			Message:           "too many onboarding attempts",
			OnReject: func(r *http.Request, ip string) {
				metrics.OnboardingsTotal.WithLabelValues(metrics.OnboardRateLimited).Inc()
				d.Logger.Warn("onboarding rate limited", logger.String("ip", ip))
			},
		}),
	)
	h := handlers.Authenticate(d)
	limited.Get("/authenticate", h)
	limited.Post("/authenticate", h)
}
