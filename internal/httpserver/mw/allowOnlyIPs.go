package mw

import (
	"net/http"

	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/utils"
)

// AllowOnlyCIDRS allows only specific IPs/CIDRs. An empty list disables filtering.
// trustProxy should be true when running behind the platform router.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewIPMatcher(allowed)
	if m.IsEmpty() {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := utils.ClientIP(r, trustProxy)
			if !m.Allow(ip) {
				log.Warn("rejected request from unlisted address",
					logger.String("ip", ip),
					logger.String("path", r.URL.Path),
					logger.Bool("trust_proxy", trustProxy))
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
