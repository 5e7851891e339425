package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready     bool `json:"ready"`
	Onboarded int  `json:"onboarded"`
}

// Readyz reports ready once at least one account completed discovery
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		onboarded := d.Sessions.Onboarded()
		code := http.StatusOK
		if onboarded == 0 {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, readyzResponse{
			Ready:     onboarded > 0,
			Onboarded: onboarded,
		})
	}
}
