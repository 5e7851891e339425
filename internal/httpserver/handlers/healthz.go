package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
)

// healthzResponse is liveness only; /readyz decides whether the matrix is
// worth serving.
type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Accounts      int     `json:"accounts"`
	Polling       bool    `json:"polling"`
	Applications  int     `json:"applications"`
	Build         build   `json:"build"`
}

type build struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Date      string `json:"date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

func Healthz(d deps.Deps) http.HandlerFunc {
	b := build{
		Version:   d.Version,
		Commit:    d.Commit,
		Date:      d.BuildDate,
		GoVersion: d.GoVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: time.Since(d.StartTime).Seconds(),
			Accounts:      d.Sessions.Onboarded(),
			Polling:       d.Sessions.PollerRunning(),
			Applications:  d.Matrix.ApplicationCount(),
			Build:         b,
		})
	}
}
