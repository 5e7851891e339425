package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
)

type componentStatus struct {
	OK           bool   `json:"ok"`
	Applications *int   `json:"applications,omitempty"`
	ActiveSpaces *int   `json:"active_spaces,omitempty"`
	LastObserved string `json:"last_observed,omitempty"`
	Interval     string `json:"interval,omitempty"`
	Onboarded    *int   `json:"onboarded,omitempty"`
	Mode         string `json:"mode,omitempty"`
	Impact       string `json:"impact,omitempty"`
	Error        string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps := d.Matrix.ApplicationCount()
		spaces := d.Matrix.ActiveSpaceCount()
		onboarded := d.Sessions.Onboarded()

		lastObserved := "never"
		if t := d.Matrix.LastObserved(); !t.IsZero() {
			lastObserved = t.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"matrix": {
				OK:           apps > 0,
				Applications: &apps,
				ActiveSpaces: &spaces,
				LastObserved: lastObserved,
			},
			"poller": {
				OK:       d.Sessions.PollerRunning(),
				Interval: d.PollInterval.String(),
			},
			"sessions": {
				OK:        onboarded > 0,
				Onboarded: &onboarded,
			},
			"redis": checkRedis(r.Context(), d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if !components["matrix"].OK || !components["poller"].OK {
		return "critical" // nothing is being monitored
	}
	if redis := components["redis"]; !redis.OK && redis.Mode != "disabled" {
		return "degraded"
	}
	return "monitoring"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "observations-not-mirrored",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "observations-not-mirrored",
			Error:  err.Error(),
		}
	}

	return componentStatus{
		OK:     true,
		Mode:   "mirroring",
		Impact: "observations-mirrored",
	}
}
