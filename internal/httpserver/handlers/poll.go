package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
)

// Poll triggers an immediate poll cycle
func Poll(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case d.PollTrigger <- struct{}{}:
			d.Logger.Info("manual poll triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
		default:
			d.Logger.Warn("poll already queued",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Poll already queued, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
			return
		}

		w.WriteHeader(http.StatusAccepted)
		if !d.Sessions.PollerRunning() {
			// Queued; the cycle runs once the first discovery completes.
			_, _ = w.Write([]byte("✅ Poll queued, poller not started yet\n"))
			return
		}
		if _, err := w.Write([]byte("✅ Poll triggered successfully\n")); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
