package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/httpserver/deps"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
)

// maxCredentialsBody bounds a POSTed credential submission
const maxCredentialsBody = 64 << 10

type authenticateResponse struct {
	Accepted int    `json:"accepted,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Authenticate onboards the credential records found in the "credentials"
// query parameter, or in the request body of a POST.
// Discovery runs in the background; the response only reflects parsing.
func Authenticate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := credentialsPayload(r)
		if err != nil {
			d.Logger.Debug("failed to read credentials", logger.Error(err))
			writeJSON(w, http.StatusBadRequest, authenticateResponse{Error: "unreadable request"})
			return
		}

		n, err := d.Sessions.Onboard(payload)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				d.Logger.Error("onboarding failed", logger.Error(err))
			}
			d.Logger.Info("rejected credential submission",
				logger.String("remote_ip", r.RemoteAddr),
				logger.Error(err))
			writeJSON(w, http.StatusUnauthorized, authenticateResponse{Error: "login failed"})
			return
		}

		d.Logger.Info("accepted credential submission",
			logger.String("remote_ip", r.RemoteAddr),
			logger.Int("accounts", n))
		writeJSON(w, http.StatusAccepted, authenticateResponse{Accepted: n})
	}
}

func credentialsPayload(r *http.Request) ([]byte, error) {
	if q := r.URL.Query().Get("credentials"); q != "" {
		return []byte(q), nil
	}
	if r.Method != http.MethodPost {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(r.Body, maxCredentialsBody))
}
