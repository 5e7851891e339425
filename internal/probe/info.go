package probe

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/metrics"
	"github.com/MrSnakeDoc/fleetview/internal/utils"
	"github.com/MrSnakeDoc/fleetview/internal/version"
)

// maxInfoBody bounds the size of an /info payload.
const maxInfoBody = 1 << 20

// Client fetches /info payloads from service instances.
type Client struct {
	http    *http.Client
	timeout time.Duration
}

// New creates an info client. Every request is bounded by timeout.
func New(timeout time.Duration, skipTLSValidation bool) *Client {
	return &Client{
		timeout: timeout,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS12,
					InsecureSkipVerify: skipTLSValidation, //nolint:gosec
				},
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// Fetch returns the /info payload at url with ok=true, or a failure sentinel
// with ok=false. A non-2xx answer or a body that is not a JSON object yields
// domain.Failure(status); a request that never completed yields
// domain.Failure(0).
func (c *Client) Fetch(ctx context.Context, url string) (domain.Observation, bool) {
	start := time.Now()
	obs, result := c.fetch(ctx, url)
	metrics.InfoFetchDuration.Observe(time.Since(start).Seconds())
	metrics.InfoFetchesTotal.WithLabelValues(result).Inc()
	return obs, result == metrics.ResultOK
}

func (c *Client) fetch(ctx context.Context, url string) (domain.Observation, string) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return domain.Failure(0), metrics.ResultUnreachable
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Failure(0), metrics.ResultUnreachable
	}
	defer utils.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Failure(resp.StatusCode), metrics.ResultHTTPError
	}

	var payload any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxInfoBody)).Decode(&payload); err != nil {
		// A body cut short by the deadline never completed.
		if isTimeout(err) {
			return domain.Failure(0), metrics.ResultUnreachable
		}
		return domain.Failure(resp.StatusCode), metrics.ResultBadPayload
	}
	object, ok := payload.(map[string]any)
	if !ok {
		return domain.Failure(resp.StatusCode), metrics.ResultBadPayload
	}

	return domain.Observation(object), metrics.ResultOK
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
