package deps

import (
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/status"
)

// Sessions is the onboarding side of the session manager
type Sessions interface {
	Onboard(payload []byte) (int, error)
	Onboarded() int
	PollerRunning() bool
}

type Deps struct {
	Logger              logger.Logger
	StartTime           time.Time
	Version             string
	Commit              string
	BuildDate           string
	GoVersion           string
	AllowedHosts        []string          // Host headers allowed to access the server
	AllowedCIDRS        []string          // IPs allowed to access operational endpoints
	TrustProxy          bool              // true if running behind a trusted reverse proxy
	OnboardBurst        int               // onboarding requests per IP before rate limiting
	OnboardRefillPerMin int               // onboarding tokens refilled per IP per minute
	Matrix              *index.Matrix     // Shared observation matrix
	Projector           *status.Projector // Renders the matrix for /status
	Sessions            Sessions          // Credential onboarding
	PollInterval        time.Duration     // Poll cadence, reported by /infra
	PollTrigger         chan struct{}     // Channel to trigger an immediate poll cycle
	RedisClient         *redis.Client     // nil when the mirror is disabled
	Metrics             http.Handler      // Prometheus scrape handler
}
