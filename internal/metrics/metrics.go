package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Info fetch results
const (
	ResultOK          = "ok"
	ResultHTTPError   = "http_error"
	ResultBadPayload  = "bad_payload"
	ResultUnreachable = "unreachable"
)

// Onboarding outcomes
const (
	OnboardAccepted    = "accepted"
	OnboardRejected    = "rejected"
	OnboardRateLimited = "rate_limited"
	OnboardLoginFailed = "login_failed"
)

var (
	InfoFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetview_info_fetches_total",
			Help: "Total number of /info requests by result",
		},
		[]string{"result"},
	)

	InfoFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetview_info_fetch_duration_seconds",
			Help:    "Duration of /info requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	PollCyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetview_poll_cycles_total",
			Help: "Total number of completed poll cycles",
		},
	)

	PollEndpointsScanned = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetview_poll_endpoints_scanned",
			Help: "Number of endpoints scanned by the last poll cycle",
		},
	)

	PollCycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fleetview_poll_cycle_duration_seconds",
			Help:    "Duration of poll cycles",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	DiscoveryRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetview_discovery_runs_total",
			Help: "Total number of completed discovery runs",
		},
	)

	DiscoveryErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetview_discovery_errors_total",
			Help: "Total number of platform errors swallowed during discovery",
		},
	)

	ApplicationsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetview_applications_total",
			Help: "Number of applications in the matrix",
		},
	)

	ActiveSpacesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fleetview_active_spaces_total",
			Help: "Number of spaces with at least one discovered application",
		},
	)

	OnboardingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetview_onboardings_total",
			Help: "Total number of credential submissions by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(InfoFetchesTotal)
	prometheus.MustRegister(InfoFetchDuration)
	prometheus.MustRegister(PollCyclesTotal)
	prometheus.MustRegister(PollEndpointsScanned)
	prometheus.MustRegister(PollCycleDuration)
	prometheus.MustRegister(DiscoveryRunsTotal)
	prometheus.MustRegister(DiscoveryErrorsTotal)
	prometheus.MustRegister(ApplicationsTotal)
	prometheus.MustRegister(ActiveSpacesTotal)
	prometheus.MustRegister(OnboardingsTotal)
}

// Handler returns the Prometheus scrape handler
func Handler() http.Handler {
	return promhttp.Handler()
}
