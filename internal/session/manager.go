package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/fleetview/internal/discovery"
	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/metrics"
)

// Connector authenticates a credential against its platform account
type Connector interface {
	Connect(ctx context.Context, cred domain.Credential) (discovery.Platform, error)
}

// ConnectorFunc adapts a function to Connector
type ConnectorFunc func(ctx context.Context, cred domain.Credential) (discovery.Platform, error)

func (f ConnectorFunc) Connect(ctx context.Context, cred domain.Credential) (discovery.Platform, error) {
	return f(ctx, cred)
}

// Discoverer populates the matrix from one platform account
type Discoverer interface {
	Discover(ctx context.Context, platform discovery.Platform) (discovery.Result, error)
}

// Loop is the polling loop. Run blocks until ctx is cancelled.
type Loop interface {
	Run(ctx context.Context)
}

// Manager onboards credential sets. Each record gets its own discovery
// goroutine; the first one to complete discovery runs the poll loop, the
// others exit once discovery is done.
type Manager struct {
	ctx       context.Context
	connector Connector
	resolver  Discoverer
	poller    Loop
	logger    logger.Logger

	polling   atomic.Bool
	onboarded atomic.Int64
	wg        sync.WaitGroup
}

// NewManager creates a manager. Background work is bound to ctx, not to the
// request that submitted the credentials.
func NewManager(
	ctx context.Context,
	connector Connector,
	resolver Discoverer,
	poller Loop,
	log logger.Logger,
) *Manager {
	return &Manager{
		ctx:       ctx,
		connector: connector,
		resolver:  resolver,
		poller:    poller,
		logger:    log,
	}
}

// Onboard parses a credential submission and starts discovery for every
// record. It returns the number of records accepted. A malformed submission
// returns an error wrapping domain.ErrInvalidCredentials and starts nothing.
func (m *Manager) Onboard(payload []byte) (int, error) {
	creds, err := domain.ParseCredentials(payload)
	if err != nil {
		metrics.OnboardingsTotal.WithLabelValues(metrics.OnboardRejected).Inc()
		return 0, err
	}
	return m.OnboardRecords(creds), nil
}

// OnboardRecords starts discovery for already parsed credentials
func (m *Manager) OnboardRecords(creds []domain.Credential) int {
	for _, cred := range creds {
		if cred.Interval != "" {
			m.logger.Debug("ignoring per-account interval, the poll interval is global",
				logger.String("account", cred.String()),
				logger.String("interval", cred.Interval))
		}

		metrics.OnboardingsTotal.WithLabelValues(metrics.OnboardAccepted).Inc()
		m.wg.Add(1)
		go m.run(cred)
	}
	return len(creds)
}

// PollerRunning reports whether the poll loop has been started
func (m *Manager) PollerRunning() bool {
	return m.polling.Load()
}

// Onboarded returns the number of accounts whose discovery completed
func (m *Manager) Onboarded() int {
	return int(m.onboarded.Load())
}

// Wait blocks until every discovery and the poll loop have returned
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) run(cred domain.Credential) {
	defer m.wg.Done()

	log := m.logger.With(logger.String("account", cred.String()))

	platform, err := m.connector.Connect(m.ctx, cred)
	if err != nil {
		log.Error("failed to authenticate", logger.Error(err))
		metrics.OnboardingsTotal.WithLabelValues(metrics.OnboardLoginFailed).Inc()
		return
	}

	res, err := m.resolver.Discover(m.ctx, platform)
	if err != nil {
		log.Error("discovery failed", logger.Error(err))
		return
	}
	m.onboarded.Add(1)

	log.Info("discovery completed",
		logger.Int("organizations", res.Organizations),
		logger.Int("spaces", res.Spaces),
		logger.Int("applications", res.Applications),
		logger.Int("registered", res.Registered),
		logger.Int("skipped", res.Skipped),
		logger.Int("errors", res.Errors))

	if !m.tryBecomePoller() {
		log.Debug("poller already running")
		return
	}

	log.Info("starting poller")
	m.poller.Run(m.ctx)
}

func (m *Manager) tryBecomePoller() bool {
	return m.polling.CompareAndSwap(false, true)
}
