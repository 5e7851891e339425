package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/fleetview/internal/discovery"
	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/metrics"
)

// CycleHook is called after every poll cycle with the number of endpoints scanned
type CycleHook func(ctx context.Context, scanned int)

// Poller periodically refreshes every observation of the matrix
type Poller struct {
	matrix        *index.Matrix
	info          discovery.InfoFetcher
	logger        logger.Logger
	interval      time.Duration
	concurrency   int
	manualTrigger <-chan struct{}
	hooks         []CycleHook
}

// NewPoller creates a new poller. manualTrigger may be nil.
func NewPoller(
	matrix *index.Matrix,
	info discovery.InfoFetcher,
	log logger.Logger,
	interval time.Duration,
	concurrency int,
	manualTrigger <-chan struct{},
) *Poller {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Poller{
		matrix:        matrix,
		info:          info,
		logger:        log,
		interval:      interval,
		concurrency:   concurrency,
		manualTrigger: manualTrigger,
	}
}

// OnCycle registers a hook run after each cycle. Must be called before Run.
func (p *Poller) OnCycle(hook CycleHook) {
	p.hooks = append(p.hooks, hook)
}

// Run polls every interval until ctx is cancelled. The first cycle starts
// after one interval; discovery has just fetched every endpoint.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller started",
		logger.Duration("interval", p.interval),
		logger.Int("concurrency", p.concurrency))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.RunCycle(ctx)
		case <-p.manualTrigger:
			p.logger.Info("manual poll triggered")
			p.RunCycle(ctx)
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		}
	}
}

// RunCycle fetches every target once and overwrites its observation.
// It returns the number of endpoints scanned. Once ctx is cancelled, answers
// still in flight are dropped and the hooks are skipped.
func (p *Poller) RunCycle(ctx context.Context) int {
	start := time.Now()
	targets := p.matrix.Targets()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for _, target := range targets {
		g.Go(func() error {
			obs, _ := p.info.Fetch(gctx, target.URL)
			if ctx.Err() != nil {
				return nil
			}
			p.matrix.Observe(target.App, target.Space, obs)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		p.logger.Info("poll cycle interrupted",
			logger.Int("targets", len(targets)),
			logger.Error(err))
		return 0
	}

	elapsed := time.Since(start)
	metrics.PollCyclesTotal.Inc()
	metrics.PollEndpointsScanned.Set(float64(len(targets)))
	metrics.PollCycleDuration.Observe(elapsed.Seconds())

	p.logger.Info("finished poll cycle",
		logger.Int("scanned", len(targets)),
		logger.Duration("took", elapsed))

	for _, hook := range p.hooks {
		hook(ctx, len(targets))
	}

	return len(targets)
}
