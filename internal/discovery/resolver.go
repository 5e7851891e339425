package discovery

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/metrics"
)

// Platform is the read-only view of a platform account walked by discovery.
type Platform interface {
	Organizations(ctx context.Context) ([]domain.Organization, error)
	Spaces(ctx context.Context, org domain.Organization) ([]domain.Space, error)
	Applications(ctx context.Context, space domain.Space) ([]domain.PlatformApp, error)
	Routes(ctx context.Context, app domain.PlatformApp) ([]domain.Route, error)
}

// InfoFetcher fetches the /info payload of an endpoint. It never fails:
// failures come back as sentinel observations with ok=false.
type InfoFetcher interface {
	Fetch(ctx context.Context, url string) (obs domain.Observation, ok bool)
}

// Result counts what one discovery run saw
type Result struct {
	Organizations int
	Spaces        int
	Applications  int // raw platform applications seen
	Registered    int // applications that got an endpoint
	Observed      int // of which answered the first /info request
	Skipped       int // no space suffix, or no route
	Errors        int // platform errors swallowed
}

// Resolver walks the organization -> space -> application -> route hierarchy
// of one platform account and populates the matrix.
type Resolver struct {
	matrix *index.Matrix
	info   InfoFetcher
	logger logger.Logger
}

// NewResolver creates a resolver writing into matrix
func NewResolver(matrix *index.Matrix, info InfoFetcher, log logger.Logger) *Resolver {
	return &Resolver{
		matrix: matrix,
		info:   info,
		logger: log,
	}
}

// Discover runs one full discovery. Only a failure to list organizations is
// returned; every error below that level is logged and skipped.
func (r *Resolver) Discover(ctx context.Context, platform Platform) (Result, error) {
	var res Result

	orgs, err := platform.Organizations(ctx)
	if err != nil {
		return res, fmt.Errorf("discovery aborted: %w", err)
	}
	res.Organizations = len(orgs)

	// Register every space first so that application suffixes can be
	// matched against spaces of any organization.
	var spaces []domain.Space
	for _, org := range orgs {
		orgSpaces, err := platform.Spaces(ctx, org)
		if err != nil {
			platformError(&res, r.logger.With(logger.String("org", org.Name)), "failed to list spaces", err)
			continue
		}
		for _, space := range orgSpaces {
			r.matrix.RegisterSpace(space.Name)
			spaces = append(spaces, space)
		}
	}
	res.Spaces = len(spaces)

	for _, space := range spaces {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		apps, err := platform.Applications(ctx, space)
		if err != nil {
			platformError(&res, r.logger.With(logger.String("space", space.Name)), "failed to list applications", err)
			continue
		}
		res.Applications += len(apps)

		for _, app := range apps {
			r.resolveApp(ctx, platform, space, app, &res)
		}
	}

	metrics.DiscoveryRunsTotal.Inc()
	metrics.ApplicationsTotal.Set(float64(r.matrix.ApplicationCount()))
	metrics.ActiveSpacesTotal.Set(float64(r.matrix.ActiveSpaceCount()))

	return res, nil
}

// resolveApp registers one platform application if it follows the
// "{base}-{space}" naming convention and has at least one route
func (r *Resolver) resolveApp(ctx context.Context, platform Platform, space domain.Space, app domain.PlatformApp, res *Result) {
	base, suffix, ok := domain.SplitAppName(app.Name)
	if !ok || !r.matrix.HasSpace(suffix) {
		r.logger.Debug("skipping application without space suffix",
			logger.String("app", app.Name),
			logger.String("space", space.Name))
		res.Skipped++
		return
	}

	routes, err := platform.Routes(ctx, app)
	if err != nil {
		platformError(res, r.logger.With(
			logger.String("app", app.Name),
			logger.String("space", space.Name)), "failed to read routes", err)
		return
	}
	if len(routes) == 0 {
		r.logger.Debug("skipping application without route",
			logger.String("app", app.Name),
			logger.String("space", space.Name))
		res.Skipped++
		return
	}

	url := routes[0].InfoURL()
	r.matrix.RegisterApplication(base)
	if !r.matrix.RegisterEndpoint(base, space.Name, url) {
		// Another account registered this cell first; its endpoint stays.
		registered, _ := r.matrix.Endpoint(base, space.Name)
		r.logger.Debug("keeping registered endpoint",
			logger.String("app", base),
			logger.String("space", space.Name),
			logger.String("endpoint", registered),
			logger.String("ignored", url))
		url = registered
	}
	res.Registered++

	obs, ok := r.info.Fetch(ctx, url)
	if !ok {
		// Left empty; the poller fills it once the space is active.
		r.logger.Debug("initial /info request failed",
			logger.String("app", base),
			logger.String("space", space.Name),
			logger.String("url", url),
			logger.String("label", domain.Label(obs)))
		return
	}

	r.matrix.Observe(base, space.Name, obs)
	r.matrix.IncrementSpace(space.Name)
	res.Observed++

	r.logger.Debug("discovered application",
		logger.String("app", base),
		logger.String("space", space.Name),
		logger.String("url", url))
}

func platformError(res *Result, log logger.Logger, msg string, err error) {
	res.Errors++
	metrics.DiscoveryErrorsTotal.Inc()
	log.Warn(msg, logger.Error(err))
}
