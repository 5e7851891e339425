package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/sources/cloudfoundry/cftest"
)

// fakeInfo answers with a fixed observation per URL, sentinel 0 otherwise
type fakeInfo struct {
	mu      sync.Mutex
	answers map[string]domain.Observation
	calls   []string
}

func (f *fakeInfo) Fetch(_ context.Context, url string) (domain.Observation, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, url)
	if obs, ok := f.answers[url]; ok {
		return obs.Clone(), true
	}
	return domain.Failure(0), false
}

func release(branch, version string) domain.Observation {
	return domain.Observation{domain.BranchField: branch, domain.VersionField: version}
}

func foundation() *cftest.Foundation {
	return cftest.NewFoundation("https://api.sys.example.com",
		cftest.Org{
			Name: "O",
			Spaces: []cftest.Space{
				{Name: "dev", Apps: []cftest.App{
					{Name: "checkout-dev", Routes: []domain.Route{{Host: "checkout-dev", Domain: "example.com"}}},
					// suffix names a space of another organization
					{Name: "billing-prod", Routes: []domain.Route{{Host: "billing-dev", Domain: "example.com"}}},
				}},
				{Name: "staging"},
				{Name: "prod", Apps: []cftest.App{
					{Name: "checkout-prod", Routes: []domain.Route{
						{Host: "checkout", Domain: "example.com"},
						{Host: "checkout-alt", Domain: "example.com"},
					}},
					{Name: "auth-worker", Routes: []domain.Route{{Host: "auth", Domain: "example.com"}}},
					{Name: "cart-prod"},
					{Name: "standalone", Routes: []domain.Route{{Host: "standalone", Domain: "example.com"}}},
				}},
			},
		},
	)
}

func discover(t *testing.T, cf *cftest.Foundation, info InfoFetcher) (*index.Matrix, Result) {
	t.Helper()

	m := index.NewMatrix()
	res, err := NewResolver(m, info, logger.Nop()).Discover(context.Background(), cf)
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	return m, res
}

func TestDiscoverRegistersSuffixedApplications(t *testing.T) {
	cf := foundation()

	info := &fakeInfo{answers: map[string]domain.Observation{
		"http://checkout.example.com/info":     release("refs/heads/main", "1.2.0-SNAPSHOT"),
		"http://checkout-dev.example.com/info": release("refs/heads/feature/x", "1.3.0"),
	}}

	m, res := discover(t, cf, info)

	if res.Organizations != 1 || res.Spaces != 3 || res.Applications != 6 {
		t.Errorf("Discover() counters = %+v", res)
	}

	snap := m.Snapshot()
	want := []string{"checkout", "billing"}
	if len(snap.Applications) != len(want) {
		t.Fatalf("Applications = %v, want %v", snap.Applications, want)
	}
	for i, app := range want {
		if snap.Applications[i] != app {
			t.Errorf("Applications[%d] = %s, want %s", i, snap.Applications[i], app)
		}
	}

	if url, _ := m.Endpoint("checkout", "prod"); url != "http://checkout.example.com/info" {
		t.Errorf("Endpoint(checkout, prod) = %s, want the first route", url)
	}
	if url, _ := m.Endpoint("billing", "dev"); url != "http://billing-dev.example.com/info" {
		t.Errorf("Endpoint(billing, dev) = %s", url)
	}

	if got := domain.Label(snap.Cells["checkout"]["prod"]); got != "heads/main/1.2.0" {
		t.Errorf("Label(checkout, prod) = %s", got)
	}
	if snap.Spaces["prod"] != 1 || snap.Spaces["dev"] != 1 || snap.Spaces["staging"] != 0 {
		t.Errorf("Spaces = %v", snap.Spaces)
	}
}

func TestDiscoverSkipsApplications(t *testing.T) {
	cf := foundation()

	m, res := discover(t, cf, &fakeInfo{})

	// auth-worker: unknown suffix, standalone: no dash, cart-prod: no route
	if res.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", res.Skipped)
	}
	for _, app := range []string{"auth", "standalone", "cart"} {
		if _, ok := m.Endpoint(app, "prod"); ok {
			t.Errorf("%s should not have been registered", app)
		}
	}
}

func TestDiscoverLeavesFailedCellsEmpty(t *testing.T) {
	cf := foundation()

	m, res := discover(t, cf, &fakeInfo{})

	if res.Registered != 3 || res.Observed != 0 {
		t.Errorf("Registered = %d, Observed = %d, want 3 and 0", res.Registered, res.Observed)
	}
	if _, ok := m.Observation("checkout", "prod"); ok {
		t.Error("a failed first request must not store an observation")
	}
	if m.ActiveSpaceCount() != 0 {
		t.Errorf("ActiveSpaceCount() = %d, want 0", m.ActiveSpaceCount())
	}
	if len(m.Targets()) != 0 {
		t.Errorf("Targets() = %v, want none while every space is inactive", m.Targets())
	}
}

func TestDiscoverContinuesAfterPlatformErrors(t *testing.T) {
	cf := foundation()

	cf.FailApplications(cftest.SpaceGUID(0, 0))

	info := &fakeInfo{answers: map[string]domain.Observation{
		"http://checkout.example.com/info": release("main", "1.0"),
	}}
	m, res := discover(t, cf, info)

	if res.Errors != 1 {
		t.Errorf("Errors = %d, want 1", res.Errors)
	}
	if _, ok := m.Observation("checkout", "prod"); !ok {
		t.Error("prod applications should still be discovered")
	}
	if _, ok := m.Endpoint("checkout", "dev"); ok {
		t.Error("dev applications should have been skipped")
	}
}

func TestDiscoverKeepsTheFirstEndpointOfACell(t *testing.T) {
	region := func(host string) *cftest.Foundation {
		return cftest.NewFoundation("https://api."+host+".example.com", cftest.Org{
			Name: "O",
			Spaces: []cftest.Space{
				{Name: "prod", Apps: []cftest.App{
					{Name: "checkout-prod", Routes: []domain.Route{{Host: host, Domain: "example.com"}}},
				}},
			},
		})
	}
	eu, us := region("eu"), region("us")

	info := &fakeInfo{answers: map[string]domain.Observation{
		"http://eu.example.com/info": release("main", "1.0"),
		"http://us.example.com/info": release("main", "2.0"),
	}}

	m := index.NewMatrix()
	r := NewResolver(m, info, logger.Nop())
	for _, cf := range []*cftest.Foundation{eu, us} {
		if _, err := r.Discover(context.Background(), cf); err != nil {
			t.Fatalf("Discover(%s) error = %v", cf.Gate, err)
		}
	}

	if url, _ := m.Endpoint("checkout", "prod"); url != "http://eu.example.com/info" {
		t.Errorf("Endpoint(checkout, prod) = %s, want the first registered one", url)
	}
	obs, _ := m.Observation("checkout", "prod")
	if got := domain.Label(obs); got != "main/1.0" {
		t.Errorf("Label(checkout, prod) = %s, want main/1.0 from the registered endpoint", got)
	}
	for _, url := range info.calls {
		if url == "http://us.example.com/info" {
			t.Errorf("fetched %s, which is not the endpoint of the cell", url)
		}
	}
}

func TestDiscoverKeepsPayloadsThatLookLikeFailures(t *testing.T) {
	cf := foundation()

	info := &fakeInfo{answers: map[string]domain.Observation{
		"http://checkout.example.com/info": release("ERROR", "7.1"),
	}}
	m, res := discover(t, cf, info)

	if res.Observed != 1 {
		t.Errorf("Observed = %d, want 1", res.Observed)
	}
	obs, ok := m.Observation("checkout", "prod")
	if !ok || domain.Label(obs) != "ERROR/7.1" {
		t.Errorf("Observation(checkout, prod) = %v, want the answered payload", obs)
	}
}

type brokenPlatform struct{}

func (brokenPlatform) Organizations(context.Context) ([]domain.Organization, error) {
	return nil, errors.New("boom")
}

func (brokenPlatform) Spaces(context.Context, domain.Organization) ([]domain.Space, error) {
	return nil, nil
}

func (brokenPlatform) Applications(context.Context, domain.Space) ([]domain.PlatformApp, error) {
	return nil, nil
}

func (brokenPlatform) Routes(context.Context, domain.PlatformApp) ([]domain.Route, error) {
	return nil, nil
}

func TestDiscoverFailsWithoutOrganizations(t *testing.T) {
	r := NewResolver(index.NewMatrix(), &fakeInfo{}, logger.Nop())
	if _, err := r.Discover(context.Background(), brokenPlatform{}); err == nil {
		t.Error("Discover() should fail when organizations cannot be listed")
	}
}
