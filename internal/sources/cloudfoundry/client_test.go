package cloudfoundry

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	cfclient "github.com/cloudfoundry/go-cfclient/v3/client"
	"github.com/cloudfoundry/go-cfclient/v3/resource"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
)

type fakeOrgs struct {
	orgs  []*resource.Organization
	err   error
	pages int
}

func (f *fakeOrgs) List(_ context.Context, opts *cfclient.OrganizationListOptions) ([]*resource.Organization, *cfclient.Pager, error) {
	f.pages++
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.orgs[:min(len(f.orgs), opts.PerPage)], nil, nil
}

func (f *fakeOrgs) ListAll(context.Context, *cfclient.OrganizationListOptions) ([]*resource.Organization, error) {
	return f.orgs, f.err
}

type fakeSpaces struct{ spaces []*resource.Space }

func (f fakeSpaces) ListAll(context.Context, *cfclient.SpaceListOptions) ([]*resource.Space, error) {
	return f.spaces, nil
}

type fakeApps struct{ err error }

func (f fakeApps) ListAll(context.Context, *cfclient.AppListOptions) ([]*resource.App, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*resource.App{
		{Name: "checkout-prod", Resource: resource.Resource{GUID: "app-1"}},
		nil,
		{Name: "auth-worker", Resource: resource.Resource{GUID: "app-2"}},
	}, nil
}

// fakeRoutes answers per application GUID
type fakeRoutes map[string][]*resource.Route

func (f fakeRoutes) ListForAppAll(_ context.Context, appGUID string, _ *cfclient.RouteListOptions) ([]*resource.Route, error) {
	routes, ok := f[appGUID]
	if !ok {
		return nil, errors.New("app not found")
	}
	return routes, nil
}

func newTestClient(apps fakeApps) *Client {
	return &Client{
		orgs: &fakeOrgs{orgs: []*resource.Organization{
			{Name: "O", Resource: resource.Resource{GUID: "org-0"}},
			{Name: "P", Resource: resource.Resource{GUID: "org-1"}},
		}},
		spaces: fakeSpaces{spaces: []*resource.Space{
			{Name: "dev", Resource: resource.Resource{GUID: "space-0"}},
			{Name: "prod", Resource: resource.Resource{GUID: "space-1"}},
		}},
		apps: apps,
		routes: fakeRoutes{
			"app-1": {
				{Host: "checkout", URL: "checkout.example.com", Resource: resource.Resource{GUID: "route-1"}},
				{Host: "checkout-alt", URL: "checkout-alt.example.com/v2", Resource: resource.Resource{GUID: "route-2"}},
			},
			"app-2": {},
		},
	}
}

func TestWalkHierarchy(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(fakeApps{})

	orgs, err := client.Organizations(ctx)
	if err != nil {
		t.Fatalf("Organizations() error = %v", err)
	}
	if len(orgs) != 2 || orgs[0] != (domain.Organization{GUID: "org-0", Name: "O"}) {
		t.Fatalf("Organizations() = %v", orgs)
	}

	spaces, err := client.Spaces(ctx, orgs[0])
	if err != nil {
		t.Fatalf("Spaces() error = %v", err)
	}
	if len(spaces) != 2 || spaces[1].Name != "prod" || spaces[1].GUID != "space-1" {
		t.Fatalf("Spaces() = %v", spaces)
	}

	apps, err := client.Applications(ctx, spaces[1])
	if err != nil {
		t.Fatalf("Applications() error = %v", err)
	}
	if len(apps) != 2 || apps[0].Name != "checkout-prod" || apps[1].GUID != "app-2" {
		t.Fatalf("Applications() = %v, want checkout-prod and auth-worker", apps)
	}

	routes, err := client.Routes(ctx, apps[0])
	if err != nil {
		t.Fatalf("Routes() error = %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("Routes() = %v, want 2 routes", routes)
	}
	if got := routes[0].InfoURL(); got != "http://checkout.example.com/info" {
		t.Errorf("first route URL = %s", got)
	}

	routes, err = client.Routes(ctx, apps[1])
	if err != nil {
		t.Fatalf("Routes() error = %v", err)
	}
	if len(routes) != 0 {
		t.Errorf("Routes() for auth-worker = %v, want none", routes)
	}
}

func TestPlatformErrorsAreWrapped(t *testing.T) {
	boom := errors.New("502 bad gateway")
	client := newTestClient(fakeApps{err: boom})

	_, err := client.Applications(context.Background(), domain.Space{GUID: "space-1", Name: "prod"})
	if !errors.Is(err, boom) {
		t.Errorf("Applications() error = %v, want wrapped %v", err, boom)
	}

	_, err = client.Routes(context.Background(), domain.PlatformApp{GUID: "unknown", Name: "ghost-prod"})
	if err == nil {
		t.Error("Routes() should fail for an unknown application")
	}
}

func TestVerifyRequestsOneOrganization(t *testing.T) {
	orgs := &fakeOrgs{orgs: []*resource.Organization{{Name: "O"}, {Name: "P"}}}
	client := &Client{orgs: orgs}

	if err := client.verify(context.Background()); err != nil {
		t.Fatalf("verify() error = %v", err)
	}
	if orgs.pages != 1 {
		t.Errorf("List() calls = %d, want 1", orgs.pages)
	}

	orgs.err = errors.New("401 unauthorized")
	if err := client.verify(context.Background()); err == nil {
		t.Error("verify() should fail when the token is refused")
	}
}

func TestToRoute(t *testing.T) {
	tests := []struct {
		name  string
		route resource.Route
		want  domain.Route
	}{
		{"host route", resource.Route{Host: "checkout", URL: "checkout.apps.example.com"}, domain.Route{Host: "checkout", Domain: "apps.example.com"}},
		{"path is dropped", resource.Route{Host: "api", URL: "api.example.com/v1/orders"}, domain.Route{Host: "api", Domain: "example.com"}},
		{"bare domain", resource.Route{URL: "internal.example.com"}, domain.Route{Domain: "internal.example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toRoute(&tt.route); got != tt.want {
				t.Errorf("toRoute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestConnectUnreachableGate(t *testing.T) {
	ts := httptest.NewServer(nil)
	gate := ts.URL
	ts.Close()

	connector := NewConnector(time.Second, false, logger.Nop())
	cred := domain.Credential{Gate: gate, User: "admin", Password: "admin"}
	if _, err := connector.Connect(context.Background(), cred); err == nil {
		t.Error("Connect() to a closed gate should fail")
	}
}
