package cloudfoundry

import (
	"context"
	"fmt"
	"strings"
	"time"

	cfclient "github.com/cloudfoundry/go-cfclient/v3/client"
	cfconfig "github.com/cloudfoundry/go-cfclient/v3/config"
	"github.com/cloudfoundry/go-cfclient/v3/resource"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/logger"
	"github.com/MrSnakeDoc/fleetview/internal/version"
)

// The go-cfclient resource clients used by discovery. *cfclient.Client
// exposes them as Organizations, Spaces, Applications and Routes.
type (
	organizationLister interface {
		List(ctx context.Context, opts *cfclient.OrganizationListOptions) ([]*resource.Organization, *cfclient.Pager, error)
		ListAll(ctx context.Context, opts *cfclient.OrganizationListOptions) ([]*resource.Organization, error)
	}
	spaceLister interface {
		ListAll(ctx context.Context, opts *cfclient.SpaceListOptions) ([]*resource.Space, error)
	}
	appLister interface {
		ListAll(ctx context.Context, opts *cfclient.AppListOptions) ([]*resource.App, error)
	}
	routeLister interface {
		ListForAppAll(ctx context.Context, appGUID string, opts *cfclient.RouteListOptions) ([]*resource.Route, error)
	}
)

// Connector authenticates credential sets against a Cloud Foundry API.
type Connector struct {
	timeout           time.Duration
	skipTLSValidation bool
	logger            logger.Logger
}

// NewConnector creates a connector. Requests are bounded by timeout.
func NewConnector(timeout time.Duration, skipTLSValidation bool, log logger.Logger) *Connector {
	return &Connector{
		timeout:           timeout,
		skipTLSValidation: skipTLSValidation,
		logger:            log,
	}
}

// Client is the read-only view of one platform account.
type Client struct {
	orgs   organizationLister
	spaces spaceLister
	apps   appLister
	routes routeLister
}

// Connect configures a go-cfclient client for cred (password grant) and
// checks the credentials with one organization request.
func (c *Connector) Connect(ctx context.Context, cred domain.Credential) (*Client, error) {
	opts := []cfconfig.Option{
		cfconfig.UserPassword(cred.User, cred.Password),
		cfconfig.RequestTimeout(c.timeout),
		cfconfig.UserAgent(version.UserAgent()),
	}
	if c.skipTLSValidation {
		opts = append(opts, cfconfig.SkipTLSValidation())
	}

	cfg, err := cfconfig.New(strings.TrimRight(cred.Gate, "/"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to configure platform client for %s: %w", cred.Gate, err)
	}
	cf, err := cfclient.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform client for %s: %w", cred.Gate, err)
	}

	client := &Client{
		orgs:   cf.Organizations,
		spaces: cf.Spaces,
		apps:   cf.Applications,
		routes: cf.Routes,
	}
	if err := client.verify(ctx); err != nil {
		return nil, fmt.Errorf("authentication failed for %s: %w", cred, err)
	}

	c.logger.Debug("authenticated against platform",
		logger.String("gate", cred.Gate),
		logger.String("user", cred.User))

	return client, nil
}

// verify fetches a single organization; the token is obtained on first use
func (c *Client) verify(ctx context.Context) error {
	opts := cfclient.NewOrganizationListOptions()
	opts.PerPage = 1
	_, _, err := c.orgs.List(ctx, opts)
	return err
}

// Organizations lists every organization visible to the user
func (c *Client) Organizations(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := c.orgs.ListAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return mapAll(orgs, toOrganization), nil
}

// Spaces lists the spaces of an organization
func (c *Client) Spaces(ctx context.Context, org domain.Organization) ([]domain.Space, error) {
	opts := cfclient.NewSpaceListOptions()
	opts.OrganizationGUIDs.EqualTo(org.GUID)

	spaces, err := c.spaces.ListAll(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces of %s: %w", org.Name, err)
	}
	return mapAll(spaces, toSpace), nil
}

// Applications lists the applications of a space
func (c *Client) Applications(ctx context.Context, space domain.Space) ([]domain.PlatformApp, error) {
	opts := cfclient.NewAppListOptions()
	opts.SpaceGUIDs.EqualTo(space.GUID)

	apps, err := c.apps.ListAll(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps of %s: %w", space.Name, err)
	}
	return mapAll(apps, toPlatformApp), nil
}

// Routes returns the routes mapped to an application, in platform order
func (c *Client) Routes(ctx context.Context, app domain.PlatformApp) ([]domain.Route, error) {
	routes, err := c.routes.ListForAppAll(ctx, app.GUID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list routes of %s: %w", app.Name, err)
	}
	return mapAll(routes, toRoute), nil
}
