// Package cftest provides an in-memory Cloud Foundry account for tests.
package cftest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
)

const (
	User     = "admin"
	Password = "admin"
)

// ErrUnauthorized is returned by Connect for a wrong user or password.
var ErrUnauthorized = errors.New("cftest: unauthorized")

// Org, Space and App describe the fake foundation.
type Org struct {
	Name   string
	Spaces []Space
}

type Space struct {
	Name string
	Apps []App
}

type App struct {
	Name   string
	Routes []domain.Route
}

// Foundation serves the organizations, spaces, applications and routes it
// was built with. It satisfies discovery.Platform.
type Foundation struct {
	Gate string

	mu      sync.Mutex
	orgs    []Org
	failing map[string]bool
}

// NewFoundation creates a fake foundation reachable at gate.
func NewFoundation(gate string, orgs ...Org) *Foundation {
	return &Foundation{
		Gate:    gate,
		orgs:    orgs,
		failing: make(map[string]bool),
	}
}

// Credential returns a valid credential for this foundation.
func (f *Foundation) Credential() domain.Credential {
	return domain.Credential{Gate: f.Gate, User: User, Password: Password}
}

// Connect checks cred against the foundation.
func (f *Foundation) Connect(ctx context.Context, cred domain.Credential) (*Foundation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cred.Gate != f.Gate || cred.User != User || cred.Password != Password {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, cred)
	}
	return f, nil
}

// OrgGUID, SpaceGUID and AppGUID return the identifiers assigned by
// position: AppGUID(0, 1, 2) is the third app of the second space of the first org.
func OrgGUID(o int) string        { return fmt.Sprintf("org-%d", o) }
func SpaceGUID(o, sp int) string  { return fmt.Sprintf("space-%d-%d", o, sp) }
func AppGUID(o, sp, a int) string { return fmt.Sprintf("app-%d-%d-%d", o, sp, a) }

// FailApplications makes listing the applications of a space fail.
func (f *Foundation) FailApplications(spaceGUID string) { f.fail("apps:" + spaceGUID) }

// FailRoutes makes listing the routes of an application fail.
func (f *Foundation) FailRoutes(appGUID string) { f.fail("routes:" + appGUID) }

func (f *Foundation) fail(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[key] = true
}

func (f *Foundation) check(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[key] {
		return fmt.Errorf("cftest: %s: 500 Internal Server Error", key)
	}
	return nil
}

func (f *Foundation) Organizations(ctx context.Context) ([]domain.Organization, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	orgs := make([]domain.Organization, 0, len(f.orgs))
	for o, org := range f.orgs {
		orgs = append(orgs, domain.Organization{GUID: OrgGUID(o), Name: org.Name})
	}
	return orgs, nil
}

func (f *Foundation) Spaces(_ context.Context, org domain.Organization) ([]domain.Space, error) {
	var spaces []domain.Space
	for o, candidate := range f.orgs {
		if OrgGUID(o) != org.GUID {
			continue
		}
		for sp, space := range candidate.Spaces {
			spaces = append(spaces, domain.Space{GUID: SpaceGUID(o, sp), Name: space.Name})
		}
	}
	return spaces, nil
}

func (f *Foundation) Applications(_ context.Context, space domain.Space) ([]domain.PlatformApp, error) {
	if err := f.check("apps:" + space.GUID); err != nil {
		return nil, err
	}
	var apps []domain.PlatformApp
	for o, org := range f.orgs {
		for sp, candidate := range org.Spaces {
			if SpaceGUID(o, sp) != space.GUID {
				continue
			}
			for a, app := range candidate.Apps {
				apps = append(apps, domain.PlatformApp{GUID: AppGUID(o, sp, a), Name: app.Name})
			}
		}
	}
	return apps, nil
}

func (f *Foundation) Routes(_ context.Context, app domain.PlatformApp) ([]domain.Route, error) {
	if err := f.check("routes:" + app.GUID); err != nil {
		return nil, err
	}
	for o, org := range f.orgs {
		for sp, space := range org.Spaces {
			for a, candidate := range space.Apps {
				if AppGUID(o, sp, a) == app.GUID {
					return append([]domain.Route(nil), candidate.Routes...), nil
				}
			}
		}
	}
	return nil, fmt.Errorf("cftest: app %s not found", app.GUID)
}
