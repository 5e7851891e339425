package cloudfoundry

import (
	"strings"

	"github.com/cloudfoundry/go-cfclient/v3/resource"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
)

func mapAll[R any, T any](items []*R, convert func(*R) T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, convert(item))
	}
	return out
}

func toOrganization(o *resource.Organization) domain.Organization {
	return domain.Organization{GUID: o.GUID, Name: o.Name}
}

func toSpace(s *resource.Space) domain.Space {
	return domain.Space{GUID: s.GUID, Name: s.Name}
}

func toPlatformApp(a *resource.App) domain.PlatformApp {
	return domain.PlatformApp{GUID: a.GUID, Name: a.Name}
}

// toRoute splits the route URL ("host.domain/path") into host and domain.
// The path is not part of the /info endpoint.
func toRoute(r *resource.Route) domain.Route {
	hostAndDomain, _, _ := strings.Cut(r.URL, "/")
	d := hostAndDomain
	if r.Host != "" {
		d = strings.TrimPrefix(hostAndDomain, r.Host+".")
	}
	return domain.Route{Host: r.Host, Domain: d}
}
