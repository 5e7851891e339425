package domain

import (
	"fmt"
	"strings"
)

// SplitAppName splits a raw platform application name of the form
// "{base}-{space}" at its last dash. ok is false when the name has no dash,
// or when either side of it is empty.
//
// Example: "checkout-api-prod" -> ("checkout-api", "prod", true)
func SplitAppName(raw string) (base, suffix string, ok bool) {
	i := strings.LastIndexByte(raw, '-')
	if i <= 0 || i == len(raw)-1 {
		return "", "", false
	}
	return raw[:i], raw[i+1:], true
}

// Route is a network route of a platform application.
type Route struct {
	Host   string
	Domain string
}

// InfoURL builds the /info endpoint URL of a route.
// Routes without a host (bound to the bare domain) target the domain itself.
func (r Route) InfoURL() string {
	if r.Host == "" {
		return fmt.Sprintf("http://%s/info", r.Domain)
	}
	return fmt.Sprintf("http://%s.%s/info", r.Host, r.Domain)
}
