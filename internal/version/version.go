// Package version holds build metadata injected with -ldflags -X.
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2026-10-16T09:12:00Z
	GoVersion = runtime.Version()
)

// UserAgent is sent on every outbound platform and /info request.
func UserAgent() string {
	return fmt.Sprintf("fleetview/%s (%s)", Version, Commit)
}

// Summary is the one-line build description logged at startup.
func Summary() string {
	return fmt.Sprintf("fleetview %s (commit=%s, built=%s, go=%s)", Version, Commit, BuildDate, GoVersion)
}
