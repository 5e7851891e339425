package domain

import (
	"fmt"
	"maps"
	"strconv"
)

const (
	// BranchField and VersionField are the conventional keys of an /info payload.
	BranchField  = "branch"
	VersionField = "version"

	// ErrorBranch marks a synthetic observation produced when an /info
	// endpoint could not be reached or parsed.
	ErrorBranch = "ERROR"
)

// Observation is the most recent metadata reported by one application in one
// space. It is the raw /info payload, or a failure sentinel built by Failure.
type Observation map[string]any

// Failure builds the sentinel observation for a failed /info request.
// status is the HTTP status code received, or 0 when the request never
// completed (the version is then empty). A sentinel renders like any other
// payload; callers learn about the failure from the fetcher, not from it.
func Failure(status int) Observation {
	version := ""
	if status > 0 {
		version = strconv.Itoa(status)
	}
	return Observation{
		BranchField:  ErrorBranch,
		VersionField: version,
	}
}

// Field returns the value stored under key rendered as a string.
// Missing and null values report ok=false.
func (o Observation) Field(key string) (string, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Clone returns a shallow copy; values of an /info payload are never mutated.
func (o Observation) Clone() Observation {
	if o == nil {
		return nil
	}
	return maps.Clone(o)
}
