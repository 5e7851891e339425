package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixObservation is the prefix for mirrored observation keys
	KeyPrefixObservation = "fleetview:obs:"
	// KeyStatus holds the last projected status table
	KeyStatus = "fleetview:status"
	// KeyAllCells is the set of every mirrored "{app}:{space}" cell
	KeyAllCells = "fleetview:cells"
)

// CellID identifies one (application, space) cell
func CellID(app, space string) string {
	return app + ":" + space
}

// ObservationKey returns the Redis key of the observation of a cell
func ObservationKey(app, space string) string {
	return KeyPrefixObservation + CellID(app, space)
}

// ParseObservationKey extracts the application and space from a key.
// Space names never contain ":", application names might.
func ParseObservationKey(key string) (app, space string, err error) {
	id, ok := strings.CutPrefix(key, KeyPrefixObservation)
	if !ok {
		return "", "", fmt.Errorf("invalid observation key: %s", key)
	}
	i := strings.LastIndexByte(id, ':')
	if i <= 0 || i == len(id)-1 {
		return "", "", fmt.Errorf("invalid observation key: %s", key)
	}
	return id[:i], id[i+1:], nil
}
