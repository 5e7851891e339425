package index

import (
	"maps"
	"sync"
	"time"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
)

// Matrix is the shared in-memory state of all discovered applications.
// Resolvers and the poller write to it concurrently; one lock guards
// applications, spaces, endpoints and observations together.
type Matrix struct {
	mu           sync.RWMutex
	apps         []string                                 // application names in discovery order
	cells        map[string]map[string]domain.Observation // app -> space -> observation
	spaces       map[string]int                           // space -> activity count
	endpoints    map[string]map[string]string             // app -> space -> /info URL
	lastObserved time.Time                                // timestamp of the last stored observation
}

// Target is one endpoint to poll.
type Target struct {
	App   string
	Space string
	URL   string
}

// Snapshot is a point-in-time copy of the matrix. It shares nothing with the store.
type Snapshot struct {
	Applications []string                                 // discovery order
	Spaces       map[string]int                           // space -> activity count
	Cells        map[string]map[string]domain.Observation // app -> space -> observation
}

// NewMatrix creates an empty matrix
func NewMatrix() *Matrix {
	return &Matrix{
		cells:     make(map[string]map[string]domain.Observation),
		spaces:    make(map[string]int),
		endpoints: make(map[string]map[string]string),
	}
}

// RegisterSpace adds a space with a zero activity count.
// Returns false if the space was already known.
func (m *Matrix) RegisterSpace(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.spaces[name]; ok {
		return false
	}
	m.spaces[name] = 0
	return true
}

// HasSpace reports whether a space has been registered
func (m *Matrix) HasSpace(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.spaces[name]
	return ok
}

// IncrementSpace increments the activity count of a registered space
func (m *Matrix) IncrementSpace(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.spaces[name]; ok {
		m.spaces[name]++
	}
}

// RegisterApplication adds an application. Returns false if it already existed.
func (m *Matrix) RegisterApplication(app string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cells[app]; ok {
		return false
	}
	m.apps = append(m.apps, app)
	m.cells[app] = make(map[string]domain.Observation)
	m.endpoints[app] = make(map[string]string)
	return true
}

// RegisterEndpoint records the /info URL of an application in a space.
// Endpoints are immutable: an existing URL is kept and false is returned.
// The application must be registered first.
func (m *Matrix) RegisterEndpoint(app, space, url string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	urls, ok := m.endpoints[app]
	if !ok {
		return false
	}
	if _, exists := urls[space]; exists {
		return false
	}
	urls[space] = url
	return true
}

// Endpoint returns the /info URL of an application in a space
func (m *Matrix) Endpoint(app, space string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.endpoints[app][space]
	return url, ok
}

// Observe overwrites the observation of an application in a space.
// Observations for unknown applications are dropped.
func (m *Matrix) Observe(app, space string, obs domain.Observation) bool {
	if obs == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.cells[app]
	if !ok {
		return false
	}
	row[space] = obs.Clone()
	m.lastObserved = time.Now()
	return true
}

// Observation returns a copy of the current observation of a cell
func (m *Matrix) Observation(app, space string) (domain.Observation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obs, ok := m.cells[app][space]
	return obs.Clone(), ok
}

// Targets returns every endpoint of a known application in an active space,
// in discovery order. The slice is a stable snapshot for one poll cycle.
func (m *Matrix) Targets() []Target {
	m.mu.RLock()
	defer m.mu.RUnlock()

	targets := make([]Target, 0, len(m.apps))
	for _, app := range m.apps {
		for space, url := range m.endpoints[app] {
			if m.spaces[space] == 0 {
				continue
			}
			targets = append(targets, Target{App: app, Space: space, URL: url})
		}
	}
	return targets
}

// Snapshot returns a consistent copy of the whole matrix
func (m *Matrix) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cells := make(map[string]map[string]domain.Observation, len(m.cells))
	for app, row := range m.cells {
		copied := make(map[string]domain.Observation, len(row))
		for space, obs := range row {
			copied[space] = obs.Clone()
		}
		cells[app] = copied
	}

	return Snapshot{
		Applications: append([]string(nil), m.apps...),
		Spaces:       maps.Clone(m.spaces),
		Cells:        cells,
	}
}

// ApplicationCount returns the number of registered applications
func (m *Matrix) ApplicationCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.apps)
}

// ActiveSpaceCount returns the number of spaces with a nonzero activity count
func (m *Matrix) ActiveSpaceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, count := range m.spaces {
		if count > 0 {
			n++
		}
	}
	return n
}

// LastObserved returns the timestamp of the last stored observation
func (m *Matrix) LastObserved() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastObserved
}
