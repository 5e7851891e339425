package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/status"
)

// DefaultTTL bounds how long a mirrored cycle outlives the process
const DefaultTTL = 5 * time.Minute

// Store mirrors poll results to Redis for external consumers.
// It is never read back by fleetview.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store. A ttl <= 0 uses DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// ObservationRecord is the mirrored form of one cell
type ObservationRecord struct {
	Application string             `json:"application"`
	Space       string             `json:"space"`
	Label       string             `json:"label"`
	Observation domain.Observation `json:"observation"`
	MirroredAt  time.Time          `json:"mirrored_at"`
}

// StatusRecord is the mirrored status table
type StatusRecord struct {
	ColumnTitles []string   `json:"column_titles"`
	Rows         [][]string `json:"rows"`
	MirroredAt   time.Time  `json:"mirrored_at"`
}

// Encode builds the key/value pairs written for one snapshot
func Encode(snap index.Snapshot, table status.Table, now time.Time) (map[string][]byte, error) {
	values := make(map[string][]byte)

	for _, app := range snap.Applications {
		for space, obs := range snap.Cells[app] {
			data, err := json.Marshal(ObservationRecord{
				Application: app,
				Space:       space,
				Label:       domain.Label(obs),
				Observation: obs,
				MirroredAt:  now,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to marshal observation %s: %w", CellID(app, space), err)
			}
			values[ObservationKey(app, space)] = data
		}
	}

	data, err := json.Marshal(StatusRecord{
		ColumnTitles: table.ColumnTitles,
		Rows:         table.Rows,
		MirroredAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal status: %w", err)
	}
	values[KeyStatus] = data

	return values, nil
}

// SaveSnapshot writes every observation and the status table in one pipeline
func (s *Store) SaveSnapshot(ctx context.Context, snap index.Snapshot, table status.Table) (int, error) {
	values, err := Encode(snap, table, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	pipe := s.client.Pipeline()
	for key, data := range values {
		pipe.Set(ctx, key, data, s.ttl)
		if app, space, err := ParseObservationKey(key); err == nil {
			pipe.SAdd(ctx, KeyAllCells, CellID(app, space))
		}
	}
	pipe.Expire(ctx, KeyAllCells, s.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return len(values) - 1, nil
}
