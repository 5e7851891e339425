package redis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
	"github.com/MrSnakeDoc/fleetview/internal/index"
	"github.com/MrSnakeDoc/fleetview/internal/status"
)

func TestParseObservationKey(t *testing.T) {
	tests := []struct {
		key       string
		wantApp   string
		wantSpace string
		wantErr   bool
	}{
		{"fleetview:obs:checkout:prod", "checkout", "prod", false},
		{"fleetview:obs:ns:checkout:prod", "ns:checkout", "prod", false},
		{ObservationKey("cart", "dev"), "cart", "dev", false},
		{"fleetview:obs:checkout", "", "", true},
		{"fleetview:obs:checkout:", "", "", true},
		{"fleetview:status", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			app, space, err := ParseObservationKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseObservationKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if app != tt.wantApp || space != tt.wantSpace {
				t.Errorf("ParseObservationKey() = (%s, %s), want (%s, %s)", app, space, tt.wantApp, tt.wantSpace)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	m := index.NewMatrix()
	m.RegisterSpace("prod")
	m.IncrementSpace("prod")
	m.RegisterApplication("checkout")
	m.Observe("checkout", "prod", domain.Observation{"branch": "main", "version": "1.0", "commit": "abc"})

	snap := m.Snapshot()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	values, err := Encode(snap, status.Render(snap), now)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("Encode() wrote %d keys, want 2", len(values))
	}

	var rec ObservationRecord
	if err := json.Unmarshal(values["fleetview:obs:checkout:prod"], &rec); err != nil {
		t.Fatalf("observation record: %v", err)
	}
	if rec.Label != "main/1.0" || rec.Observation["commit"] != "abc" || !rec.MirroredAt.Equal(now) {
		t.Errorf("observation record = %+v", rec)
	}

	var table StatusRecord
	if err := json.Unmarshal(values[KeyStatus], &table); err != nil {
		t.Fatalf("status record: %v", err)
	}
	if len(table.Rows) != 1 || table.Rows[0][1] != "main/1.0" {
		t.Errorf("status record = %+v", table)
	}
}
