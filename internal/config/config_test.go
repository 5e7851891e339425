package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.ListenPort != ":8080" {
		t.Errorf("ListenPort = %q, want :8080", cfg.ListenPort)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if cfg.PollConcurrency != 8 {
		t.Errorf("PollConcurrency = %d, want 8", cfg.PollConcurrency)
	}
	if cfg.RedisEnabled() {
		t.Error("RedisEnabled() should be false without FLEETVIEW_REDIS_ADDR")
	}
	if cfg.CredentialsFile != "" {
		t.Errorf("CredentialsFile = %q, want empty", cfg.CredentialsFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FLEETVIEW_POLL_INTERVAL", "30s")
	t.Setenv("FLEETVIEW_POLL_CONCURRENCY", "2")
	t.Setenv("FLEETVIEW_REDIS_ADDR", "localhost:6379")
	t.Setenv("FLEETVIEW_ALLOWED_CIDRS", "10.0.0.0/8, 1.2.3.4")

	cfg := Load()

	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.PollConcurrency != 2 {
		t.Errorf("PollConcurrency = %d, want 2", cfg.PollConcurrency)
	}
	if !cfg.RedisEnabled() {
		t.Error("RedisEnabled() should be true when FLEETVIEW_REDIS_ADDR is set")
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v, want 2 entries", cfg.AllowedCIDRS)
	}
}

func TestLoadPanicsOnInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero poll interval", key: "FLEETVIEW_POLL_INTERVAL", value: "0s"},
		{name: "negative info timeout", key: "FLEETVIEW_INFO_TIMEOUT", value: "-1s"},
		{name: "zero concurrency", key: "FLEETVIEW_POLL_CONCURRENCY", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked for %s=%s", tt.key, tt.value)
				}
			}()

			Load()
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single value", input: "value1", expected: []string{"value1"}},
		{name: "multiple values", input: "value1, value2 ,value3", expected: []string{"value1", "value2", "value3"}},
		{name: "quoted values", input: `"a.example.com", 'b.example.com'`, expected: []string{"a.example.com", "b.example.com"}},
		{name: "empty parts dropped", input: "a,,b,", expected: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{name: "true value", key: "TEST_BOOL", value: "true", def: false, expected: true},
		{name: "false value", key: "TEST_BOOL_FALSE", value: "false", def: true, expected: false},
		{name: "invalid value uses default", key: "TEST_BOOL_INVALID", value: "invalid", def: true, expected: true},
		{name: "missing variable uses default", key: "TEST_BOOL_MISSING", value: "", def: false, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}
