package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to create credentials file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	t.Setenv("EU_PASSWORD", "s3cr3t")

	path := writeFile(t, `---
- gate: https://api.sys.eu.example.com
  user: monitor
  pass: ${EU_PASSWORD}
- endpoint: https://api.sys.us.example.com
  username: monitor
  password: pa$$word
  interval: 30s
`)

	creds, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(creds) != 2 {
		t.Fatalf("Load() returned %d credentials, want 2", len(creds))
	}

	if creds[0].Password != "s3cr3t" {
		t.Errorf("Password = %q, want the expanded variable", creds[0].Password)
	}
	if creds[1].Gate != "https://api.sys.us.example.com" || creds[1].Password != "pa$$word" {
		t.Errorf("second credential = %+v", creds[1])
	}
	if creds[1].Interval != "30s" {
		t.Errorf("Interval = %q, want 30s", creds[1].Interval)
	}
}

func TestLoaderLoadJSON(t *testing.T) {
	path := writeFile(t, `{"gate": "https://api.example.com", "user": "u", "pass": "p"}`)

	creds, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(creds) != 1 || creds[0].User != "u" {
		t.Errorf("Load() = %v", creds)
	}
}

func TestLoaderLoadMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	if err == nil {
		t.Fatal("Load() on a missing file should fail")
	}
}

func TestLoaderLoadInvalid(t *testing.T) {
	path := writeFile(t, `- user: nobody`)

	_, err := NewLoader(path).Load()
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Load() error = %v, want ErrInvalidCredentials", err)
	}
}
