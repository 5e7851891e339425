package credentials

import (
	"fmt"
	"os"
	"regexp"

	"github.com/MrSnakeDoc/fleetview/internal/domain"
)

// envReference matches ${VAR} references
var envReference = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Loader reads the credentials file onboarded at startup
type Loader struct {
	filePath string
}

// NewLoader creates a new credentials loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads and parses the credentials file. ${VAR} references are replaced
// by the value of the environment variable, so passwords can stay out of the file.
func (l *Loader) Load() ([]domain.Credential, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	creds, err := domain.ParseCredentials(expandEnv(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %s: %w", l.filePath, err)
	}

	return creds, nil
}

// expandEnv replaces ${VAR} with its value; unset variables become empty.
// Bare $VAR is left untouched since passwords may contain "$".
func expandEnv(data []byte) []byte {
	return envReference.ReplaceAllFunc(data, func(ref []byte) []byte {
		name := envReference.FindSubmatch(ref)[1]
		return []byte(os.Getenv(string(name)))
	})
}
