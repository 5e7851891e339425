package domain

import (
	"errors"
	"fmt"
	"net/url"

	"gopkg.in/yaml.v3"
)

// ErrInvalidCredentials is returned for a credential submission that cannot
// be parsed or misses mandatory fields. Nothing is started for it.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credential identifies one platform account to monitor.
type Credential struct {
	// Gate is the platform API endpoint, ex: https://api.sys.example.com
	Gate     string
	User     string
	Password string

	// Interval is accepted for compatibility with older credential files.
	// It is not used: all accounts share the process-wide poll interval.
	Interval string
}

// credentialRecord is the wire form. Both the short keys of older
// credential files and the long ones are accepted.
type credentialRecord struct {
	Gate     string `yaml:"gate"`
	User     string `yaml:"user"`
	Pass     string `yaml:"pass"`
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Interval string `yaml:"interval"`
}

func (r credentialRecord) toCredential() Credential {
	return Credential{
		Gate:     firstNonEmpty(r.Gate, r.Endpoint),
		User:     firstNonEmpty(r.User, r.Username),
		Password: firstNonEmpty(r.Pass, r.Password),
		Interval: r.Interval,
	}
}

// Validate checks the mandatory fields of a credential.
func (c Credential) Validate() error {
	if c.Gate == "" {
		return fmt.Errorf("%w: missing gate", ErrInvalidCredentials)
	}
	u, err := url.Parse(c.Gate)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: gate %q is not an http(s) URL", ErrInvalidCredentials, c.Gate)
	}
	if c.User == "" {
		return fmt.Errorf("%w: missing user for %s", ErrInvalidCredentials, c.Gate)
	}
	return nil
}

// String never prints the password.
func (c Credential) String() string {
	return fmt.Sprintf("%s@%s", c.User, c.Gate)
}

// ParseCredentials decodes one or more credential records. The payload is
// either a list of records or a single record, in JSON or YAML.
// Any decoding or validation failure wraps ErrInvalidCredentials.
func ParseCredentials(data []byte) ([]Credential, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty submission", ErrInvalidCredentials)
	}

	var records []credentialRecord
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
	case yaml.MappingNode:
		var record credentialRecord
		if err := root.Decode(&record); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		records = append(records, record)
	default:
		return nil, fmt.Errorf("%w: expected a record or a list of records", ErrInvalidCredentials)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no credential records", ErrInvalidCredentials)
	}

	creds := make([]Credential, 0, len(records))
	for _, r := range records {
		c := r.toCredential()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		creds = append(creds, c)
	}
	return creds, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
