package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	CredentialsFile   string        // optional JSON/YAML file onboarded at startup (empty = wait for /authenticate)
	PollInterval      time.Duration // cadence of the singleton poller (default: 10s)
	PollConcurrency   int           // max parallel /info requests per poll cycle (default: 8)
	InfoTimeout       time.Duration // timeout of a single /info request (default: 5s)
	PlatformTimeout   time.Duration // timeout of a single platform API request (default: 30s)
	SkipTLSValidation bool          // skip TLS validation towards the platform and /info endpoints

	// Redis mirror (optional, empty address = disabled)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
	MirrorTTL           time.Duration // TTL of mirrored observations

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to operational endpoints (e.g. "10.0.0.0/8, 1.2.3.4")
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	OnboardBurst        int // burst of /authenticate submissions per client IP
	OnboardRefillPerMin int // sustained /authenticate submissions per client IP and minute
}

// RedisEnabled reports whether observations are mirrored to Redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("FLEETVIEW_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("FLEETVIEW_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("FLEETVIEW_LOG_LEVEL", "info"),
		PrettyLog: mustBool("FLEETVIEW_PRETTY_LOG", true),

		// Discovery & polling
		CredentialsFile:   getenv("FLEETVIEW_CREDENTIALS_FILE", ""),
		PollInterval:      mustDuration("FLEETVIEW_POLL_INTERVAL", 10*time.Second),
		PollConcurrency:   getenvInt("FLEETVIEW_POLL_CONCURRENCY", 8),
		InfoTimeout:       mustDuration("FLEETVIEW_INFO_TIMEOUT", 5*time.Second),
		PlatformTimeout:   mustDuration("FLEETVIEW_PLATFORM_TIMEOUT", 30*time.Second),
		SkipTLSValidation: mustBool("FLEETVIEW_SKIP_TLS_VALIDATION", true),

		// Redis settings
		RedisAddr:           getenv("FLEETVIEW_REDIS_ADDR", ""),
		RedisUser:           getenv("FLEETVIEW_REDIS_USERNAME", ""),
		RedisPassword:       getenv("FLEETVIEW_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("FLEETVIEW_REDIS_DB", 0),
		RedisDT:             mustDuration("FLEETVIEW_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("FLEETVIEW_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("FLEETVIEW_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("FLEETVIEW_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("FLEETVIEW_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("FLEETVIEW_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("FLEETVIEW_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("FLEETVIEW_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("FLEETVIEW_REDIS_WARN_THRESHOLD", 3),
		MirrorTTL:           mustDuration("FLEETVIEW_MIRROR_TTL", 5*time.Minute),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("FLEETVIEW_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("FLEETVIEW_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("FLEETVIEW_TRUST_PROXY", false),

		OnboardBurst:        getenvInt("FLEETVIEW_ONBOARD_BURST", 5),
		OnboardRefillPerMin: getenvInt("FLEETVIEW_ONBOARD_PER_MIN", 10),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("❌ FATAL: %v", err))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

func (c *Config) validate() error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("FLEETVIEW_POLL_INTERVAL must be > 0, got %v", c.PollInterval)
	}
	if c.PollConcurrency < 1 {
		return fmt.Errorf("FLEETVIEW_POLL_CONCURRENCY must be >= 1, got %d", c.PollConcurrency)
	}
	if c.InfoTimeout <= 0 {
		return fmt.Errorf("FLEETVIEW_INFO_TIMEOUT must be > 0, got %v", c.InfoTimeout)
	}
	if c.PlatformTimeout <= 0 {
		return fmt.Errorf("FLEETVIEW_PLATFORM_TIMEOUT must be > 0, got %v", c.PlatformTimeout)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
