package config

import (
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/kelsos/teknify/internal/models"
)

// DefaultEndpoint is the upload API the tool talks to unless overridden
const DefaultEndpoint = "https://api.teknik.io/v1/Upload"

// Config holds all application configuration
type Config struct {
	// Batch settings
	Files       []string
	Concurrency int
	Verbose     bool
	OutputMode  models.OutputMode

	// HTTP settings
	Endpoint  string
	Timeout   time.Duration
	ProxyAddr string
	UserAgent string

	// UI settings
	Progress bool

	// History settings
	History bool
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Concurrency: runtime.NumCPU(),
		OutputMode:  models.OutputNameAndURL,
		Endpoint:    DefaultEndpoint,
		UserAgent:   "teknify",
		History:     true,
	}
}

// LoadFromEnvironment loads configuration from environment variables.
// Values that fail to parse are ignored and the current setting is kept.
func (c *Config) LoadFromEnvironment() {
	if endpoint := os.Getenv("TEKNIFY_ENDPOINT"); endpoint != "" {
		c.Endpoint = endpoint
	}

	if concurrent := os.Getenv("TEKNIFY_CONCURRENT"); concurrent != "" {
		if n, err := ParseConcurrency(concurrent); err == nil {
			c.Concurrency = n
		}
	}

	if timeout := os.Getenv("TEKNIFY_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil && t >= 0 {
			c.Timeout = time.Duration(t) * time.Second
		}
	}

	if proxyAddr := os.Getenv("TEKNIFY_PROXY"); proxyAddr != "" {
		c.ProxyAddr = proxyAddr
	}

	if userAgent := os.Getenv("TEKNIFY_USER_AGENT"); userAgent != "" {
		c.UserAgent = userAgent
	}

	if history := os.Getenv("TEKNIFY_HISTORY"); history != "" {
		if h, err := strconv.ParseBool(history); err == nil {
			c.History = h
		}
	}
}

// ParseConcurrency converts a user supplied concurrent upload count.
// Zero, negative and non-numeric values are rejected.
func ParseConcurrency(value string) (int, error) {
	n, err := strconv.ParseUint(value, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("concurrent uploads must be a positive integer, got: %q", value)
	}
	if n == 0 {
		return 0, fmt.Errorf("concurrent uploads cannot be zero")
	}
	if n > uint64(maxConcurrency) {
		return 0, fmt.Errorf("concurrent uploads must be at most %d, got: %d", maxConcurrency, n)
	}
	return int(n), nil
}

// IsValidConcurrency reports whether value would be accepted by ParseConcurrency
func IsValidConcurrency(value string) bool {
	_, err := ParseConcurrency(value)
	return err == nil
}

const maxConcurrency = 1 << 16

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrent uploads must be a positive integer, got: %d", c.Concurrency)
	}

	if len(c.Files) == 0 {
		return fmt.Errorf("at least one file must be given")
	}

	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported endpoint scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint %q has no host", c.Endpoint)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got: %v", c.Timeout)
	}

	if !c.OutputMode.Valid() {
		return fmt.Errorf("unknown output mode: %d", c.OutputMode)
	}

	return nil
}
