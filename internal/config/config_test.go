package config

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/teknify/internal/models"
)

func TestParseConcurrency(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr string
	}{
		{name: "positive", input: "4", want: 4},
		{name: "one", input: "1", want: 1},
		{name: "zero", input: "0", wantErr: "cannot be zero"},
		{name: "letters", input: "abc", wantErr: "must be a positive integer"},
		{name: "negative", input: "-3", wantErr: "must be a positive integer"},
		{name: "empty", input: "", wantErr: "must be a positive integer"},
		{name: "fraction", input: "1.5", wantErr: "must be a positive integer"},
		{name: "too large", input: "100000000", wantErr: "at most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConcurrency(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.False(t, IsValidConcurrency(tt.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsValidConcurrency(tt.input))
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, runtime.NumCPU(), cfg.Concurrency)
	assert.Equal(t, models.OutputNameAndURL, cfg.OutputMode)
	assert.Equal(t, DefaultEndpoint, cfg.Endpoint)
	assert.Zero(t, cfg.Timeout)
	assert.True(t, cfg.History)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TEKNIFY_ENDPOINT", "http://localhost:8080/upload")
	t.Setenv("TEKNIFY_CONCURRENT", "7")
	t.Setenv("TEKNIFY_TIMEOUT", "15")
	t.Setenv("TEKNIFY_PROXY", "127.0.0.1:1080")
	t.Setenv("TEKNIFY_USER_AGENT", "tester")
	t.Setenv("TEKNIFY_HISTORY", "false")

	cfg := NewConfig()
	cfg.LoadFromEnvironment()

	assert.Equal(t, "http://localhost:8080/upload", cfg.Endpoint)
	assert.Equal(t, 7, cfg.Concurrency)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "127.0.0.1:1080", cfg.ProxyAddr)
	assert.Equal(t, "tester", cfg.UserAgent)
	assert.False(t, cfg.History)
}

func TestLoadFromEnvironmentIgnoresInvalidValues(t *testing.T) {
	t.Setenv("TEKNIFY_CONCURRENT", "0")
	t.Setenv("TEKNIFY_TIMEOUT", "soon")
	t.Setenv("TEKNIFY_HISTORY", "maybe")

	cfg := NewConfig()
	cfg.LoadFromEnvironment()

	assert.Equal(t, runtime.NumCPU(), cfg.Concurrency)
	assert.Zero(t, cfg.Timeout)
	assert.True(t, cfg.History)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := NewConfig()
		cfg.Files = []string{"a.png"}
		return cfg
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, "positive integer"},
		{"no files", func(c *Config) { c.Files = nil }, "at least one file"},
		{"empty endpoint", func(c *Config) { c.Endpoint = "" }, "endpoint cannot be empty"},
		{"bad scheme", func(c *Config) { c.Endpoint = "ftp://example.com/upload" }, "unsupported endpoint scheme"},
		{"no host", func(c *Config) { c.Endpoint = "https:///upload" }, "has no host"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must be non-negative"},
		{"unknown mode", func(c *Config) { c.OutputMode = models.OutputMode(42) }, "unknown output mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
