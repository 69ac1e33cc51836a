package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.ImageRequestDelay)
	assert.Equal(t, 15*time.Second, cfg.ImageRateLimitBackoff)
	assert.Equal(t, 3, cfg.DefaultSlideDuration)
	assert.False(t, cfg.ObjectStoreEnabled())
	require.NoError(t, cfg.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("IMAGE_REQUEST_DELAY", "500ms")
	t.Setenv("POLL_MAX_ATTEMPTS", "12")
	t.Setenv("R2_PUBLIC_URL", "https://cdn.example.com/")
	t.Setenv("API_KEYS", "k1:alice, k2:bob,broken,:nobody")

	cfg := FromEnv()

	assert.Equal(t, 500*time.Millisecond, cfg.ImageRequestDelay)
	assert.Equal(t, 12, cfg.PollMaxAttempts)
	assert.Equal(t, "https://cdn.example.com", cfg.R2PublicURL)
	assert.Equal(t, map[string]string{"k1": "alice", "k2": "bob"}, cfg.APIKeys)
}

func TestFromEnvInvalidValuesFallBack(t *testing.T) {
	t.Setenv("DEFAULT_SLIDE_DURATION", "three")
	t.Setenv("POLL_TIMEOUT", "forever")

	cfg := FromEnv()

	assert.Equal(t, 3, cfg.DefaultSlideDuration)
	assert.Equal(t, 30*time.Minute, cfg.PollTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, wantErr: false},
		{name: "durationTooLong", mutate: func(c *Config) { c.DefaultSlideDuration = 11 }, wantErr: true},
		{name: "noPollBound", mutate: func(c *Config) { c.PollMaxAttempts = 0 }, wantErr: true},
		{
			name: "r2WithoutPublicURL",
			mutate: func(c *Config) {
				c.R2AccessKey, c.R2SecretKey, c.R2AccountID = "a", "b", "acct"
				c.R2PublicURL = ""
			},
			wantErr: true,
		},
		{
			name: "r2Complete",
			mutate: func(c *Config) {
				c.R2AccessKey, c.R2SecretKey, c.R2AccountID = "a", "b", "acct"
				c.R2PublicURL = "https://cdn.example.com"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestR2EndpointURL(t *testing.T) {
	cfg := &Config{R2AccountID: "acct"}
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", cfg.R2EndpointURL())

	cfg.R2Endpoint = "http://localhost:9000"
	assert.Equal(t, "http://localhost:9000", cfg.R2EndpointURL())
}
