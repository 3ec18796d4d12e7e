package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-0123456789"

func TestNewJWTConfig_DefaultValues(t *testing.T) {
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("JWT_EXPIRATION_HOURS", "")
	t.Setenv("JWT_ISSUER", "")

	cfg, err := NewJWTConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, testJWTSecret, cfg.Secret)
	assert.Equal(t, 24, cfg.ExpirationHours, "should use default expiration of 24 hours")
	assert.Equal(t, DefaultJWTIssuer, cfg.Issuer)
	assert.Equal(t, 24*time.Hour, cfg.TTL())
}

func TestNewJWTConfig(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		expiration string
		issuer     string
		wantHours  int
		wantErr    string
	}{
		{name: "custom expiration", secret: testJWTSecret, expiration: "48", wantHours: 48},
		{name: "custom issuer", secret: testJWTSecret, issuer: "coach-staging", wantHours: 24},
		{name: "missing secret", wantErr: "JWT_SECRET is required"},
		{name: "short secret", secret: "short", wantErr: "at least 16 bytes"},
		{name: "zero hours", secret: testJWTSecret, expiration: "0", wantErr: "at least 1 hour"},
		{name: "negative hours", secret: testJWTSecret, expiration: "-5", wantErr: "at least 1 hour"},
		{name: "too long", secret: testJWTSecret, expiration: "721", wantErr: "at most 720"},
		{name: "not a number", secret: testJWTSecret, expiration: "day", wantErr: "invalid JWT_EXPIRATION_HOURS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", tt.secret)
			t.Setenv("JWT_EXPIRATION_HOURS", tt.expiration)
			t.Setenv("JWT_ISSUER", tt.issuer)

			cfg, err := NewJWTConfig()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, cfg)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHours, cfg.ExpirationHours)
			if tt.issuer != "" {
				assert.Equal(t, tt.issuer, cfg.Issuer)
			}
		})
	}
}
