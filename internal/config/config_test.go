package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", c.Client.ServiceURL)
	assert.Equal(t, 500*time.Millisecond, c.Client.PollInterval)
	assert.Equal(t, 20, c.Client.MaxAttempts)
	assert.Equal(t, 1500*time.Millisecond, c.Client.ErrorDisplay)

	assert.Equal(t, "8080", c.Service.HTTPPort)
	assert.Equal(t, "8081", c.Service.GRPCPort)
	assert.Equal(t, 510, c.Service.TimeAddition)
	assert.Equal(t, 540, c.Service.TimeDivision)

	assert.Equal(t, 4, c.Agent.ComputingPower)
	assert.Equal(t, time.Hour, c.Auth.TokenTTL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CALC_SERVICE_URL", "http://calc:9000")
	t.Setenv("POLL_INTERVAL_MS", "100")
	t.Setenv("POLL_MAX_ATTEMPTS", "5")
	t.Setenv("TIME_MULTIPLICATIONS_MS", "0")
	t.Setenv("COMPUTING_POWER", "8")
	t.Setenv("JWT_SECRET", "s3cret")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://calc:9000", c.Client.ServiceURL)
	assert.Equal(t, 100*time.Millisecond, c.Client.PollInterval)
	assert.Equal(t, 5, c.Client.MaxAttempts)
	assert.Equal(t, 0, c.Service.TimeMultiplication)
	assert.Equal(t, 8, c.Agent.ComputingPower)
	assert.Equal(t, "s3cret", c.Auth.Secret)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"POLL_INTERVAL_MS", "0"},
		{"POLL_MAX_ATTEMPTS", "-1"},
		{"COMPUTING_POWER", "many"},
		{"TIME_DIVISIONS_MS", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
