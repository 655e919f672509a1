package config

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"APP_NAME":  " skillgap ",
		"APP_ENV":   "development",
		"HTTP_PORT": "8080",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(baseEnv())
	require.NoError(t, err)

	assert.Equal(t, "skillgap", cfg.App.AppName)
	assert.Equal(t, "migrations", cfg.App.MigrationsDir)
	assert.False(t, cfg.App.SeedTaxonomy)
	assert.Equal(t, "localhost", cfg.Database.DBHost)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.InDelta(t, 0.7, cfg.Normalizer.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 5, cfg.Normalizer.MaxMatches)
	assert.Equal(t, 5, cfg.Normalizer.BatchSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Auth.AccessSecret)
}

func TestLoadFrom_MissingRequired(t *testing.T) {
	env := baseEnv()
	delete(env, "APP_NAME")
	delete(env, "HTTP_PORT")

	_, err := LoadFrom(env)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errMissingRequiredEnv))
	assert.Contains(t, err.Error(), "APP_NAME")
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestLoadFrom_NormalizerValidation(t *testing.T) {
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"NORMALIZER_CONFIDENCE_THRESHOLD", "0", false},
		{"NORMALIZER_CONFIDENCE_THRESHOLD", "1", false},
		{"NORMALIZER_CONFIDENCE_THRESHOLD", "1.2", true},
		{"NORMALIZER_CONFIDENCE_THRESHOLD", "-0.1", true},
		{"NORMALIZER_MAX_MATCHES", "-1", true},
		{"NORMALIZER_BATCH_SIZE", "-3", true},
		{"NORMALIZER_BATCH_SIZE", "10", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			env := baseEnv()
			env[tt.key] = tt.value
			_, err := LoadFrom(env)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errInvalidConfig))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadFrom_MalformedValue(t *testing.T) {
	env := baseEnv()
	env["REDIS_TTL"] = "soon"
	_, err := LoadFrom(env)
	assert.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	assert.True(t, AppConfig{Environment: " Production "}.IsProduction())
	assert.False(t, AppConfig{Environment: "staging"}.IsProduction())
}
