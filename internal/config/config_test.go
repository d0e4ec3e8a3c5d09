package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgintel/internal/logger"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_CLOUD_PROJECT", "OCR_ENABLED", "SERVER_ADDR", "MAX_UPLOAD_BYTES",
		"H3_RESOLUTION", "LOG_LEVEL", "LOG_FORMAT", "LOG_TIME_FORMAT", "LOG_OUTPUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_CLOUD_PROJECT", "imgintel-dev")
	t.Setenv("OCR_ENABLED", "false")
	t.Setenv("SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("H3_RESOLUTION", "7")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "imgintel-dev", cfg.GoogleCloudProject)
	assert.False(t, cfg.OCREnabled)
	assert.Equal(t, "127.0.0.1:9000", cfg.ServerAddr)
	assert.Equal(t, int64(1048576), cfg.MaxUploadBytes)
	assert.Equal(t, 7, cfg.H3Resolution)

	lc := cfg.GetLoggerConfig()
	assert.Equal(t, "json", lc.Format)
	assert.Equal(t, "info", lc.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string][2]string{
		"h3 too high":      {"H3_RESOLUTION", "16"},
		"h3 negative":      {"H3_RESOLUTION", "-1"},
		"h3 not a number":  {"H3_RESOLUTION", "nine"},
		"upload zero":      {"MAX_UPLOAD_BYTES", "0"},
		"ocr not a bool":   {"OCR_ENABLED", "maybe"},
		"upload not a int": {"MAX_UPLOAD_BYTES", "20MB"},
	}

	for name, kv := range tests {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(kv[0], kv[1])

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), kv[0])
		})
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	assert.Equal(t, logger.DefaultConfig(), Default().GetLoggerConfig())
}
