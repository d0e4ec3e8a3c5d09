package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"imgintel/internal/logger"
)

const (
	defaultMaxUploadBytes = 20 * 1024 * 1024
	defaultH3Resolution   = 9
	maxH3Resolution       = 15
)

type Config struct {
	// Google Cloud Configuration (OCR)
	GoogleCloudProject string
	OCREnabled         bool

	// HTTP upload service
	ServerAddr     string
	MaxUploadBytes int64

	// Geo encoding
	H3Resolution int

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	logCfg := logger.DefaultConfig()
	return &Config{
		OCREnabled:     true,
		ServerAddr:     ":8080",
		MaxUploadBytes: defaultMaxUploadBytes,
		H3Resolution:   defaultH3Resolution,
		LogLevel:       logCfg.Level,
		LogFormat:      logCfg.Format,
		LogTimeFormat:  logCfg.TimeFormat,
		LogOutput:      logCfg.Output,
	}
}

func Load() (*Config, error) {
	def := Default()

	ocrEnabled, err := getEnvBool("OCR_ENABLED", def.OCREnabled)
	if err != nil {
		return nil, err
	}
	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", int(def.MaxUploadBytes))
	if err != nil {
		return nil, err
	}
	h3Res, err := getEnvInt("H3_RESOLUTION", def.H3Resolution)
	if err != nil {
		return nil, err
	}

	config := &Config{
		GoogleCloudProject: getEnv("GOOGLE_CLOUD_PROJECT", ""),
		OCREnabled:         ocrEnabled,
		ServerAddr:         getEnv("SERVER_ADDR", def.ServerAddr),
		MaxUploadBytes:     int64(maxUpload),
		H3Resolution:       h3Res,
		LogLevel:           getEnv("LOG_LEVEL", def.LogLevel),
		LogFormat:          getEnv("LOG_FORMAT", def.LogFormat),
		LogTimeFormat:      getEnv("LOG_TIME_FORMAT", def.LogTimeFormat),
		LogOutput:          getEnv("LOG_OUTPUT", def.LogOutput),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	if c.H3Resolution < 0 || c.H3Resolution > maxH3Resolution {
		return fmt.Errorf("H3_RESOLUTION must be between 0 and %d, got %d", maxH3Resolution, c.H3Resolution)
	}
	if strings.TrimSpace(c.ServerAddr) == "" {
		return fmt.Errorf("SERVER_ADDR must not be empty")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return b, nil
}
