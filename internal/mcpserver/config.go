package mcpserver

import (
	"log/slog"
	"os"
	"time"
)

// serverConfig holds the process-wide call settings, loaded once at
// startup from OPENAPI2MCP_* environment variables.
type serverConfig struct {
	// APIKey goes into the Authorization header of every outbound call.
	// Absence is not validated here; it surfaces as an upstream auth
	// failure.
	APIKey string
	// BaseURL overrides the description's declared servers when set.
	BaseURL string
	// APIVersion is sent in the fixed API-version header.
	APIVersion string
	// HTTPTimeout bounds each outbound call. Zero means no timeout.
	HTTPTimeout time.Duration
}

const defaultAPIVersion = "2024-01-01"

// loadConfig reads configuration from the environment. Invalid values log
// a warning and fall back to the default.
func loadConfig() serverConfig {
	return serverConfig{
		APIKey:      os.Getenv("OPENAPI2MCP_API_KEY"),
		BaseURL:     os.Getenv("OPENAPI2MCP_BASE_URL"),
		APIVersion:  envString("OPENAPI2MCP_API_VERSION", defaultAPIVersion),
		HTTPTimeout: envDuration("OPENAPI2MCP_HTTP_TIMEOUT", 0),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
