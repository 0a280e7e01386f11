package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"endpoint_addr_http":             ":9000",
		"database_driver":                "pgx",
		"database_dsn":                   "postgres://u:p@db:5432/users",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "45m",
		"admin_login":                    "root",
		"admin_password":                 "hunter2",
		"cors_origin":                    "https://app.example",
		"read_rate_limit":                0,
		"summary_rate_limit":             2,
		"rate_limit_window":              60000000000,
		"log_level":                      "warn",
		"s3_region":                      "region",
		"s3_base_endpoint":               "http://minio:9000",
		"s3_access_key_id":               "key",
		"s3_secret_access_key":           "secret",
		"telemetry_exporter":             "stdout",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", full}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "pgx", cfg.DatabaseDriver)
		assert.Equal(t, "postgres://u:p@db:5432/users", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 45*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, "root", cfg.AdminLogin)
		assert.Equal(t, "hunter2", cfg.AdminPassword)
		assert.Equal(t, "https://app.example", cfg.CorsOrigin)
		assert.Equal(t, 0, cfg.ReadRateLimit, "explicit zero disables the limiter")
		assert.Equal(t, 2, cfg.SummaryRateLimit)
		assert.Equal(t, time.Minute, cfg.RateLimitWindow)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "region", cfg.S3Region)
		assert.Equal(t, "http://minio:9000", cfg.S3BaseEndpoint)
		assert.Equal(t, "key", cfg.S3AccessKeyID)
		assert.Equal(t, "secret", cfg.S3SecretAccessKey)
		assert.Equal(t, "stdout", cfg.TelemetryExporter)
	})

	t.Run("partial file keeps other values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "only-secret"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "only-secret", cfg.SecretKey)
		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, 10, cfg.ReadRateLimit)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
