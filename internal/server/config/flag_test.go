package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:9090", "-r", "pgx", "-d", "postgres://db", "-s", "secret",
			"-t", "15", "-o", "https://example.com", "-l", "100", "-m", "0", "-v", "debug",
			"-g", "eu-central-1", "-e", "http://minio:9000", "-x", "stdout",
		}, expected: &Config{
			EndpointAddrHTTP:            "127.0.0.1:9090",
			DatabaseDriver:              "pgx",
			DatabaseDSN:                 "postgres://db",
			SecretKey:                   "secret",
			AccessTokenValidityDuration: 15 * time.Minute,
			CorsOrigin:                  "https://example.com",
			ReadRateLimit:               100,
			SummaryRateLimit:            0,
			LogLevel:                    "debug",
			S3Region:                    "eu-central-1",
			S3BaseEndpoint:              "http://minio:9000",
			TelemetryExporter:           "stdout",
		}},
		{name: "unknown flags are skipped", args: []string{"cmd", "-f", "users.json", "-a", ":1"},
			expected: &Config{EndpointAddrHTTP: ":1"}},
		{name: "non numeric ttl", args: []string{"cmd", "-t", "soon"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}

			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_KeepsSubMinuteTTLWithoutFlag(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	config := &Config{AccessTokenValidityDuration: 90 * time.Second}
	parseFlags(config)

	assert.Equal(t, 90*time.Second, config.AccessTokenValidityDuration)
}
