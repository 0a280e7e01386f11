package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. Malformed numeric or
// duration values are ignored and the previous value is kept.
func parseEnv(config *Config) {
	lookupString(&config.EndpointAddrHTTP, "HTTP_ADDRESS")
	lookupString(&config.DatabaseDriver, "DATABASE_DRIVER")
	lookupString(&config.DatabaseDSN, "DATABASE_DSN")
	lookupString(&config.SecretKey, "JWT_SECRET")
	lookupString(&config.AdminLogin, "ADMIN_LOGIN")
	lookupString(&config.AdminPassword, "ADMIN_PASSWORD")
	lookupString(&config.CorsOrigin, "CORS_ORIGIN")
	lookupString(&config.LogLevel, "LOG_LEVEL")
	lookupString(&config.S3Region, "S3_REGION")
	lookupString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
	lookupString(&config.S3AccessKeyID, "S3_ACCESS_KEY_ID")
	lookupString(&config.S3SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	lookupString(&config.TelemetryExporter, "TELEMETRY_EXPORTER")

	lookupDuration(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_TTL")
	lookupDuration(&config.RateLimitWindow, "RATE_LIMIT_WINDOW")

	lookupInt(&config.ReadRateLimit, "RATE_LIMIT_READ")
	lookupInt(&config.SummaryRateLimit, "RATE_LIMIT_SUMMARY")
}

func lookupString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			*dst = n
		}
	}
}

func lookupDuration(dst *time.Duration, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
}
