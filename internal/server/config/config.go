// Package config handles configuration for the server and the seeder,
// including defaults, JSON overlay, environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/userdirectory/internal/telemetry"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// Config holds runtime settings for the user directory service.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the REST API.
//   - DatabaseDriver / DatabaseDSN: "sqlite3" (mattn) or "pgx" (PostgreSQL) and its DSN.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Has no default.
//   - AccessTokenValidityDuration: token lifetime.
//   - AdminLogin / AdminPassword: the single credential accepted by /login. The password has no default.
//   - CorsOrigin: value for Access-Control-Allow-Origin.
//   - ReadRateLimit / SummaryRateLimit: requests per RateLimitWindow and client IP; 0 disables.
//   - LogLevel: debug, info, warn or error.
//   - S3*: object storage access used by the seeder for s3:// sources.
//   - TelemetryExporter: where database spans and metrics go, "none" or "stdout".
type Config struct {
	EndpointAddrHTTP            string
	DatabaseDriver              string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	AdminLogin                  string
	AdminPassword               string
	CorsOrigin                  string
	ReadRateLimit               int
	SummaryRateLimit            int
	RateLimitWindow             time.Duration
	LogLevel                    string
	S3Region                    string
	S3BaseEndpoint              string
	S3AccessKeyID               string
	S3SecretAccessKey           string
	TelemetryExporter           string
}

// LoadDefaults populates Config with development defaults.
// Secrets have no defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDriver = DriverSQLite
	c.DatabaseDSN = "users.db?_busy_timeout=5000"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.AdminLogin = "admin"
	c.CorsOrigin = "*"
	c.ReadRateLimit = 10
	c.SummaryRateLimit = 5
	c.RateLimitWindow = time.Hour
	c.LogLevel = "info"
	c.S3Region = "us-east-1"
	c.TelemetryExporter = telemetry.ExporterNone
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is not set"))
	}
	if c.AdminLogin == "" {
		errs = append(errs, errors.New("admin login is not set"))
	}
	if c.AdminPassword == "" {
		errs = append(errs, errors.New("admin password is not set"))
	}
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if !telemetry.Valid(c.TelemetryExporter) {
		errs = append(errs, fmt.Errorf("unsupported telemetry exporter %q", c.TelemetryExporter))
	}
	if c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}

	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
