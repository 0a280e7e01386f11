package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/userdirectory/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-r string   database driver ("sqlite3" or "pgx")
//	-d string   database DSN
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-o string   CORS allowed origin
//	-l int      read routes rate limit per window (0 disables)
//	-m int      summary route rate limit per window (0 disables)
//	-v string   log level
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-x string   telemetry exporter ("none" or "stdout")
//
// Admin credentials are read from the JSON file or the environment only.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-d", "-s", "-t", "-o", "-l", "-m", "-v", "-g", "-e", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "r", config.DatabaseDriver, "database driver (sqlite3|pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.CorsOrigin, "o", config.CorsOrigin, "CORS allowed origin")
	fs.IntVar(&config.ReadRateLimit, "l", config.ReadRateLimit, "read routes rate limit per window")
	fs.IntVar(&config.SummaryRateLimit, "m", config.SummaryRateLimit, "summary route rate limit per window")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.TelemetryExporter, "x", config.TelemetryExporter, "telemetry exporter (none|stdout)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only an explicit -t replaces the value, sub-minute durations from
	// JSON or the environment would otherwise be truncated
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
}
