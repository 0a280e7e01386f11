// Command seed loads users from a JSON array into the configured store.
//
//	seed -f users.json
//	seed -f s3://bucket/users.json
//
// Store and S3 settings come from the same JSON file, environment and
// flags as the server.
package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/userdirectory/internal/flagx"
	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server"
	"github.com/dmitrijs2005/userdirectory/internal/server/config"
	"github.com/dmitrijs2005/userdirectory/internal/server/seed"
	"github.com/dmitrijs2005/userdirectory/internal/server/services"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel)

	src, err := seed.NewSource(flagx.StringFlag(os.Args[1:], "users.json", "f", "file"), cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	tp, err := server.SetupTelemetry(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer tp.Shutdown(ctx)

	db, m, err := server.OpenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	s := seed.NewSeeder(services.NewUserService(db, m, logger), logger)
	if _, err := s.Run(ctx, src); err != nil {
		logger.Error(ctx, "seeding failed", "error", err)
		db.Close()
		_ = tp.Shutdown(ctx)
		os.Exit(1)
	}

}
