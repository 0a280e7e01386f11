// Package server initializes and runs the user directory service. It opens
// and migrates the store, builds the services and runs the HTTP server
// until the process is signalled.
package server

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server/config"
	"github.com/dmitrijs2005/userdirectory/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userdirectory/internal/server/rest"
	"github.com/dmitrijs2005/userdirectory/internal/server/services"
	"github.com/dmitrijs2005/userdirectory/internal/telemetry"
	"github.com/jmoiron/sqlx"
)

// ServiceName identifies this process in exported telemetry.
const ServiceName = "userdirectory"

// telemetryOutput receives the stdout exporter's spans and metrics.
var telemetryOutput io.Writer = os.Stderr

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sqlx.DB
	telemetry   *telemetry.Providers
	userService *services.UserService
	authService *services.AuthService
}

// SetupTelemetry builds the providers selected by c and installs them
// globally, so every traced store handle reports to them.
func SetupTelemetry(c *config.Config) (*telemetry.Providers, error) {
	p, err := telemetry.New(c.TelemetryExporter, ServiceName, telemetryOutput)
	if err != nil {
		return nil, err
	}
	p.Install()
	return p, nil
}

// OpenStore connects to the configured database and applies migrations.
// SQLite is limited to one open connection so writers are serialized.
func OpenStore(ctx context.Context, c *config.Config, logger logging.Logger) (*sqlx.DB, repomanager.RepositoryManager, error) {
	m, err := repomanager.NewRepositoryManager(c.DatabaseDriver, logger.With("module", "db"))
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlx.Open(c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db open error: %w", err)
	}
	if c.DatabaseDriver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db ping error: %w", err)
	}

	if err := m.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db migration error: %w", err)
	}

	return db, m, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	tp, err := SetupTelemetry(c)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, m, err := OpenStore(ctx, c, logger)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("db init error: %w", err)
	}

	as, err := services.NewAuthService(c, logger)
	if err != nil {
		_ = db.Close()
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		telemetry:   tp,
		userService: services.NewUserService(db, m, logger),
		authService: as,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startRESTServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := rest.NewRESTServer(app.config.EndpointAddrHTTP, app.logger, app.userService, app.authService, rest.Options{
		CorsOrigin:       app.config.CorsOrigin,
		ReadRateLimit:    app.config.ReadRateLimit,
		SummaryRateLimit: app.config.SummaryRateLimit,
		RateLimitWindow:  app.config.RateLimitWindow,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or the
// server fails, then closes the store and flushes telemetry.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "driver", app.config.DatabaseDriver)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startRESTServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	// ctx is already cancelled here
	if err := app.telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		app.logger.Error(ctx, "telemetry shutdown error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
