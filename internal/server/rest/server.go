// Package rest exposes the user directory over HTTP using fiber.
package rest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/dmitrijs2005/userdirectory/internal/logging"
	"github.com/dmitrijs2005/userdirectory/internal/server/models"
	"github.com/dmitrijs2005/userdirectory/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

const shutdownTimeout = 10 * time.Second

// UserService is the part of services.UserService the handlers use.
type UserService interface {
	Search(ctx context.Context, p models.SearchParams) ([]models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	CreateUsersJSON(ctx context.Context, batch []json.RawMessage) (*services.CreateResult, error)
	Update(ctx context.Context, id int64, fields models.Fields) (*models.User, error)
	Patch(ctx context.Context, id int64, fields models.Fields) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context) (*models.Statistics, error)
}

// AuthService is the part of services.AuthService the handlers use.
type AuthService interface {
	Login(ctx context.Context, uid, password string) (string, error)
	VerifyHeader(ctx context.Context, header string) (string, error)
}

// Options tunes the HTTP surface. A rate limit of zero disables it.
type Options struct {
	CorsOrigin       string
	ReadRateLimit    int
	SummaryRateLimit int
	RateLimitWindow  time.Duration
}

type RESTServer struct {
	address string
	users   UserService
	auth    AuthService
	opts    Options
	logger  logging.Logger
	app     *fiber.App
}

func NewRESTServer(a string, l logging.Logger, us UserService, as AuthService, opts Options) *RESTServer {
	s := &RESTServer{
		address: a,
		logger:  l.With("module", "rest_server"),
		users:   us,
		auth:    as,
		opts:    opts,
	}
	s.app = s.newApp()
	return s
}

func (s *RESTServer) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "userdirectory",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(requestid.New(requestid.Config{
		Header:    common.RequestIDHeaderName,
		Generator: uuid.NewString,
	}))
	app.Use(s.logRequest)
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.opts.CorsOrigin,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))

	app.Get("/health", s.health)
	app.Post("/login", s.login)
	app.Get("/check_auth", s.requireAuth, s.checkAuth)

	api := app.Group("/api")
	api.Get("/users", s.rateLimit(s.opts.ReadRateLimit), s.listUsers)
	api.Post("/users", s.requireAuth, s.createUsers)
	api.Get("/users/:id", s.rateLimit(s.opts.ReadRateLimit), s.getUser)
	api.Put("/users/:id", s.requireAuth, s.updateUser)
	api.Patch("/users/:id", s.requireAuth, s.patchUser)
	api.Delete("/users/:id", s.requireAuth, s.deleteUser)
	api.Get("/summary", s.requireAuth, s.rateLimit(s.opts.SummaryRateLimit), s.summary)

	return app
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *RESTServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- s.app.Listen(s.address)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	case err := <-errCh:
		return err
	}
}
