package rest

import (
	"time"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

const userLocalsKey = "user"

// requireAuth rejects requests without a valid bearer token and stores the
// token's user in the request locals.
func (s *RESTServer) requireAuth(c *fiber.Ctx) error {
	user, err := s.auth.VerifyHeader(c.UserContext(), c.Get(common.AuthorizationHeaderName))
	if err != nil {
		return err
	}

	c.Locals(userLocalsKey, user)
	return c.Next()
}

// rateLimit allows limit requests per client IP within the configured window.
// Every call builds an independent limiter, so each route keeps its own
// budget.
func (s *RESTServer) rateLimit(limit int) fiber.Handler {
	if limit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	window := s.opts.RateLimitWindow
	if window <= 0 {
		window = time.Hour
	}

	return limiter.New(limiter.Config{
		Max:        limit,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
	})
}

// logRequest renders handler errors itself so the logged status is final.
func (s *RESTServer) logRequest(c *fiber.Ctx) error {
	start := time.Now()

	if err := c.Next(); err != nil {
		if herr := s.errorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
		"request_id", c.GetRespHeader(common.RequestIDHeaderName),
	)
	return nil
}
