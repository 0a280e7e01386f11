package rest

import (
	"errors"

	"github.com/dmitrijs2005/userdirectory/internal/common"
	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "internal server error"

// statusFor maps an error returned by a handler or middleware to an HTTP
// status code.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrMissingAuthHeader):
		return fiber.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return fiber.StatusUnauthorized
	case errors.Is(err, common.ErrorNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders every error as {"error": message}. Details of
// server-side failures are logged, never returned.
func (s *RESTServer) errorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(err)

	msg := err.Error()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		msg = fe.Message
	}

	requestID := c.GetRespHeader(common.RequestIDHeaderName)
	if code >= fiber.StatusInternalServerError {
		s.logger.Error(c.UserContext(), "request failed", "error", err, "request_id", requestID)
		msg = internalErrorMessage
	} else {
		s.logger.Warn(c.UserContext(), "request rejected", "status", code, "error", err, "request_id", requestID)
	}

	return c.Status(code).JSON(fiber.Map{"error": msg})
}
