package handlers

import (
	"errors"

	apperrors "github.com/desy0305/e-KanBan2clicks/internal/errors"
	"github.com/desy0305/e-KanBan2clicks/internal/metrics"
	"github.com/gofiber/fiber/v2"
)

// errorResponse is the body of every failed API call.
type errorResponse struct {
	Error string `json:"error"`
}

// messageResponse is the body of successful mutations that return no entity.
type messageResponse struct {
	Message string `json:"message"`
}

// statusFor maps the error taxonomy to an HTTP status. storeStatus is used for
// StoreError and anything unrecognised.
func statusFor(err error, storeStatus int) int {
	switch {
	case apperrors.IsValidation(err):
		return fiber.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFoundOrUnauthorized):
		return fiber.StatusNotFound
	default:
		return storeStatus
	}
}

// resultFor returns the metrics result label for err.
func resultFor(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case apperrors.IsValidation(err):
		return metrics.ResultInvalid
	case errors.Is(err, apperrors.ErrUnauthorized):
		return metrics.ResultUnauthorized
	case errors.Is(err, apperrors.ErrNotFoundOrUnauthorized):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}

func jsonError(c *fiber.Ctx, status int, err error) error {
	return c.Status(status).JSON(errorResponse{Error: apperrors.Message(err)})
}
