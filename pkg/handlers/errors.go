package handlers

import (
	"errors"

	"chatd/pkg/services"

	"github.com/gofiber/fiber/v2"
)

// fail maps service errors onto HTTP status codes with a JSON error body.
func fail(c *fiber.Ctx, err error) error {
	status := 500
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status = 400
	case errors.Is(err, services.ErrBadCredentials):
		status = 401
	case errors.Is(err, services.ErrPermissionDenied):
		status = 403
	case errors.Is(err, services.ErrNotFound):
		status = 404
	case errors.Is(err, services.ErrEmailExists):
		status = 409
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
