package server

import (
	"errors"
	"log/slog"

	"dogpark/internal/middleware"
	"dogpark/internal/models"
	"dogpark/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// mapServiceError returns the HTTP status for an error produced by the
// service layer. Foreign errors are treated as internal.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeConflict:
		return fiber.StatusConflict
	case models.CodeRateLimited:
		return fiber.StatusTooManyRequests
	case models.CodeUnavailable:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
		return models.CodeValidation
	case fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case fiber.StatusForbidden:
		return models.CodeForbidden
	case fiber.StatusNotFound:
		return models.CodeNotFound
	case fiber.StatusConflict:
		return models.CodeConflict
	case fiber.StatusTooManyRequests:
		return models.CodeRateLimited
	case fiber.StatusServiceUnavailable:
		return models.CodeUnavailable
	default:
		return models.CodeInternal
	}
}

// respondError writes err using the standard error body. Internal errors
// never leak their cause and are reported.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}
	if status == fiber.StatusInternalServerError {
		ctx := c.UserContext()
		middleware.Logger.ErrorContext(ctx, "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		observability.ReportError(ctx, err, map[string]string{"path": c.Path()})
	}
	return models.RespondWithError(c, status, appErr)
}
