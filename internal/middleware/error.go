package middleware

import (
	"errors"
	"net/http"

	"study-pulse/internal/domain"
	"study-pulse/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ErrorHandler is the centralized error handler registered on the Fiber app.
// Handlers return domain errors as-is; the mapping to HTTP lives here only.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get()

		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) {
			statusCode := mapDomainErrorToHTTPStatus(domainErr)

			log.Error("Domain error occurred",
				zap.String("path", c.Path()),
				zap.String("code", string(domainErr.Code)),
				zap.String("message", domainErr.Message),
				zap.Int("status", statusCode),
				zap.Error(domainErr.Cause),
			)

			return c.Status(statusCode).JSON(ErrorResponse{
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Status:  statusCode,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			log.Warn("Fiber error occurred",
				zap.Int("code", fiberErr.Code),
				zap.String("message", fiberErr.Message),
			)
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Code:    "HTTP_ERROR",
				Message: fiberErr.Message,
				Status:  fiberErr.Code,
			})
		}

		log.Error("Unknown error occurred",
			zap.String("path", c.Path()),
			zap.Error(err),
		)

		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Code:    string(domain.ErrInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		})
	}
}

// mapDomainErrorToHTTPStatus maps domain errors to HTTP status codes
func mapDomainErrorToHTTPStatus(err *domain.DomainError) int {
	switch err.Code {
	case domain.ErrNotFound, domain.ErrSessionNotFound:
		return http.StatusNotFound
	case domain.ErrInvalidInput:
		return http.StatusBadRequest
	case domain.ErrInvalidTransition, domain.ErrGenerationCancelled:
		return http.StatusConflict
	case domain.ErrMalformedPayload, domain.ErrUnexpectedShape,
		domain.ErrNoValidQuestions, domain.ErrNetworkFailure:
		return http.StatusBadGateway
	case domain.ErrPersistenceFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
