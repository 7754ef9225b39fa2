package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	middlewarepkg "github.com/octobees/business-directory/internal/middleware"
	"github.com/octobees/business-directory/internal/repository"
	"github.com/octobees/business-directory/internal/service"
)

// APIResponse describes the envelope returned by acknowledgement endpoints.
type APIResponse struct {
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{Message: message, Data: data})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, ErrorResponse{Message: message})
}

// ValidationFailed reports field level validation messages with 400.
func ValidationFailed(c echo.Context, err *service.ValidationError) error {
	message := err.Message
	if message == "" {
		message = "Validation failed"
	}
	return c.JSON(http.StatusBadRequest, ErrorResponse{Message: message, Errors: err.Fields})
}

// handleServiceError maps domain errors to HTTP responses. Anything unknown is
// logged with its detail and answered with the generic fallback message.
func handleServiceError(c echo.Context, logger *slog.Logger, err error, fallback string) error {
	if vErr, ok := service.IsValidationError(err); ok {
		return ValidationFailed(c, vErr)
	}

	var unknown *dto.UnknownFieldsError
	var csvErr service.CSVValidationError
	switch {
	case errors.As(err, &unknown):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: unknown.Error()})
	case errors.As(err, &csvErr):
		return Error(c, http.StatusBadRequest, csvErr.Error())
	case errors.Is(err, repository.ErrBusinessNotFound):
		return Error(c, http.StatusNotFound, "Business not found")
	case errors.Is(err, repository.ErrIndustryNotFound):
		return Error(c, http.StatusNotFound, "Industry not found")
	case errors.Is(err, repository.ErrIndustryDuplicate):
		return Error(c, http.StatusConflict, "Industry type already exists")
	case errors.Is(err, service.ErrIndustryInUse):
		return Error(c, http.StatusConflict, "Industry is still used by businesses")
	case errors.Is(err, service.ErrInvalidCredentials):
		return Error(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrMediaUpload):
		logError(c, logger, "thumbnail upload failed", err)
		return Error(c, http.StatusInternalServerError, "Failed to upload thumbnail")
	case errors.Is(err, service.ErrNotification):
		return Error(c, http.StatusInternalServerError, "Failed to send OTP")
	}

	logError(c, logger, fallback, err)
	return Error(c, http.StatusInternalServerError, fallback)
}

func logError(c echo.Context, logger *slog.Logger, msg string, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.ErrorContext(c.Request().Context(), msg,
		slog.String("request_id", middlewarepkg.RequestIDFromContext(c)),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
}
