package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/service"
)

// OTPHandler exposes email verification endpoints.
type OTPHandler struct {
	service *service.OTPService
	logger  *slog.Logger
}

// NewOTPHandler creates a new handler instance.
func NewOTPHandler(service *service.OTPService, logger *slog.Logger) *OTPHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OTPHandler{service: service, logger: logger}
}

// Send handles POST /api/send-otp requests.
func (h *OTPHandler) Send(c echo.Context) error {
	var req dto.SendOTPRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := h.service.Send(c.Request().Context(), req); err != nil {
		return handleServiceError(c, h.logger, err, "Failed to send OTP")
	}
	return Success(c, http.StatusOK, "OTP sent successfully", nil)
}

// Verify handles POST /api/verify-otp requests.
func (h *OTPHandler) Verify(c echo.Context) error {
	var req dto.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	verified, err := h.service.Verify(c.Request().Context(), req)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to verify OTP")
	}
	if !verified {
		return c.JSON(http.StatusBadRequest, dto.VerifyOTPResponse{Verified: false, Message: "Invalid or expired OTP"})
	}
	return c.JSON(http.StatusOK, dto.VerifyOTPResponse{Verified: true, Message: "OTP verified successfully"})
}
