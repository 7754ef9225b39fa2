package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/service"
)

// IndustriesHandler exposes the industry catalogue.
type IndustriesHandler struct {
	service *service.IndustriesService
	logger  *slog.Logger
}

// NewIndustriesHandler creates a new handler instance.
func NewIndustriesHandler(service *service.IndustriesService, logger *slog.Logger) *IndustriesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndustriesHandler{service: service, logger: logger}
}

// List handles GET /api/industries requests.
func (h *IndustriesHandler) List(c echo.Context) error {
	industries, err := h.service.List(c.Request().Context())
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to fetch industries")
	}
	return c.JSON(http.StatusOK, map[string][]entity.Industry{"data": industries})
}

// Create handles POST /api/industries requests.
func (h *IndustriesHandler) Create(c echo.Context) error {
	var req dto.IndustryRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	id, err := h.service.Create(c.Request().Context(), req)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to create industry")
	}
	return c.JSON(http.StatusCreated, dto.CreatedResponse{Message: "Industry created successfully", ID: id})
}

// Update handles PUT /api/industries requests.
func (h *IndustriesHandler) Update(c echo.Context) error {
	var req dto.IndustryRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	if err := h.service.Update(c.Request().Context(), req); err != nil {
		return handleServiceError(c, h.logger, err, "Failed to update industry")
	}
	return Success(c, http.StatusOK, "Industry updated successfully", nil)
}

// Delete handles DELETE /api/industries requests.
func (h *IndustriesHandler) Delete(c echo.Context) error {
	id, ok, err := readID(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	if !ok {
		return Error(c, http.StatusBadRequest, "Industry id is required")
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return handleServiceError(c, h.logger, err, "Failed to delete industry")
	}
	return Success(c, http.StatusOK, "Industry deleted successfully", nil)
}
