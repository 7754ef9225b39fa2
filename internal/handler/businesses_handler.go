package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/repository"
	"github.com/octobees/business-directory/internal/service"
)

// maxBusinessBody leaves room for a base64 encoded 5MB thumbnail.
const maxBusinessBody = 8 << 20

// BusinessesHandler exposes the business resource.
type BusinessesHandler struct {
	service *service.BusinessesService
	logger  *slog.Logger
}

// NewBusinessesHandler creates a new handler instance.
func NewBusinessesHandler(service *service.BusinessesService, logger *slog.Logger) *BusinessesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BusinessesHandler{service: service, logger: logger}
}

// List handles GET /api/business requests.
func (h *BusinessesHandler) List(c echo.Context) error {
	filter, err := ParseBusinessFilter(c)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to fetch businesses")
	}

	resp, err := h.service.List(c.Request().Context(), filter)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to fetch businesses")
	}
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/business/:id requests.
func (h *BusinessesHandler) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return Error(c, http.StatusBadRequest, "Invalid business id")
	}
	business, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to fetch business")
	}
	return c.JSON(http.StatusOK, business)
}

// CreatePublic handles POST /api/business requests from the public form.
func (h *BusinessesHandler) CreatePublic(c echo.Context) error {
	payload, err := readPayload(c)
	if err != nil {
		return payloadError(c, err)
	}
	id, err := h.service.CreatePublic(c.Request().Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to create business")
	}
	return c.JSON(http.StatusCreated, dto.CreatedResponse{Message: "Business created successfully", ID: id})
}

// CreateAdmin handles POST /api/admin/business requests.
func (h *BusinessesHandler) CreateAdmin(c echo.Context) error {
	payload, err := readPayload(c)
	if err != nil {
		return payloadError(c, err)
	}
	id, err := h.service.CreateAdmin(c.Request().Context(), payload)
	if err != nil {
		return handleServiceError(c, h.logger, err, "Failed to create business")
	}
	return c.JSON(http.StatusCreated, dto.CreatedResponse{Message: "Business created successfully", ID: id})
}

// Update handles PATCH /api/business requests.
func (h *BusinessesHandler) Update(c echo.Context) error {
	payload, err := readPayload(c)
	if err != nil {
		return payloadError(c, err)
	}
	if err := h.service.Update(c.Request().Context(), payload); err != nil {
		return handleServiceError(c, h.logger, err, "Failed to update business")
	}
	return Success(c, http.StatusOK, "Business updated successfully", nil)
}

// Delete handles DELETE /api/business requests. The id is read from the JSON
// body or from the id query parameter.
func (h *BusinessesHandler) Delete(c echo.Context) error {
	id, ok, err := readID(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.DeleteResponse{Message: "Business id is required"})
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return c.JSON(http.StatusNotFound, dto.DeleteResponse{Message: "Business not found"})
		}
		return handleServiceError(c, h.logger, err, "Failed to delete business")
	}
	return c.JSON(http.StatusOK, dto.DeleteResponse{Success: true, Message: "Business deleted successfully"})
}

// Import handles POST /api/admin/business/import requests.
func (h *BusinessesHandler) Import(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.service.ImportCSV(c.Request().Context(), file)
	if err != nil {
		return handleServiceError(c, h.logger, err, "failed to process csv")
	}
	return Success(c, http.StatusOK, "businesses CSV processed", summary)
}

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

// readPayload decodes a sparse business body.
func readPayload(c echo.Context) (dto.BusinessPayload, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBusinessBody+1))
	if err != nil {
		return dto.BusinessPayload{}, errInvalidBody
	}
	if len(body) > maxBusinessBody {
		return dto.BusinessPayload{}, errBodyTooLarge
	}

	payload, err := dto.DecodeBusinessPayload(body)
	if err != nil {
		var unknown *dto.UnknownFieldsError
		if errors.As(err, &unknown) {
			return dto.BusinessPayload{}, unknown
		}
		return dto.BusinessPayload{}, errInvalidBody
	}
	return payload, nil
}

func payloadError(c echo.Context, err error) error {
	var unknown *dto.UnknownFieldsError
	switch {
	case errors.As(err, &unknown):
		return Error(c, http.StatusBadRequest, unknown.Error())
	case errors.Is(err, errBodyTooLarge):
		return Error(c, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		return Error(c, http.StatusBadRequest, "Invalid request body")
	}
}

// readID returns the id of an id-keyed mutation.
func readID(c echo.Context) (int64, bool, error) {
	var req dto.IDRequest
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, 1<<16))
	if err != nil {
		return 0, false, err
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return 0, false, err
		}
	}
	if !req.ID.Set {
		if raw := strings.TrimSpace(c.QueryParam("id")); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return 0, false, err
			}
			return id, true, nil
		}
		return 0, false, nil
	}
	return req.ID.Value, true, nil
}

// ParseBusinessFilter reads the list query parameters.
func ParseBusinessFilter(c echo.Context) (dto.BusinessFilter, error) {
	name := strings.TrimSpace(c.QueryParam("business_name"))
	if name == "" {
		name = strings.TrimSpace(c.QueryParam("search"))
	}

	filter := dto.BusinessFilter{
		Name:     name,
		Status:   strings.TrimSpace(c.QueryParam("status")),
		Location: strings.TrimSpace(c.QueryParam("location")),
		MinPrice: dto.DefaultMinPrice,
		MaxPrice: dto.DefaultMaxPrice,
		Page:     parseIntDefault(c.QueryParam("page"), 1),
		Limit:    parseIntDefault(c.QueryParam("limit"), 10),
	}

	fields := map[string]string{}
	if raw := strings.TrimSpace(c.QueryParam("industry_type")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fields["industry_type"] = "must be an integer industry id"
		} else {
			filter.IndustryType = &id
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("minPrice")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields["minPrice"] = "must be a number"
		} else {
			filter.MinPrice = v
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("maxPrice")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields["maxPrice"] = "must be a number"
		} else {
			filter.MaxPrice = v
		}
	}
	if len(fields) > 0 {
		return filter, &service.ValidationError{Message: "Invalid query parameters", Fields: fields}
	}
	return filter, nil
}

func parseIntDefault(value string, fallback int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
