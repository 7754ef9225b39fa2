// Package web serves the server-rendered directory and admin pages.
package web

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/media"
	middlewarepkg "github.com/octobees/business-directory/internal/middleware"
	"github.com/octobees/business-directory/internal/repository"
	"github.com/octobees/business-directory/internal/service"
)

const (
	listingPageSize   = 12
	dashboardPageSize = 20
	maxFormMemory     = 8 << 20
	thumbnailField    = "thumbnail_file"
)

var statuses = []string{entity.StatusActive, entity.StatusPending, entity.StatusInactive}

// Pages renders the public directory and the admin panel.
type Pages struct {
	businesses   *service.BusinessesService
	industries   *service.IndustriesService
	auth         *service.AuthService
	sessionTTL   time.Duration
	cookieSecure bool
	logger       *slog.Logger
}

// Option configures Pages.
type Option func(*Pages)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pages) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithSession sets the admin cookie lifetime and its Secure flag.
func WithSession(ttl time.Duration, secure bool) Option {
	return func(p *Pages) {
		if ttl > 0 {
			p.sessionTTL = ttl
		}
		p.cookieSecure = secure
	}
}

// NewPages wires the page handlers.
func NewPages(businesses *service.BusinessesService, industries *service.IndustriesService, auth *service.AuthService, opts ...Option) *Pages {
	p := &Pages{
		businesses: businesses,
		industries: industries,
		auth:       auth,
		sessionTTL: 12 * time.Hour,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type pager struct {
	dto.Pagination
	Prev  string
	Next  string
	Links []pageLink
}

// newPager links every page of p, keeping the other query values of base.
func newPager(path string, base url.Values, p dto.Pagination) pager {
	link := func(page int) string {
		q := url.Values{}
		for k, v := range base {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		return path + "?" + q.Encode()
	}

	out := pager{Pagination: p}
	for i := 1; i <= p.TotalPages; i++ {
		out.Links = append(out.Links, pageLink{Number: i, URL: link(i), Current: i == p.Page})
	}
	if p.Page > 1 {
		out.Prev = link(p.Page - 1)
	}
	if p.Page < p.TotalPages {
		out.Next = link(p.Page + 1)
	}
	return out
}

// filterValues keeps the non-empty filter params of the current request.
func filterValues(c echo.Context, keys ...string) url.Values {
	q := url.Values{}
	for _, k := range keys {
		if v := strings.TrimSpace(c.QueryParam(k)); v != "" {
			q.Set(k, v)
		}
	}
	return q
}

func (p *Pages) logError(c echo.Context, msg string, err error) {
	p.logger.ErrorContext(c.Request().Context(), msg,
		slog.String("request_id", middlewarepkg.RequestIDFromContext(c)),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)
}

// formValues collects the business fields posted by a form. Empty inputs are
// kept so that a full edit can clear optional columns.
func formValues(c echo.Context, fields []string) map[string]string {
	values := make(map[string]string, len(fields))
	for _, field := range fields {
		if v, ok := c.Request().Form[field]; ok && len(v) > 0 {
			values[field] = strings.TrimSpace(v[0])
		}
	}
	return values
}

var errThumbnailType = errors.New("thumbnail must be a png, jpeg, gif or webp image")

// thumbnailFromForm turns an uploaded file into a data URI. It returns ""
// when no file was sent.
func thumbnailFromForm(c echo.Context) (string, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return "", nil
	}
	fh, err := c.FormFile(thumbnailField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	if fh.Size == 0 {
		return "", nil
	}
	if fh.Size > media.MaxImageBytes {
		return "", fmt.Errorf("thumbnail exceeds %d bytes", media.MaxImageBytes)
	}
	return encodeUpload(fh)
}

func encodeUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, media.MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", errThumbnailType
	}
	uri := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if _, err := media.ParseDataURI(uri); err != nil {
		return "", errThumbnailType
	}
	return uri, nil
}

// parseForm accepts both urlencoded and multipart bodies.
func parseForm(c echo.Context) error {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return req.ParseMultipartForm(maxFormMemory)
	}
	return req.ParseForm()
}

// errorMessage returns the message shown in an inline error panel together
// with any field errors.
func errorMessage(err error) (string, map[string]string) {
	if vErr, ok := service.IsValidationError(err); ok {
		return vErr.Message, vErr.Fields
	}
	var unknown *dto.UnknownFieldsError
	switch {
	case errors.As(err, &unknown):
		return unknown.Error(), nil
	case errors.Is(err, repository.ErrBusinessNotFound):
		return "Business not found", nil
	case errors.Is(err, repository.ErrIndustryNotFound):
		return "Industry not found", nil
	case errors.Is(err, repository.ErrIndustryDuplicate):
		return "Industry type already exists", nil
	case errors.Is(err, service.ErrIndustryInUse):
		return "Industry is still used by businesses", nil
	case errors.Is(err, service.ErrMediaUpload):
		return "Failed to upload thumbnail", nil
	}
	return "", nil
}

func describeFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + fields[k]
	}
	return strings.Join(parts, "; ")
}

// statusFor picks the response code of a failed form submission.
func statusFor(err error) int {
	if _, ok := service.IsValidationError(err); ok {
		return http.StatusBadRequest
	}
	var unknown *dto.UnknownFieldsError
	switch {
	case errors.As(err, &unknown):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrBusinessNotFound), errors.Is(err, repository.ErrIndustryNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrIndustryDuplicate), errors.Is(err, service.ErrIndustryInUse):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
