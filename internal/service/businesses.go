package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/media"
	"github.com/octobees/business-directory/internal/metrics"
	"github.com/octobees/business-directory/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// BusinessesService validates and persists directory listings.
type BusinessesService struct {
	repo       repository.BusinessesRepository
	industries repository.IndustriesRepository
	media      media.Uploader
	contacts   *ContactValidator
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// BusinessesOption configures optional dependencies.
type BusinessesOption func(*BusinessesService)

// WithBusinessLogger overrides the default logger.
func WithBusinessLogger(logger *slog.Logger) BusinessesOption {
	return func(s *BusinessesService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBusinessMetrics records creates, deletes and uploads.
func WithBusinessMetrics(m *metrics.Metrics) BusinessesOption {
	return func(s *BusinessesService) {
		s.metrics = m
	}
}

// NewBusinessesService wires the business workflows.
func NewBusinessesService(
	repo repository.BusinessesRepository,
	industries repository.IndustriesRepository,
	uploader media.Uploader,
	contacts *ContactValidator,
	opts ...BusinessesOption,
) *BusinessesService {
	if uploader == nil {
		uploader = media.Inline{}
	}
	if contacts == nil {
		contacts = NewContactValidator("")
	}
	s := &BusinessesService{
		repo:       repo,
		industries: industries,
		media:      uploader,
		contacts:   contacts,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns one page of businesses with pagination metadata.
func (s *BusinessesService) List(ctx context.Context, filter dto.BusinessFilter) (dto.BusinessListResponse, error) {
	if filter.Page <= 0 {
		filter.Page = defaultPage
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultLimit
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if maxPage := math.MaxInt/filter.Limit + 1; filter.Page > maxPage {
		return dto.BusinessListResponse{}, &ValidationError{
			Message: "Invalid page",
			Fields:  map[string]string{"page": fmt.Sprintf("must be at most %d", maxPage)},
		}
	}
	filter.Status = strings.TrimSpace(filter.Status)
	if filter.Status != "" && !entity.ValidStatus(filter.Status) {
		return dto.BusinessListResponse{}, &ValidationError{
			Message: "Invalid status filter",
			Fields:  map[string]string{dto.FieldStatus: "must be one of active, inactive, pending"},
		}
	}

	businesses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.BusinessListResponse{}, err
	}
	return dto.BusinessListResponse{
		Data:       businesses,
		Pagination: dto.NewPagination(total, filter.Page, filter.Limit),
	}, nil
}

// Get returns a single business.
func (s *BusinessesService) Get(ctx context.Context, id int64) (*entity.Business, error) {
	return s.repo.Get(ctx, id)
}

// CreatePublic stores a submission from the public form. The status is
// always pending regardless of the payload.
func (s *BusinessesService) CreatePublic(ctx context.Context, payload dto.BusinessPayload) (int64, error) {
	delete(payload.Values, dto.FieldStatus)
	return s.create(ctx, payload, entity.StatusPending)
}

// CreateAdmin stores an operator-entered business. Status defaults to active.
func (s *BusinessesService) CreateAdmin(ctx context.Context, payload dto.BusinessPayload) (int64, error) {
	return s.create(ctx, payload, entity.StatusActive)
}

func (s *BusinessesService) create(ctx context.Context, payload dto.BusinessPayload, defaultStatus string) (int64, error) {
	business, image, err := s.prepareCreate(ctx, payload, defaultStatus)
	if err != nil {
		return 0, err
	}

	if image != nil {
		hosted, err := s.upload(ctx, *image)
		if err != nil {
			return 0, err
		}
		business.Thumbnail = &hosted
	}

	id, err := s.repo.Create(ctx, business)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordBusinessCreated(business.Status)
	return id, nil
}

// prepareCreate normalizes and validates a create payload without side effects.
func (s *BusinessesService) prepareCreate(ctx context.Context, payload dto.BusinessPayload, defaultStatus string) (*entity.Business, *media.Image, error) {
	values, image, errs := s.normalize(ctx, payload, false)

	if v, ok := values[dto.FieldName]; !ok || v == nil {
		errs.add(dto.FieldName, "name is required")
	}
	category, _ := values[dto.FieldCategory].(*string)
	industry, _ := values[dto.FieldIndustryType].(*int64)
	if category == nil && industry == nil && !errs.has(dto.FieldIndustryType) && !errs.has(dto.FieldCategory) {
		errs.add(dto.FieldCategory, "category or industry_type is required")
	}
	minPrice, _ := values[dto.FieldMinPrice].(*float64)
	maxPrice, _ := values[dto.FieldMaxPrice].(*float64)
	checkPriceOrder(errs, minPrice, maxPrice)

	if err := errs.err(); err != nil {
		return nil, nil, err
	}

	business := &entity.Business{Status: defaultStatus}
	for key, value := range values {
		applyField(business, key, value)
	}
	return business, image, nil
}

// Update applies the keys present in payload to an existing business.
func (s *BusinessesService) Update(ctx context.Context, payload dto.BusinessPayload) error {
	if !payload.ID.Set {
		return &ValidationError{Message: "Business id is required", Fields: map[string]string{"id": "id is required"}}
	}

	existing, err := s.repo.Get(ctx, payload.ID.Value)
	if err != nil {
		return err
	}

	values, image, errs := s.normalize(ctx, payload, true)

	minPrice := existing.MinPrice
	if v, ok := values[dto.FieldMinPrice]; ok {
		minPrice, _ = v.(*float64)
	}
	maxPrice := existing.MaxPrice
	if v, ok := values[dto.FieldMaxPrice]; ok {
		maxPrice, _ = v.(*float64)
	}
	checkPriceOrder(errs, minPrice, maxPrice)

	if err := errs.err(); err != nil {
		return err
	}

	if image != nil {
		hosted, err := s.upload(ctx, *image)
		if err != nil {
			return err
		}
		values[dto.FieldThumbnail] = &hosted
	}

	changes := make([]repository.Assignment, 0, len(values))
	for _, key := range payload.Keys() {
		value, ok := values[key]
		if !ok {
			continue
		}
		changes = append(changes, repository.Assignment{Field: key, Value: value})
	}
	return s.repo.Update(ctx, payload.ID.Value, changes)
}

// Delete removes a business and, best effort, its hosted thumbnail.
func (s *BusinessesService) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing.Thumbnail != nil && *existing.Thumbnail != "" && !media.IsDataURI(*existing.Thumbnail) {
		if err := s.media.Delete(ctx, *existing.Thumbnail); err != nil {
			s.logger.WarnContext(ctx, "thumbnail cleanup failed",
				slog.Int64("business_id", id),
				slog.String("thumbnail", *existing.Thumbnail),
				slog.Any("error", err),
			)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.RecordBusinessDeleted()
	return nil
}

func (s *BusinessesService) upload(ctx context.Context, image media.Image) (string, error) {
	hosted, err := s.media.Upload(ctx, image)
	s.metrics.RecordMediaUpload(err == nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMediaUpload, err)
	}
	return hosted, nil
}

// normalize converts every present payload key into its typed column value.
// Values are pointers so that nil clears an optional column. On update,
// required columns may not be cleared.
func (s *BusinessesService) normalize(ctx context.Context, payload dto.BusinessPayload, update bool) (map[string]any, *media.Image, fieldErrors) {
	values := make(map[string]any, len(payload.Values))
	errs := fieldErrors{}
	var image *media.Image

	for _, key := range payload.Keys() {
		raw, err := decodeScalar(payload.Values[key])
		if err != nil {
			errs.add(key, "malformed value")
			continue
		}

		switch key {
		case dto.FieldName:
			name, err := toString(raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			if name == nil {
				errs.add(key, "name is required")
				continue
			}
			if len([]rune(*name)) > 255 {
				errs.add(key, "must be at most 255 characters")
				continue
			}
			values[key] = name

		case dto.FieldStatus:
			status, err := toString(raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			if status == nil {
				if update {
					errs.add(key, "status cannot be empty")
				}
				continue
			}
			if !entity.ValidStatus(*status) {
				errs.add(key, "must be one of active, inactive, pending")
				continue
			}
			values[key] = *status

		case dto.FieldIndustryType:
			id, err := s.resolveIndustry(ctx, raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			values[key] = id

		case dto.FieldMobileNumber:
			s.normalizeContact(values, errs, key, raw, s.contacts.Phone)
		case dto.FieldEmailID:
			s.normalizeContact(values, errs, key, raw, s.contacts.Email)
		case dto.FieldWebsite:
			s.normalizeContact(values, errs, key, raw, s.contacts.Website)
		case dto.FieldFacebookProfile:
			s.normalizeContact(values, errs, key, raw, s.socialProfile(NetworkFacebook))
		case dto.FieldInstagramProfile:
			s.normalizeContact(values, errs, key, raw, s.socialProfile(NetworkInstagram))
		case dto.FieldTwitterProfile:
			s.normalizeContact(values, errs, key, raw, s.socialProfile(NetworkTwitter))
		case dto.FieldLinkedinProfile:
			s.normalizeContact(values, errs, key, raw, s.socialProfile(NetworkLinkedIn))

		case dto.FieldLatitude:
			normalizeRange(values, errs, key, raw, -90, 90)
		case dto.FieldLongitude:
			normalizeRange(values, errs, key, raw, -180, 180)
		case dto.FieldMinPrice, dto.FieldMaxPrice:
			price, err := toFloat(raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			if price != nil && *price < 0 {
				errs.add(key, "must be greater than or equal to 0")
				continue
			}
			values[key] = price

		case dto.FieldRating:
			rating, err := toFloat(raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			if rating == nil {
				values[key] = float64(0)
				continue
			}
			if *rating < 0 || *rating > 5 {
				errs.add(key, "must be between 0 and 5")
				continue
			}
			values[key] = *rating

		case dto.FieldReviewCount:
			count, err := toInt(raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			if count == nil {
				values[key] = 0
				continue
			}
			if *count < 0 {
				errs.add(key, "must be greater than or equal to 0")
				continue
			}
			values[key] = int(*count)

		case dto.FieldThumbnail:
			thumb, err := toString(raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			if thumb != nil && media.IsDataURI(*thumb) {
				img, err := media.ParseDataURI(*thumb)
				if err != nil {
					errs.add(key, "must be a png, jpeg, gif or webp image up to 5MB")
					continue
				}
				image = &img
				continue
			}
			if thumb != nil {
				if _, err := sanitizeURL(*thumb); err != nil || !strings.Contains(*thumb, "://") {
					errs.add(key, "must be an image upload or an absolute URL")
					continue
				}
			}
			values[key] = thumb

		default:
			text, err := toString(raw)
			if err != nil {
				errs.add(key, err.Error())
				continue
			}
			values[key] = text
		}
	}

	return values, image, errs
}

func (s *BusinessesService) socialProfile(network string) func(string) (string, error) {
	return func(raw string) (string, error) {
		return s.contacts.SocialProfile(network, raw)
	}
}

func (s *BusinessesService) normalizeContact(values map[string]any, errs fieldErrors, key string, raw any, clean func(string) (string, error)) {
	text, err := toString(raw)
	if err != nil {
		errs.add(key, err.Error())
		return
	}
	if text == nil {
		values[key] = text
		return
	}
	cleaned, err := clean(*text)
	if err != nil {
		errs.add(key, err.Error())
		return
	}
	values[key] = &cleaned
}

func normalizeRange(values map[string]any, errs fieldErrors, key string, raw any, lo, hi float64) {
	f, err := toFloat(raw)
	if err != nil {
		errs.add(key, err.Error())
		return
	}
	if f != nil && (*f < lo || *f > hi) {
		errs.add(key, fmt.Sprintf("must be between %g and %g", lo, hi))
		return
	}
	values[key] = f
}

// resolveIndustry accepts an industry id or slug and returns the id.
func (s *BusinessesService) resolveIndustry(ctx context.Context, raw any) (*int64, error) {
	text, err := toString(raw)
	if err != nil {
		return nil, errors.New("must be an industry id or slug")
	}
	if text == nil {
		return nil, nil
	}

	var industry *entity.Industry
	if id, convErr := strconv.ParseInt(*text, 10, 64); convErr == nil {
		industry, err = s.industries.FindByID(ctx, id)
	} else {
		industry, err = s.industries.FindBySlug(ctx, strings.ToLower(*text))
	}
	if err != nil {
		if errors.Is(err, repository.ErrIndustryNotFound) {
			return nil, errors.New("must reference an existing industry")
		}
		s.logger.ErrorContext(ctx, "industry lookup failed", slog.Any("error", err))
		return nil, errors.New("could not be verified")
	}
	return &industry.ID, nil
}

func checkPriceOrder(errs fieldErrors, minPrice, maxPrice *float64) {
	if errs.has(dto.FieldMinPrice) || errs.has(dto.FieldMaxPrice) {
		return
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		errs.add(dto.FieldMinPrice, "must be less than or equal to maxPrice")
	}
}

// applyField copies a normalized value onto the entity.
func applyField(b *entity.Business, key string, value any) {
	str, _ := value.(*string)
	num, _ := value.(*float64)
	switch key {
	case dto.FieldName:
		if str != nil {
			b.Name = *str
		}
	case dto.FieldCategory:
		b.Category = str
	case dto.FieldIndustryType:
		b.IndustryType, _ = value.(*int64)
	case dto.FieldStatus:
		if status, ok := value.(string); ok {
			b.Status = status
		}
	case dto.FieldMobileNumber:
		b.MobileNumber = str
	case dto.FieldEmailID:
		b.EmailID = str
	case dto.FieldWebsite:
		b.Website = str
	case dto.FieldFacebookProfile:
		b.FacebookProfile = str
	case dto.FieldInstagramProfile:
		b.InstagramProfile = str
	case dto.FieldTwitterProfile:
		b.TwitterProfile = str
	case dto.FieldLinkedinProfile:
		b.LinkedinProfile = str
	case dto.FieldAddress:
		b.Address = str
	case dto.FieldLocation:
		b.Location = str
	case dto.FieldPlusCode:
		b.PlusCode = str
	case dto.FieldClosingHours:
		b.ClosingHours = str
	case dto.FieldLatitude:
		b.Latitude = num
	case dto.FieldLongitude:
		b.Longitude = num
	case dto.FieldMinPrice:
		b.MinPrice = num
	case dto.FieldMaxPrice:
		b.MaxPrice = num
	case dto.FieldReviewCount:
		b.ReviewCount, _ = value.(int)
	case dto.FieldRating:
		b.Rating, _ = value.(float64)
	case dto.FieldThumbnail:
		b.Thumbnail = str
	}
}
