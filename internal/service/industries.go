package service

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/repository"
)

var slugPattern = regexp.MustCompile(`^[a-z-]+$`)

// NewValidator returns a validator that reports json field names and knows
// the industry slug rule.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// validationErrorFrom converts validator errors into a ValidationError.
func validationErrorFrom(err error) error {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}
	errs := fieldErrors{}
	for _, fe := range vErrs {
		errs.add(fe.Field(), fieldMessage(fe))
	}
	return errs.err()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "must be a valid email address"
	case "slug":
		return "may only contain lowercase letters and hyphens"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// IndustriesService manages the industry catalogue.
type IndustriesService struct {
	repo       repository.IndustriesRepository
	businesses repository.BusinessesRepository
	validate   *validator.Validate
}

// NewIndustriesService builds the service.
func NewIndustriesService(repo repository.IndustriesRepository, businesses repository.BusinessesRepository, validate *validator.Validate) *IndustriesService {
	if validate == nil {
		validate = NewValidator()
	}
	return &IndustriesService{repo: repo, businesses: businesses, validate: validate}
}

// List returns all industries ordered by name.
func (s *IndustriesService) List(ctx context.Context) ([]entity.Industry, error) {
	return s.repo.List(ctx)
}

// Create validates and stores a new industry.
func (s *IndustriesService) Create(ctx context.Context, req dto.IndustryRequest) (int64, error) {
	req = normalizeIndustryRequest(req)
	if err := s.validate.Struct(req); err != nil {
		return 0, validationErrorFrom(err)
	}
	return s.repo.Create(ctx, req.Name, req.IndustryType)
}

// Update renames an industry or changes its slug.
func (s *IndustriesService) Update(ctx context.Context, req dto.IndustryRequest) error {
	req = normalizeIndustryRequest(req)
	errs := fieldErrors{}
	if !req.ID.Set {
		errs.add("id", "id is required")
	}
	if err := s.validate.Struct(req); err != nil {
		if vErr, ok := IsValidationError(validationErrorFrom(err)); ok {
			for field, msg := range vErr.Fields {
				errs.add(field, msg)
			}
		} else {
			return err
		}
	}
	if err := errs.err(); err != nil {
		return err
	}
	return s.repo.Update(ctx, req.ID.Value, req.Name, req.IndustryType)
}

// Delete removes an industry that no business references.
func (s *IndustriesService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	count, err := s.businesses.CountByIndustry(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrIndustryInUse
	}
	return s.repo.Delete(ctx, id)
}

func normalizeIndustryRequest(req dto.IndustryRequest) dto.IndustryRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.IndustryType = strings.TrimSpace(req.IndustryType)
	return req
}
