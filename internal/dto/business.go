package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/octobees/business-directory/internal/entity"
)

// Default price window applied when a list request omits one of the bounds.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 9999999
)

// Business payload keys accepted on create and update.
const (
	FieldName             = "name"
	FieldCategory         = "category"
	FieldIndustryType     = "industry_type"
	FieldStatus           = "status"
	FieldMobileNumber     = "mobile_number"
	FieldEmailID          = "email_id"
	FieldWebsite          = "website"
	FieldFacebookProfile  = "facebook_profile"
	FieldInstagramProfile = "instagram_profile"
	FieldTwitterProfile   = "twitter_profile"
	FieldLinkedinProfile  = "linkedin_profile"
	FieldAddress          = "address"
	FieldLocation         = "location"
	FieldPlusCode         = "plus_code"
	FieldClosingHours     = "closing_hours"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldMinPrice         = "minPrice"
	FieldMaxPrice         = "maxPrice"
	FieldReviewCount      = "review_count"
	FieldRating           = "rating"
	FieldThumbnail        = "thumbnail"
)

// BusinessFields lists every writable business key in form order.
var BusinessFields = []string{
	FieldName, FieldCategory, FieldIndustryType, FieldStatus,
	FieldMobileNumber, FieldEmailID, FieldWebsite,
	FieldFacebookProfile, FieldInstagramProfile, FieldTwitterProfile, FieldLinkedinProfile,
	FieldAddress, FieldLocation, FieldPlusCode, FieldClosingHours,
	FieldLatitude, FieldLongitude, FieldMinPrice, FieldMaxPrice,
	FieldReviewCount, FieldRating, FieldThumbnail,
}

var knownBusinessFields = func() map[string]struct{} {
	m := make(map[string]struct{}, len(BusinessFields))
	for _, f := range BusinessFields {
		m[f] = struct{}{}
	}
	return m
}()

// UnknownFieldsError reports payload keys that do not map to a business column.
type UnknownFieldsError struct {
	Fields []string
}

func (e *UnknownFieldsError) Error() string {
	return fmt.Sprintf("unknown fields: %s", strings.Join(e.Fields, ", "))
}

// BusinessPayload is a sparse business body. Values keeps the raw JSON for
// each key that was present so that explicit nulls can be told apart from
// omitted keys.
type BusinessPayload struct {
	ID     FlexInt64
	Values map[string]json.RawMessage
}

// DecodeBusinessPayload parses a JSON object body and rejects unknown keys.
func DecodeBusinessPayload(data []byte) (BusinessPayload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return BusinessPayload{}, fmt.Errorf("decode business payload: %w", err)
	}
	if raw == nil {
		return BusinessPayload{}, fmt.Errorf("decode business payload: body must be a JSON object")
	}

	payload := BusinessPayload{Values: make(map[string]json.RawMessage, len(raw))}
	var unknown []string
	for key, value := range raw {
		switch {
		case key == "id":
			if err := payload.ID.UnmarshalJSON(value); err != nil {
				return BusinessPayload{}, fmt.Errorf("decode business id: %w", err)
			}
		case isKnownField(key):
			payload.Values[key] = bytes.TrimSpace(value)
		default:
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return BusinessPayload{}, &UnknownFieldsError{Fields: unknown}
	}
	return payload, nil
}

// BusinessPayloadFromStrings builds a payload from form or CSV values. Keys
// outside BusinessFields are dropped.
func BusinessPayloadFromStrings(values map[string]string) BusinessPayload {
	payload := BusinessPayload{Values: make(map[string]json.RawMessage, len(values))}
	for key, value := range values {
		if !isKnownField(key) {
			continue
		}
		encoded, _ := json.Marshal(value)
		payload.Values[key] = encoded
	}
	return payload
}

// Has reports whether key was present in the payload.
func (p BusinessPayload) Has(key string) bool {
	_, ok := p.Values[key]
	return ok
}

// Set stores a value for key, replacing any previous one.
func (p *BusinessPayload) Set(key string, value any) {
	if p.Values == nil {
		p.Values = make(map[string]json.RawMessage)
	}
	encoded, _ := json.Marshal(value)
	p.Values[key] = encoded
}

// Keys returns the present keys in form order.
func (p BusinessPayload) Keys() []string {
	keys := make([]string, 0, len(p.Values))
	for _, f := range BusinessFields {
		if _, ok := p.Values[f]; ok {
			keys = append(keys, f)
		}
	}
	return keys
}

func isKnownField(key string) bool {
	_, ok := knownBusinessFields[key]
	return ok
}

// BusinessFilter contains query parameters for business listing.
type BusinessFilter struct {
	Name         string
	IndustryType *int64
	Status       string
	Location     string
	MinPrice     float64
	MaxPrice     float64
	Page         int
	Limit        int
}

// Offset returns the number of rows skipped for the current page.
func (f BusinessFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// BusinessListResponse is the body of GET /api/business.
type BusinessListResponse struct {
	Data       []entity.Business `json:"data"`
	Pagination Pagination        `json:"pagination"`
}

// CreatedResponse acknowledges a create with the new row id.
type CreatedResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// DeleteResponse acknowledges a business delete.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Inserted int `json:"inserted"`
	Total    int `json:"total"`
}
