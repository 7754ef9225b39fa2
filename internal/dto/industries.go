package dto

// IndustryRequest is used for both create and update of industries.
type IndustryRequest struct {
	ID           FlexInt64 `json:"id"`
	Name         string    `json:"name" form:"name" validate:"required,max=120"`
	IndustryType string    `json:"industry_type" form:"industry_type" validate:"required,slug"`
}
