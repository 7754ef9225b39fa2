package entity

// Industry is a category taxonomy entry. IndustryType is the URL slug.
type Industry struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	IndustryType string `json:"industry_type"`
}
