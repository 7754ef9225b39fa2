package entity

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Business statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusPending  = "pending"
)

// ValidStatus reports whether s is one of the known listing statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusPending:
		return true
	}
	return false
}

// Business represents a directory listing.
type Business struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Category         *string   `json:"category"`
	IndustryType     *int64    `json:"industry_type"`
	Status           string    `json:"status"`
	MobileNumber     *string   `json:"mobile_number"`
	EmailID          *string   `json:"email_id"`
	Website          *string   `json:"website"`
	FacebookProfile  *string   `json:"facebook_profile"`
	InstagramProfile *string   `json:"instagram_profile"`
	TwitterProfile   *string   `json:"twitter_profile"`
	LinkedinProfile  *string   `json:"linkedin_profile"`
	Address          *string   `json:"address"`
	Location         *string   `json:"location"`
	PlusCode         *string   `json:"plus_code"`
	ClosingHours     *string   `json:"closing_hours"`
	Latitude         *float64  `json:"latitude"`
	Longitude        *float64  `json:"longitude"`
	MinPrice         *float64  `json:"minPrice"`
	MaxPrice         *float64  `json:"maxPrice"`
	ReviewCount      int       `json:"review_count"`
	Rating           float64   `json:"rating"`
	Thumbnail        *string   `json:"thumbnail"`
	CreatedAt        time.Time `json:"created_at"`
	MapURL           string    `json:"map_url,omitempty"`
}

// BuildMapURL links to the coordinates when both are known and falls back to a
// search on the free-text location, then the address.
func (b *Business) BuildMapURL() string {
	if b.Latitude != nil && b.Longitude != nil {
		return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
			strconv.FormatFloat(*b.Latitude, 'f', -1, 64),
			strconv.FormatFloat(*b.Longitude, 'f', -1, 64))
	}
	for _, candidate := range []*string{b.Location, b.Address} {
		if candidate != nil && strings.TrimSpace(*candidate) != "" {
			return "https://www.google.com/maps/search/" + url.PathEscape(strings.TrimSpace(*candidate))
		}
	}
	return ""
}
