package service

import (
	"strings"
	"unicode"

	"github.com/octobees/business-directory/internal/entity"
)

// ResolveIndustry maps a URL slug onto an industry. The slug is compared
// case-insensitively with industry_type first, then with the name lower-cased
// and whitespace replaced by hyphens. It returns nil when nothing matches.
func ResolveIndustry(industries []entity.Industry, slug string) *entity.Industry {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil
	}
	for i := range industries {
		if strings.EqualFold(industries[i].IndustryType, slug) {
			return &industries[i]
		}
	}
	for i := range industries {
		if hyphenate(industries[i].Name) == slug {
			return &industries[i]
		}
	}
	return nil
}

func hyphenate(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), unicode.IsSpace), "-")
}
