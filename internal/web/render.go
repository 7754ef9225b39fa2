package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/media"
)

//go:embed templates/*.html
var templateFS embed.FS

// page name -> files parsed after the layout.
var pageFiles = map[string][]string{
	"index":            {"index.html"},
	"listing":          {"listing.html"},
	"new":              {"business_form.html", "new.html"},
	"login":            {"login.html"},
	"admin":            {"admin_nav.html", "admin.html"},
	"admin_edit":       {"admin_nav.html", "business_form.html", "admin_edit.html"},
	"admin_industries": {"admin_nav.html", "admin_industries.html"},
}

var templateFuncs = template.FuncMap{
	"imageURL":   imageURL,
	"priceRange": priceRange,
}

// Renderer implements echo.Renderer over the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page once.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pageFiles))}
	for name, files := range pageFiles {
		patterns := append([]string{"templates/layout.html"}, prefix("templates/", files)...)
		tmpl, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, patterns...)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes the named page wrapped in the layout.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return tmpl.ExecuteTemplate(w, "layout", data)
}

func prefix(dir string, files []string) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = dir + f
	}
	return out
}

// imageURL only lets hosted http(s) URLs and inline image payloads into src
// attributes.
func imageURL(thumbnail any) template.URL {
	var value string
	switch v := thumbnail.(type) {
	case string:
		value = v
	case *string:
		if v != nil {
			value = *v
		}
	}
	value = strings.TrimSpace(value)
	if media.IsDataURI(value) || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "http://") {
		return template.URL(value)
	}
	return ""
}

func priceRange(minPrice, maxPrice *float64) string {
	format := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	switch {
	case minPrice != nil && maxPrice != nil:
		return format(*minPrice) + " - " + format(*maxPrice)
	case minPrice != nil:
		return "from " + format(*minPrice)
	case maxPrice != nil:
		return "up to " + format(*maxPrice)
	}
	return ""
}
