package web

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/handler"
	"github.com/octobees/business-directory/internal/service"
)

type indexView struct {
	Industries []entity.Industry
	Error      string
}

type listingFilter struct {
	Name     string
	Location string
	MinPrice string
	MaxPrice string
}

type listingView struct {
	Slug       string
	Industry   *entity.Industry
	Filter     listingFilter
	Businesses []entity.Business
	Pager      pager
	Error      string
}

type businessFormView struct {
	Slug       string
	Industry   *entity.Industry
	Industries []entity.Industry
	Statuses   []string
	Values     map[string]string
	Errors     map[string]string
	Success    string
	Error      string
}

// Index lists the industries.
func (p *Pages) Index(c echo.Context) error {
	industries, err := p.industries.List(c.Request().Context())
	if err != nil {
		p.logError(c, "load industries", err)
		return c.Render(http.StatusInternalServerError, "index", indexView{Error: "Unable to load industries right now."})
	}
	return c.Render(http.StatusOK, "index", indexView{Industries: industries})
}

// Listing renders the active businesses of one industry. A slug that does not
// resolve to an industry lists every active business.
func (p *Pages) Listing(c echo.Context) error {
	ctx := c.Request().Context()
	slug := c.Param("industry_type")
	view := listingView{
		Slug: slug,
		Filter: listingFilter{
			Name:     c.QueryParam("business_name"),
			Location: c.QueryParam("location"),
			MinPrice: c.QueryParam("minPrice"),
			MaxPrice: c.QueryParam("maxPrice"),
		},
	}

	filter, err := handler.ParseBusinessFilter(c)
	if err != nil {
		_, fields := errorMessage(err)
		view.Error = "Invalid filters: " + describeFields(fields)
		return c.Render(http.StatusBadRequest, "listing", view)
	}

	industries, err := p.industries.List(ctx)
	if err != nil {
		p.logError(c, "load industries", err)
		view.Error = "Unable to load businesses right now."
		return c.Render(http.StatusInternalServerError, "listing", view)
	}
	view.Industry = service.ResolveIndustry(industries, slug)

	filter.IndustryType = nil
	if view.Industry != nil {
		filter.IndustryType = &view.Industry.ID
	}
	filter.Status = entity.StatusActive
	filter.Limit = listingPageSize

	resp, err := p.businesses.List(ctx, filter)
	if err != nil {
		if _, fields := errorMessage(err); len(fields) > 0 {
			view.Error = "Invalid filters: " + describeFields(fields)
			return c.Render(http.StatusBadRequest, "listing", view)
		}
		p.logError(c, "load businesses", err)
		view.Error = "Unable to load businesses right now."
		return c.Render(http.StatusInternalServerError, "listing", view)
	}

	view.Businesses = resp.Data
	view.Pager = newPager("/"+slug, filterValues(c, "business_name", "location", "minPrice", "maxPrice"), resp.Pagination)
	return c.Render(http.StatusOK, "listing", view)
}

func (p *Pages) newFormView(c echo.Context) (businessFormView, error) {
	slug := c.Param("industry_type")
	view := businessFormView{Slug: slug, Values: map[string]string{}, Errors: map[string]string{}}
	industries, err := p.industries.List(c.Request().Context())
	if err != nil {
		return view, err
	}
	view.Industry = service.ResolveIndustry(industries, slug)
	if view.Industry == nil {
		view.Industries = industries
	}
	return view, nil
}

// NewBusinessForm renders the public submission form.
func (p *Pages) NewBusinessForm(c echo.Context) error {
	view, err := p.newFormView(c)
	if err != nil {
		p.logError(c, "load industries", err)
		view.Error = "Unable to load the form right now."
		return c.Render(http.StatusInternalServerError, "new", view)
	}
	return c.Render(http.StatusOK, "new", view)
}

// CreateBusiness stores a public submission. It is always pending review.
func (p *Pages) CreateBusiness(c echo.Context) error {
	view, err := p.newFormView(c)
	if err != nil {
		p.logError(c, "load industries", err)
		view.Error = "Unable to submit the form right now."
		return c.Render(http.StatusInternalServerError, "new", view)
	}
	if err := parseForm(c); err != nil {
		view.Error = "Invalid form submission"
		return c.Render(http.StatusBadRequest, "new", view)
	}

	fields := make([]string, 0, len(dto.BusinessFields))
	for _, f := range dto.BusinessFields {
		if f != dto.FieldStatus && f != dto.FieldThumbnail {
			fields = append(fields, f)
		}
	}
	view.Values = formValues(c, fields)
	submitted := make(map[string]string, len(view.Values)+2)
	for k, v := range view.Values {
		if v != "" {
			submitted[k] = v
		}
	}
	if view.Industry != nil {
		submitted[dto.FieldIndustryType] = strconv.FormatInt(view.Industry.ID, 10)
	}

	thumbnail, err := thumbnailFromForm(c)
	if err != nil {
		view.Errors[dto.FieldThumbnail] = err.Error()
		return c.Render(http.StatusBadRequest, "new", view)
	}
	if thumbnail != "" {
		submitted[dto.FieldThumbnail] = thumbnail
	}

	if _, err := p.businesses.CreatePublic(c.Request().Context(), dto.BusinessPayloadFromStrings(submitted)); err != nil {
		msg, fieldErrs := errorMessage(err)
		if msg == "" {
			p.logError(c, "create business", err)
			msg = "Failed to create business"
		}
		view.Error = msg
		for k, v := range fieldErrs {
			view.Errors[k] = v
		}
		return c.Render(statusFor(err), "new", view)
	}

	fresh, _ := p.newFormView(c)
	fresh.Success = "Thanks! Your business was submitted and is awaiting review."
	return c.Render(http.StatusCreated, "new", fresh)
}
