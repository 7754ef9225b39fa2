package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/handler"
	middlewarepkg "github.com/octobees/business-directory/internal/middleware"
	"github.com/octobees/business-directory/internal/service"
)

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/admin/login"

var notices = map[string]string{
	"status":  "Status updated",
	"updated": "Business updated",
	"deleted": "Business deleted",
	"created": "Industry created",
	"saved":   "Industry updated",
	"removed": "Industry deleted",
}

type loginView struct {
	Next     string
	Username string
	Error    string
}

type dashboardFilter struct {
	Name         string
	Status       string
	IndustryType string
}

type dashboardView struct {
	Operator   string
	Flash      string
	Error      string
	Filter     dashboardFilter
	Statuses   []string
	Industries []entity.Industry
	Businesses []entity.Business
	Pager      pager
}

type editView struct {
	businessFormView
	Operator  string
	ID        int64
	Thumbnail string
}

type industriesView struct {
	Operator   string
	Flash      string
	Error      string
	Industries []entity.Industry
	Values     map[string]string
	Errors     map[string]string
}

func operatorName(c echo.Context) string {
	name, _ := c.Get(middlewarepkg.ContextKeyOperatorName).(string)
	return name
}

// safeNext only follows redirects back into the admin panel.
func safeNext(next string) string {
	if next == "/admin" || strings.HasPrefix(next, "/admin/") || strings.HasPrefix(next, "/admin?") {
		if !strings.HasPrefix(next, LoginPath) {
			return next
		}
	}
	return "/admin"
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// LoginForm renders the operator login page.
func (p *Pages) LoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login", loginView{Next: c.QueryParam("next")})
}

// Login checks operator credentials and starts a cookie session.
func (p *Pages) Login(c echo.Context) error {
	view := loginView{
		Next:     c.FormValue("next"),
		Username: strings.TrimSpace(c.FormValue("username")),
	}
	token, err := p.auth.Login(c.Request().Context(), view.Username, c.FormValue("password"))
	if err != nil {
		status := http.StatusUnauthorized
		view.Error = "Invalid credentials"
		if !errors.Is(err, service.ErrInvalidCredentials) {
			msg, _ := errorMessage(err)
			status = statusFor(err)
			if msg == "" {
				p.logError(c, "operator login", err)
				msg = "Unable to sign in right now."
			}
			view.Error = msg
		}
		return c.Render(status, "login", view)
	}

	middlewarepkg.SetSessionCookie(c, token, int(p.sessionTTL.Seconds()), p.cookieSecure)
	return c.Redirect(http.StatusSeeOther, safeNext(view.Next))
}

// Logout clears the session cookie.
func (p *Pages) Logout(c echo.Context) error {
	middlewarepkg.ClearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, LoginPath)
}

func (p *Pages) dashboard(c echo.Context, status int, actionErr string) error {
	ctx := c.Request().Context()
	view := dashboardView{
		Operator: operatorName(c),
		Flash:    notices[c.QueryParam("notice")],
		Error:    actionErr,
		Statuses: statuses,
		Filter: dashboardFilter{
			Name:         c.QueryParam("business_name"),
			Status:       c.QueryParam("status"),
			IndustryType: c.QueryParam("industry_type"),
		},
	}

	industries, err := p.industries.List(ctx)
	if err != nil {
		p.logError(c, "load industries", err)
	}
	view.Industries = industries

	filter, err := handler.ParseBusinessFilter(c)
	if err == nil {
		filter.Limit = dashboardPageSize
		var resp dto.BusinessListResponse
		resp, err = p.businesses.List(ctx, filter)
		if err == nil {
			view.Businesses = resp.Data
			view.Pager = newPager("/admin", filterValues(c, "business_name", "status", "industry_type"), resp.Pagination)
		}
	}
	if err != nil {
		msg, fields := errorMessage(err)
		if msg == "" {
			p.logError(c, "load businesses", err)
			msg = "Unable to load businesses right now."
		} else if len(fields) > 0 {
			msg = "Invalid filters: " + describeFields(fields)
		}
		if view.Error == "" {
			view.Error = msg
		}
		if status == http.StatusOK {
			status = statusFor(err)
		}
	}
	return c.Render(status, "admin", view)
}

// Dashboard lists businesses for moderation.
func (p *Pages) Dashboard(c echo.Context) error {
	return p.dashboard(c, http.StatusOK, "")
}

// UpdateStatus changes only the status of one business.
func (p *Pages) UpdateStatus(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return p.dashboard(c, http.StatusBadRequest, "Invalid business id")
	}
	payload := dto.BusinessPayloadFromStrings(map[string]string{dto.FieldStatus: c.FormValue("status")})
	payload.ID = dto.ID(id)
	if err := p.businesses.Update(c.Request().Context(), payload); err != nil {
		return p.actionFailed(c, err, "Failed to update status")
	}
	return c.Redirect(http.StatusSeeOther, "/admin?notice=status")
}

// DeleteBusiness removes one business.
func (p *Pages) DeleteBusiness(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return p.dashboard(c, http.StatusBadRequest, "Invalid business id")
	}
	if err := p.businesses.Delete(c.Request().Context(), id); err != nil {
		return p.actionFailed(c, err, "Failed to delete business")
	}
	return c.Redirect(http.StatusSeeOther, "/admin?notice=deleted")
}

func (p *Pages) actionFailed(c echo.Context, err error, fallback string) error {
	msg, fields := errorMessage(err)
	if msg == "" {
		p.logError(c, fallback, err)
		msg = fallback
	} else if len(fields) > 0 {
		msg += ": " + describeFields(fields)
	}
	return p.dashboard(c, statusFor(err), msg)
}

func businessValues(b *entity.Business) map[string]string {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	num := func(f *float64) string {
		if f == nil {
			return ""
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	values := map[string]string{
		dto.FieldName:             b.Name,
		dto.FieldCategory:         str(b.Category),
		dto.FieldStatus:           b.Status,
		dto.FieldMobileNumber:     str(b.MobileNumber),
		dto.FieldEmailID:          str(b.EmailID),
		dto.FieldWebsite:          str(b.Website),
		dto.FieldFacebookProfile:  str(b.FacebookProfile),
		dto.FieldInstagramProfile: str(b.InstagramProfile),
		dto.FieldTwitterProfile:   str(b.TwitterProfile),
		dto.FieldLinkedinProfile:  str(b.LinkedinProfile),
		dto.FieldAddress:          str(b.Address),
		dto.FieldLocation:         str(b.Location),
		dto.FieldPlusCode:         str(b.PlusCode),
		dto.FieldClosingHours:     str(b.ClosingHours),
		dto.FieldLatitude:         num(b.Latitude),
		dto.FieldLongitude:        num(b.Longitude),
		dto.FieldMinPrice:         num(b.MinPrice),
		dto.FieldMaxPrice:         num(b.MaxPrice),
		dto.FieldReviewCount:      strconv.Itoa(b.ReviewCount),
		dto.FieldRating:           strconv.FormatFloat(b.Rating, 'f', -1, 64),
	}
	if b.IndustryType != nil {
		values[dto.FieldIndustryType] = strconv.FormatInt(*b.IndustryType, 10)
	}
	return values
}

func (p *Pages) editView(c echo.Context, b *entity.Business) editView {
	industries, err := p.industries.List(c.Request().Context())
	if err != nil {
		p.logError(c, "load industries", err)
	}
	view := editView{
		businessFormView: businessFormView{
			Industries: industries,
			Statuses:   statuses,
			Values:     businessValues(b),
			Errors:     map[string]string{},
		},
		Operator: operatorName(c),
		ID:       b.ID,
	}
	if b.Thumbnail != nil {
		view.Thumbnail = *b.Thumbnail
	}
	return view
}

// EditForm renders the full edit form of one business.
func (p *Pages) EditForm(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return p.dashboard(c, http.StatusBadRequest, "Invalid business id")
	}
	business, err := p.businesses.Get(c.Request().Context(), id)
	if err != nil {
		return p.actionFailed(c, err, "Failed to load business")
	}
	return c.Render(http.StatusOK, "admin_edit", p.editView(c, business))
}

// Edit applies the full edit form as one sparse update. Blank inputs clear
// their column. The thumbnail is only touched when a file is uploaded or the
// remove box is ticked.
func (p *Pages) Edit(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return p.dashboard(c, http.StatusBadRequest, "Invalid business id")
	}
	ctx := c.Request().Context()
	business, err := p.businesses.Get(ctx, id)
	if err != nil {
		return p.actionFailed(c, err, "Failed to load business")
	}
	view := p.editView(c, business)

	if err := parseForm(c); err != nil {
		view.Error = "Invalid form submission"
		return c.Render(http.StatusBadRequest, "admin_edit", view)
	}

	fields := make([]string, 0, len(dto.BusinessFields))
	for _, f := range dto.BusinessFields {
		if f != dto.FieldThumbnail {
			fields = append(fields, f)
		}
	}
	submitted := formValues(c, fields)
	for k, v := range submitted {
		view.Values[k] = v
	}

	thumbnail, err := thumbnailFromForm(c)
	if err != nil {
		view.Errors[dto.FieldThumbnail] = err.Error()
		return c.Render(http.StatusBadRequest, "admin_edit", view)
	}
	switch {
	case thumbnail != "":
		submitted[dto.FieldThumbnail] = thumbnail
	case c.FormValue("clear_thumbnail") != "":
		submitted[dto.FieldThumbnail] = ""
	}

	payload := dto.BusinessPayloadFromStrings(submitted)
	payload.ID = dto.ID(id)
	if err := p.businesses.Update(ctx, payload); err != nil {
		msg, fieldErrs := errorMessage(err)
		if msg == "" {
			p.logError(c, "update business", err)
			msg = "Failed to update business"
		}
		view.Error = msg
		for k, v := range fieldErrs {
			view.Errors[k] = v
		}
		return c.Render(statusFor(err), "admin_edit", view)
	}
	return c.Redirect(http.StatusSeeOther, "/admin?notice=updated")
}
