package web

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/octobees/business-directory/internal/dto"
)

func (p *Pages) renderIndustries(c echo.Context, status int, view industriesView) error {
	industries, err := p.industries.List(c.Request().Context())
	if err != nil {
		p.logError(c, "load industries", err)
		if view.Error == "" {
			view.Error = "Unable to load industries right now."
		}
		if status == http.StatusOK {
			status = http.StatusInternalServerError
		}
	}
	view.Operator = operatorName(c)
	view.Industries = industries
	if view.Values == nil {
		view.Values = map[string]string{}
	}
	if view.Errors == nil {
		view.Errors = map[string]string{}
	}
	return c.Render(status, "admin_industries", view)
}

// Industries lists the industry catalogue with inline edit forms.
func (p *Pages) Industries(c echo.Context) error {
	return p.renderIndustries(c, http.StatusOK, industriesView{Flash: notices[c.QueryParam("notice")]})
}

func industryForm(c echo.Context) dto.IndustryRequest {
	return dto.IndustryRequest{
		Name:         strings.TrimSpace(c.FormValue("name")),
		IndustryType: strings.TrimSpace(c.FormValue("industry_type")),
	}
}

func (p *Pages) industryFailed(c echo.Context, req dto.IndustryRequest, err error, fallback string) error {
	msg, fields := errorMessage(err)
	if msg == "" {
		p.logError(c, fallback, err)
		msg = fallback
	}
	view := industriesView{Error: msg, Errors: fields}
	if req.ID.Set {
		if len(fields) > 0 {
			view.Error += ": " + describeFields(fields)
		}
		view.Errors = nil
	} else {
		view.Values = map[string]string{"name": req.Name, "industry_type": req.IndustryType}
	}
	return p.renderIndustries(c, statusFor(err), view)
}

// CreateIndustry adds an industry.
func (p *Pages) CreateIndustry(c echo.Context) error {
	req := industryForm(c)
	if _, err := p.industries.Create(c.Request().Context(), req); err != nil {
		return p.industryFailed(c, req, err, "Failed to create industry")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/industries?notice=created")
}

// UpdateIndustry saves an inline edit.
func (p *Pages) UpdateIndustry(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return p.renderIndustries(c, http.StatusBadRequest, industriesView{Error: "Invalid industry id"})
	}
	req := industryForm(c)
	req.ID = dto.ID(id)
	if err := p.industries.Update(c.Request().Context(), req); err != nil {
		return p.industryFailed(c, req, err, "Failed to update industry")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/industries?notice=saved")
}

// DeleteIndustry removes an industry nothing references.
func (p *Pages) DeleteIndustry(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return p.renderIndustries(c, http.StatusBadRequest, industriesView{Error: "Invalid industry id"})
	}
	if err := p.industries.Delete(c.Request().Context(), id); err != nil {
		return p.industryFailed(c, dto.IndustryRequest{ID: dto.ID(id)}, err, "Failed to delete industry")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/industries?notice=removed")
}

// Register mounts the pages on e. Admin pages require an operator session.
func (p *Pages) Register(e *echo.Echo, session echo.MiddlewareFunc) {
	e.GET("/", p.Index)

	e.GET(LoginPath, p.LoginForm)
	e.POST(LoginPath, p.Login)
	e.POST("/admin/logout", p.Logout)

	admin := e.Group("/admin", session)
	admin.GET("", p.Dashboard)
	admin.POST("/business/:id/status", p.UpdateStatus)
	admin.POST("/business/:id/delete", p.DeleteBusiness)
	admin.GET("/business/:id/edit", p.EditForm)
	admin.POST("/business/:id/edit", p.Edit)
	admin.GET("/industries", p.Industries)
	admin.POST("/industries", p.CreateIndustry)
	admin.POST("/industries/:id", p.UpdateIndustry)
	admin.POST("/industries/:id/delete", p.DeleteIndustry)

	e.GET("/:industry_type", p.Listing)
	e.GET("/:industry_type/new", p.NewBusinessForm)
	e.POST("/:industry_type/new", p.CreateBusiness)
}
