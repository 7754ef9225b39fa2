package dirclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/octobees/business-directory/internal/dto"
	"github.com/octobees/business-directory/internal/entity"
	"github.com/octobees/business-directory/internal/service"
)

// BusinessQuery filters ListBusinesses. Zero values are omitted.
type BusinessQuery struct {
	Name         string
	IndustryType int64
	Status       string
	Location     string
	MinPrice     *float64
	MaxPrice     *float64
	Page         int
	Limit        int
}

func (q BusinessQuery) values() url.Values {
	v := url.Values{}
	if q.Name != "" {
		v.Set("business_name", q.Name)
	}
	if q.IndustryType > 0 {
		v.Set("industry_type", formatID(q.IndustryType))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// ListBusinesses returns one page of businesses.
func (c *Client) ListBusinesses(ctx context.Context, q BusinessQuery) (*dto.BusinessListResponse, error) {
	var out dto.BusinessListResponse
	if err := c.do(ctx, http.MethodGet, "/api/business", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBusiness fetches a single business.
func (c *Client) GetBusiness(ctx context.Context, id int64) (*entity.Business, error) {
	var out entity.Business
	if err := c.do(ctx, http.MethodGet, "/api/business/"+formatID(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBusiness submits a listing through the public endpoint. The server
// stores it as pending.
func (c *Client) CreateBusiness(ctx context.Context, fields map[string]any) (int64, error) {
	return c.create(ctx, "/api/business", fields)
}

// CreateBusinessAdmin stores a listing as an operator. Requires a token.
func (c *Client) CreateBusinessAdmin(ctx context.Context, fields map[string]any) (int64, error) {
	return c.create(ctx, "/api/admin/business", fields)
}

func (c *Client) create(ctx context.Context, path string, fields map[string]any) (int64, error) {
	var out dto.CreatedResponse
	if err := c.do(ctx, http.MethodPost, path, nil, fields, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// PatchBusiness sends a sparse update. Keys mapped to nil clear the column.
func (c *Client) PatchBusiness(ctx context.Context, id int64, fields map[string]any) error {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["id"] = id
	return c.do(ctx, http.MethodPatch, "/api/business", nil, body, nil)
}

// DeleteBusiness removes a business.
func (c *Client) DeleteBusiness(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/business", nil, dto.IDRequest{ID: dto.ID(id)}, nil)
}

// ListIndustries returns the full industry catalogue.
func (c *Client) ListIndustries(ctx context.Context) ([]entity.Industry, error) {
	var out struct {
		Data []entity.Industry `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/industries", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// CreateIndustry adds an industry and returns its id.
func (c *Client) CreateIndustry(ctx context.Context, name, slug string) (int64, error) {
	var out dto.CreatedResponse
	req := dto.IndustryRequest{Name: name, IndustryType: slug}
	if err := c.do(ctx, http.MethodPost, "/api/industries", nil, req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateIndustry renames an industry or changes its slug.
func (c *Client) UpdateIndustry(ctx context.Context, id int64, name, slug string) error {
	req := dto.IndustryRequest{ID: dto.ID(id), Name: name, IndustryType: slug}
	return c.do(ctx, http.MethodPut, "/api/industries", nil, req, nil)
}

// DeleteIndustry removes an industry no business references.
func (c *Client) DeleteIndustry(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/industries", nil, dto.IDRequest{ID: dto.ID(id)}, nil)
}

// ResolveIndustry finds the industry addressed by a listing URL slug. It
// returns nil without error when nothing matches.
func (c *Client) ResolveIndustry(ctx context.Context, slug string) (*entity.Industry, error) {
	industries, err := c.ListIndustries(ctx)
	if err != nil {
		return nil, err
	}
	return service.ResolveIndustry(industries, slug), nil
}

// SendOTP asks the server to mail a passcode to email.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/send-otp", nil, dto.SendOTPRequest{Email: email}, nil)
}

// VerifyOTP reports whether otp is the current passcode for email. A rejected
// code is not an error.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (bool, error) {
	var out dto.VerifyOTPResponse
	err := c.do(ctx, http.MethodPost, "/api/verify-otp", nil, dto.VerifyOTPRequest{Email: email, OTP: dto.FlexString(otp)}, &out)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && apiErr.Fields == nil {
			return false, nil
		}
		return false, err
	}
	return out.Verified, nil
}

// Login exchanges operator credentials for a token and keeps it on the
// client for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Data dto.LoginResponse `json:"data"`
	}
	req := dto.LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/admin/login", nil, req, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Data.AccessToken)
	return out.Data.AccessToken, nil
}
