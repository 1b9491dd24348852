package client

import (
	"context"
	"net/http"
	"net/url"
)

// FoodQuery narrows GET /api/food. Zero values are omitted.
type FoodQuery struct {
	Query          string
	Mixable        string
	FoundationOnly bool
	Category       string
	Sort           string
	Direction      string
}

func (q FoodQuery) encode() string {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("q", q.Query)
	set("mixable", q.Mixable)
	set("category", q.Category)
	set("sort", q.Sort)
	set("dir", q.Direction)
	if q.FoundationOnly {
		values.Set("foundation", "true")
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// ListFoods returns the active catalog. An unfiltered listing is remembered
// and used to validate drafts before they are sent.
func (c *Client) ListFoods(ctx context.Context, query FoodQuery) ([]Food, error) {
	var foods []Food
	if err := c.do(ctx, http.MethodGet, "/api/food"+query.encode(), nil, &foods, protectedRequest); err != nil {
		return nil, err
	}
	if query == (FoodQuery{}) {
		c.setFoods(foods)
	}
	return foods, nil
}

// Foods returns a copy of the catalog remembered from the last unfiltered
// ListFoods, or nil when none has been loaded.
func (c *Client) Foods() []Food {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.foods == nil {
		return nil
	}
	return append([]Food(nil), c.foods...)
}

func (c *Client) setFoods(foods []Food) {
	c.mu.Lock()
	c.foods = append(make([]Food, 0, len(foods)), foods...)
	c.mu.Unlock()
}

func (c *Client) GetFood(ctx context.Context, extID string) (Food, error) {
	var food Food
	err := c.do(ctx, http.MethodGet, "/api/food/"+url.PathEscape(extID), nil, &food, protectedRequest)
	return food, err
}

func (c *Client) CreateFood(ctx context.Context, input FoodInput) (Food, error) {
	var food Food
	err := c.do(ctx, http.MethodPost, "/api/food", input, &food, protectedRequest)
	return food, err
}

func (c *Client) UpdateFood(ctx context.Context, extID string, input FoodInput) (Food, error) {
	var food Food
	err := c.do(ctx, http.MethodPut, "/api/food/"+url.PathEscape(extID), input, &food, protectedRequest)
	return food, err
}

func (c *Client) DeleteFood(ctx context.Context, extID string) error {
	return c.do(ctx, http.MethodDelete, "/api/food/"+url.PathEscape(extID), nil, nil, protectedRequest)
}

func (c *Client) ListNutrition(ctx context.Context) ([]Nutrition, error) {
	var profiles []Nutrition
	if err := c.do(ctx, http.MethodGet, "/api/nutrition", nil, &profiles, protectedRequest); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (c *Client) GetNutrition(ctx context.Context, extID string) (Nutrition, error) {
	var profile Nutrition
	err := c.do(ctx, http.MethodGet, "/api/nutrition/"+url.PathEscape(extID), nil, &profile, protectedRequest)
	return profile, err
}

func (c *Client) CreateNutrition(ctx context.Context, input Nutrition) (Nutrition, error) {
	var profile Nutrition
	err := c.do(ctx, http.MethodPost, "/api/nutrition", input, &profile, protectedRequest)
	return profile, err
}

func (c *Client) UpdateNutrition(ctx context.Context, extID string, input Nutrition) (Nutrition, error) {
	var profile Nutrition
	err := c.do(ctx, http.MethodPut, "/api/nutrition/"+url.PathEscape(extID), input, &profile, protectedRequest)
	return profile, err
}

func (c *Client) DeleteNutrition(ctx context.Context, extID string) error {
	return c.do(ctx, http.MethodDelete, "/api/nutrition/"+url.PathEscape(extID), nil, nil, protectedRequest)
}

func (c *Client) ListCompanies(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := c.do(ctx, http.MethodGet, "/api/company", nil, &companies, protectedRequest); err != nil {
		return nil, err
	}
	return companies, nil
}

func (c *Client) GetCompany(ctx context.Context, extID string) (Company, error) {
	var company Company
	err := c.do(ctx, http.MethodGet, "/api/company/"+url.PathEscape(extID), nil, &company, protectedRequest)
	return company, err
}

func (c *Client) CreateCompany(ctx context.Context, input CompanyInput) (Company, error) {
	var company Company
	err := c.do(ctx, http.MethodPost, "/api/company", input, &company, protectedRequest)
	return company, err
}

// UpdateCompany sends only the fields set on input.
func (c *Client) UpdateCompany(ctx context.Context, extID string, input CompanyInput) (Company, error) {
	var company Company
	err := c.do(ctx, http.MethodPatch, "/api/company/"+url.PathEscape(extID), input, &company, protectedRequest)
	return company, err
}

func (c *Client) DeleteCompany(ctx context.Context, extID string) error {
	return c.do(ctx, http.MethodDelete, "/api/company/"+url.PathEscape(extID), nil, nil, protectedRequest)
}
