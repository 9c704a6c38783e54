package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"restotrack/internal/forms"
	"restotrack/internal/query"
	"restotrack/internal/restaurants"
	"restotrack/shared/go/models"
)

// APIError is returned by Client for responses it cannot map to a domain error.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to a running restotrack server. It implements RestaurantService,
// so tools share the server's in-memory collection instead of the raw store.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ RestaurantService = (*Client)(nil)

// NewClient returns a Client for the server at baseURL, e.g. http://localhost:8080.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: httpClient,
	}
}

// List fetches the restaurants matching filter plus the unfiltered total.
func (c *Client) List(ctx context.Context, filter models.Filter) ([]models.Restaurant, int, error) {
	params := url.Values{}
	if filter.SearchTerm != "" {
		params.Set("q", filter.SearchTerm)
	}
	if filter.Genre != "" {
		params.Set("genre", filter.Genre)
	}
	if filter.MinRating != 0 {
		params.Set("minRating", strconv.Itoa(filter.MinRating))
	}
	if filter.PriceTier != 0 {
		params.Set("price", strconv.Itoa(filter.PriceTier))
	}
	if filter.Where != "" {
		params.Set("where", filter.Where)
	}

	var resp restaurantListResponse
	if err := c.do(ctx, http.MethodGet, "/restaurants", params, nil, http.StatusOK, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Restaurants, resp.Total, nil
}

// Genres fetches the distinct genres.
func (c *Client) Genres(ctx context.Context) ([]string, error) {
	var resp struct {
		Genres []string `json:"genres"`
	}
	if err := c.do(ctx, http.MethodGet, "/restaurants/genres", nil, nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Genres, nil
}

// Get fetches one restaurant.
func (c *Client) Get(ctx context.Context, id string) (models.Restaurant, error) {
	var out models.Restaurant
	err := c.do(ctx, http.MethodGet, "/restaurants/"+url.PathEscape(id), nil, nil, http.StatusOK, &out)
	return out, err
}

// Create submits form as a new restaurant.
func (c *Client) Create(ctx context.Context, form forms.Restaurant) (models.Restaurant, error) {
	var out models.Restaurant
	err := c.do(ctx, http.MethodPost, "/restaurants", nil, form, http.StatusCreated, &out)
	return out, err
}

// Update replaces the restaurant with id.
func (c *Client) Update(ctx context.Context, id string, form forms.Restaurant) (models.Restaurant, error) {
	var out models.Restaurant
	err := c.do(ctx, http.MethodPut, "/restaurants/"+url.PathEscape(id), nil, form, http.StatusOK, &out)
	return out, err
}

// Delete removes the restaurant with id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/restaurants/"+url.PathEscape(id), nil, nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, want int, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var apiErr errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return responseError(resp.StatusCode, apiErr)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// responseError turns an error body back into the error the server mapped it from.
func responseError(status int, body errorResponse) error {
	switch {
	case status == http.StatusNotFound && body.Error == msgRestaurantNotFound:
		return restaurants.ErrNotFound
	case status == http.StatusBadRequest && len(body.Fields) > 0:
		return &forms.ValidationError{Fields: body.Fields}
	case status == http.StatusBadRequest && strings.Contains(body.Error, query.ErrInvalidExpression.Error()):
		detail := strings.TrimPrefix(body.Error, query.ErrInvalidExpression.Error()+": ")
		return fmt.Errorf("%w: %s", query.ErrInvalidExpression, detail)
	default:
		if body.Error == "" {
			body.Error = http.StatusText(status)
		}
		return &APIError{Status: status, Message: body.Error}
	}
}
