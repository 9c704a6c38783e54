package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"restotrack/internal/forms"
	"restotrack/internal/query"
	"restotrack/internal/restaurants"
	"restotrack/shared/go/logging"
	"restotrack/shared/go/models"
)

func newTestClient(t *testing.T, svc RestaurantService) *Client {
	t.Helper()
	ts := httptest.NewServer(New(svc, logging.Nop()).Routes())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL+"/", ts.Client())
}

func TestClientListSendsFilter(t *testing.T) {
	svc := &stubRestaurantService{listResponse: []models.Restaurant{sampleRestaurant()}, listTotal: 4}
	client := newTestClient(t, svc)

	filter := models.Filter{SearchTerm: "sushi bar", Genre: "Japanese", MinRating: 3, PriceTier: 2, Where: `name != ""`}
	items, total, err := client.List(context.Background(), filter)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 4 || len(items) != 1 || items[0].ID != "r-1" {
		t.Fatalf("unexpected result %d/%d", len(items), total)
	}
	if svc.lastFilter != filter {
		t.Fatalf("filter not forwarded: %+v", svc.lastFilter)
	}
}

func TestClientMapsErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		svc   *stubRestaurantService
		call  func(*Client) error
		check func(error) bool
	}{
		{
			name: "not found",
			svc:  &stubRestaurantService{singleErr: fmt.Errorf("%w: r-9", restaurants.ErrNotFound)},
			call: func(c *Client) error { _, err := c.Get(ctx, "r-9"); return err },
			check: func(err error) bool { return errors.Is(err, restaurants.ErrNotFound) },
		},
		{
			name: "validation",
			svc:  &stubRestaurantService{createErr: &forms.ValidationError{Fields: map[string]string{"name": forms.MsgNameRequired}}},
			call: func(c *Client) error { _, err := c.Create(ctx, forms.Restaurant{}); return err },
			check: func(err error) bool {
				var verr *forms.ValidationError
				return errors.As(err, &verr) && verr.Fields["name"] == forms.MsgNameRequired
			},
		},
		{
			name: "invalid expression",
			svc:  &stubRestaurantService{listErr: fmt.Errorf("%w: bad", query.ErrInvalidExpression)},
			call: func(c *Client) error { _, _, err := c.List(ctx, models.Filter{Where: "x"}); return err },
			check: func(err error) bool { return errors.Is(err, query.ErrInvalidExpression) },
		},
		{
			name: "server failure",
			svc:  &stubRestaurantService{deleteErr: errors.New("disk full")},
			call: func(c *Client) error { return c.Delete(ctx, "r-1") },
			check: func(err error) bool {
				var apiErr *APIError
				return errors.As(err, &apiErr) && apiErr.Status == http.StatusInternalServerError
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.call(newTestClient(t, tc.svc))
			if !tc.check(err) {
				t.Fatalf("unexpected error %v", err)
			}
		})
	}
}

func TestClientDeleteEscapesID(t *testing.T) {
	svc := &stubRestaurantService{}
	client := newTestClient(t, svc)

	if err := client.Delete(context.Background(), "a b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if svc.lastID != "a b" {
		t.Fatalf("expected id to round trip, got %q", svc.lastID)
	}
}
