package restaurants

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"restotrack/internal/forms"
	"restotrack/shared/go/logging"
	"restotrack/shared/go/models"
)

func newTestService(t *testing.T) (*Service, *recordingStore) {
	t.Helper()
	store := &recordingStore{}
	repo, _ := newTestRepo(t, store)
	return NewService(repo, logging.Nop()), store
}

func validForm() forms.Restaurant {
	return forms.Restaurant{
		Name:           "Sushi Go",
		Address:        "1 Main St",
		PriceRangeText: &models.PriceRangeText{Min: 2000, Max: 4000},
		FoodGenre:      "Japanese",
		Links:          []string{"https://sushi.example"},
	}
}

func TestServiceCreateDerivesTier(t *testing.T) {
	svc, store := newTestService(t)

	created, err := svc.Create(context.Background(), validForm())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.PriceRange == nil || *created.PriceRange != 2 {
		t.Fatalf("expected tier 2 from the form layer, got %v", created.PriceRange)
	}
	if created.Location.Coordinates.Lat != forms.DefaultLat {
		t.Fatalf("expected default coordinates, got %+v", created.Location.Coordinates)
	}
	if store.saveCount() != 1 {
		t.Fatalf("expected one save, got %d", store.saveCount())
	}
}

func TestServiceCreateRejectsInvalidForm(t *testing.T) {
	svc, store := newTestService(t)

	form := validForm()
	form.Name = ""
	form.Links = []string{"not a url"}

	_, err := svc.Create(context.Background(), form)
	var verr *forms.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected name and link errors, got %v", verr.Fields)
	}
	if store.saveCount() != 0 {
		t.Fatalf("invalid form must not reach storage")
	}
}

func TestServiceGetAndUpdateNotFound(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update(ctx, "missing", validForm()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update: expected ErrNotFound, got %v", err)
	}
	if store.saveCount() != 0 {
		t.Fatalf("missing update must not write")
	}
}

func TestServiceUpdate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, validForm())

	form := forms.FromRestaurant(created)
	form.Rating = forms.ToggleRating(form.Rating, 4)
	form.PriceRangeText = &models.PriceRangeText{Min: 8000, Max: 12000}

	updated, err := svc.Update(ctx, created.ID, form)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if *updated.Rating != 4 || *updated.PriceRange != 4 {
		t.Fatalf("unexpected update result %+v", updated)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil || got.UpdatedAt != updated.UpdatedAt {
		t.Fatalf("Get after update: %+v, %v", got, err)
	}
}

func TestServiceDeleteIsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, _ := svc.Create(ctx, validForm())

	for i := 0; i < 2; i++ {
		if err := svc.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete #%d: %v", i+1, err)
		}
	}

	items, total, err := svc.List(ctx, models.Filter{})
	if err != nil || total != 0 || len(items) != 0 {
		t.Fatalf("expected empty listing, got %d/%d %v", len(items), total, err)
	}
}

func TestServiceListReportsTotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _ = svc.Create(ctx, validForm())
	other := validForm()
	other.Name = "Trattoria"
	other.FoodGenre = "Italian"
	_, _ = svc.Create(ctx, other)

	items, total, err := svc.List(ctx, models.Filter{Genre: "Italian"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(items) != 1 || items[0].Name != "Trattoria" {
		t.Fatalf("unexpected listing %d/%d", len(items), total)
	}

	genres, err := svc.Genres(ctx)
	if err != nil || len(genres) != 2 {
		t.Fatalf("unexpected genres %v %v", genres, err)
	}
}

func TestServiceStorageErrorIsWrapped(t *testing.T) {
	svc, store := newTestService(t)
	boom := errors.New("offline")
	store.saveErr = boom

	if _, err := svc.Create(context.Background(), validForm()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
}

func TestServiceMutationsLogRequestID(t *testing.T) {
	var buf bytes.Buffer
	repo, _ := newTestRepo(t, &recordingStore{})
	svc := NewService(repo, logging.New(logging.Config{Level: "info", Output: &buf}))
	ctx := logging.WithRequestID(context.Background(), "req-42")

	created, err := svc.Create(ctx, validForm())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Update(ctx, created.ID, validForm()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected one log line per mutation, got %d:\n%s", len(lines), buf.String())
	}
	for i, msg := range []string{"restaurant added", "restaurant updated", "restaurant delete requested"} {
		if !strings.Contains(lines[i], msg) || !strings.Contains(lines[i], `"request_id":"req-42"`) {
			t.Fatalf("line %d missing %q or request id: %s", i, msg, lines[i])
		}
	}
}
