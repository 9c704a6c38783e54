package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"restotrack/internal/kv"
	"restotrack/shared/go/logging"
	"restotrack/shared/go/models"
)

type failingStore struct {
	getErr error
	putErr error
}

func (s failingStore) Get(context.Context, string) ([]byte, error) { return nil, s.getErr }
func (s failingStore) Put(context.Context, string, []byte) error   { return s.putErr }
func (failingStore) Close() error                                  { return nil }

func intPtr(v int) *int { return &v }

func sampleRestaurants() []models.Restaurant {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.Restaurant{
		{
			ID:   "b",
			Name: "Sushi Saito",
			Location: models.Location{
				Address:     "Minato, Tokyo",
				Coordinates: models.Coordinates{Lat: 35.66, Lng: 139.74},
			},
			PriceRange:     intPtr(5),
			PriceRangeText: &models.PriceRangeText{Min: 30000, Max: 40000},
			Rating:         intPtr(5),
			FoodGenre:      "Sushi",
			Notes:          "book early",
			Links:          []string{"https://example.com", "https://example.com"},
			CreatedAt:      created,
			UpdatedAt:      created.Add(time.Hour),
		},
		{
			ID:        "a",
			Name:      "Ramen Stand",
			Location:  models.Location{Address: "Shinjuku"},
			FoodGenre: "Ramen",
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func TestLoadEmptyStore(t *testing.T) {
	adapter := New(kv.NewMemory())

	items, result := adapter.Load(context.Background())
	if result.Status != StatusEmpty {
		t.Fatalf("expected StatusEmpty, got %s", result.Status)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", items)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := kv.NewMemory()
	adapter := New(store)
	ctx := context.Background()

	want := sampleRestaurants()
	if err := adapter.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, result := adapter.Load(ctx)
	if result.Status != StatusLoaded || result.Count != 2 || result.Err != nil {
		t.Fatalf("unexpected result %+v", result)
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("order not preserved: %s, %s", got[0].ID, got[1].ID)
	}
	if *got[0].PriceRange != 5 || *got[0].Rating != 5 || got[0].PriceRangeText.Max != 40000 {
		t.Fatalf("optional fields lost: %+v", got[0])
	}
	if len(got[0].Links) != 2 {
		t.Fatalf("duplicate links must survive, got %v", got[0].Links)
	}
	if got[1].PriceRange != nil || got[1].Rating != nil || got[1].PriceRangeText != nil {
		t.Fatalf("absent fields must stay absent: %+v", got[1])
	}
	if got[1].Links == nil {
		t.Fatalf("links must decode as an empty list")
	}
	if !got[0].UpdatedAt.Equal(want[0].UpdatedAt) || !got[0].CreatedAt.Equal(want[0].CreatedAt) {
		t.Fatalf("timestamps changed: %v / %v", got[0].CreatedAt, got[0].UpdatedAt)
	}
}

func TestSaveWireFormat(t *testing.T) {
	store := kv.NewMemory()
	adapter := New(store, WithKey("custom"))
	ctx := context.Background()

	items := sampleRestaurants()[1:]
	items[0].Links = nil
	if err := adapter.Save(ctx, items); err != nil {
		t.Fatalf("Save: %v", err)
	}

	raw, err := store.Get(ctx, "custom")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("stored value is not a JSON array: %v", err)
	}
	record := decoded[0]
	for _, key := range []string{"id", "name", "location", "priceRange", "priceRangeText", "rating", "foodGenre", "notes", "links", "createdAt", "updatedAt"} {
		if _, ok := record[key]; !ok {
			t.Fatalf("missing key %q in %s", key, raw)
		}
	}
	if record["priceRange"] != nil || record["rating"] != nil || record["priceRangeText"] != nil {
		t.Fatalf("absent optionals must be null: %s", raw)
	}
	if links, ok := record["links"].([]any); !ok || len(links) != 0 {
		t.Fatalf("links must be an empty array: %s", raw)
	}
	if record["createdAt"] != "2024-03-01T10:00:00Z" {
		t.Fatalf("unexpected timestamp encoding %v", record["createdAt"])
	}
}

func TestSaveEmptyCollection(t *testing.T) {
	store := kv.NewMemory()
	if err := New(store).Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _ := store.Get(context.Background(), DefaultKey)
	if string(raw) != "[]" {
		t.Fatalf("expected [], got %s", raw)
	}
}

func TestLoadAcceptsMillisecondTimestamps(t *testing.T) {
	store := kv.NewMemory()
	raw := `[{"id":"1","name":"Cafe","location":{"address":"x","coordinates":{"lat":1,"lng":2}},` +
		`"priceRange":2,"priceRangeText":null,"rating":null,"foodGenre":"Cafe","notes":"","links":[],` +
		`"createdAt":"2024-01-02T03:04:05.678Z","updatedAt":"2024-01-02T03:04:05.678Z"}]`
	_ = store.Put(context.Background(), DefaultKey, []byte(raw))

	items, result := New(store).Load(context.Background())
	if result.Status != StatusLoaded {
		t.Fatalf("expected StatusLoaded, got %s (%v)", result.Status, result.Err)
	}
	if items[0].CreatedAt.Nanosecond() != 678000000 {
		t.Fatalf("fractional seconds lost: %v", items[0].CreatedAt)
	}
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "definitely not json"},
		{name: "empty value", raw: ""},
		{name: "null", raw: "null"},
		{name: "object", raw: `{"id":"1"}`},
		{name: "missing id", raw: `[{"name":"x","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`},
		{name: "missing timestamps", raw: `[{"id":"1","name":"x"}]`},
		{name: "bad timestamp", raw: `[{"id":"1","createdAt":"yesterday","updatedAt":"2024-01-01T00:00:00Z"}]`},
		{name: "wrong field type", raw: `[{"id":"1","rating":"five","createdAt":"2024-01-01T00:00:00Z","updatedAt":"2024-01-01T00:00:00Z"}]`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := logging.New(logging.Config{Output: &buf})

			store := kv.NewMemory()
			_ = store.Put(context.Background(), DefaultKey, []byte(tc.raw))

			items, result := New(store, WithLogger(logger)).Load(context.Background())
			if result.Status != StatusCorrupt {
				t.Fatalf("expected StatusCorrupt, got %s", result.Status)
			}
			if !errors.Is(result.Err, ErrCorrupt) {
				t.Fatalf("expected ErrCorrupt, got %v", result.Err)
			}
			if len(items) != 0 || items == nil {
				t.Fatalf("corrupt data must yield an empty collection, got %#v", items)
			}
			if !strings.Contains(buf.String(), `"level":"warn"`) {
				t.Fatalf("corruption must be logged: %q", buf.String())
			}
		})
	}
}

func TestLoadUnavailable(t *testing.T) {
	boom := errors.New("disk on fire")
	items, result := New(failingStore{getErr: boom}).Load(context.Background())

	if result.Status != StatusUnavailable || !errors.Is(result.Err, boom) {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %d items", len(items))
	}
}

func TestSavePropagatesStoreError(t *testing.T) {
	boom := errors.New("quota exceeded")
	err := New(failingStore{putErr: boom}).Save(context.Background(), sampleRestaurants())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestStatusString(t *testing.T) {
	if StatusCorrupt.String() != "corrupt" || Status(42).String() != "status(42)" {
		t.Fatalf("unexpected status strings")
	}
	if New(kv.NewMemory(), WithKey("")).Key() != DefaultKey {
		t.Fatalf("blank key must fall back to the default")
	}
}
