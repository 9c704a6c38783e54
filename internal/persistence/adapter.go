// Package persistence loads and saves the whole restaurant collection as one
// JSON document under a fixed key of a kv.Store.
package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"restotrack/internal/kv"
	"restotrack/shared/go/models"
)

// DefaultKey is the storage key holding the collection.
const DefaultKey = "restaurants"

// ErrCorrupt marks a stored document that could not be turned into restaurants.
var ErrCorrupt = errors.New("persistence: stored collection is corrupt")

// Status describes how a Load went.
type Status int

const (
	// StatusLoaded means the stored document was decoded.
	StatusLoaded Status = iota
	// StatusEmpty means nothing was stored yet.
	StatusEmpty
	// StatusCorrupt means a document was stored but could not be decoded.
	StatusCorrupt
	// StatusUnavailable means the backend could not be read.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusEmpty:
		return "empty"
	case StatusCorrupt:
		return "corrupt"
	case StatusUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// LoadResult reports the outcome of Load. Err is set for corrupt and
// unavailable outcomes.
type LoadResult struct {
	Status Status
	Count  int
	Err    error
}

// Adapter binds a kv.Store to the collection key.
type Adapter struct {
	store  kv.Store
	key    string
	logger zerolog.Logger
}

// Option customises an Adapter.
type Option func(*Adapter)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(a *Adapter) {
		if key != "" {
			a.key = key
		}
	}
}

// WithLogger sets the logger used to report load problems.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New returns an Adapter over store.
func New(store kv.Store, opts ...Option) *Adapter {
	a := &Adapter{store: store, key: DefaultKey, logger: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Key returns the storage key in use.
func (a *Adapter) Key() string { return a.key }

// Load returns the stored collection in stored order. It never fails: any
// problem yields an empty collection and is described by the LoadResult.
// Callers decide whether StatusUnavailable is fatal.
func (a *Adapter) Load(ctx context.Context) ([]models.Restaurant, LoadResult) {
	raw, err := a.store.Get(ctx, a.key)
	if errors.Is(err, kv.ErrNotFound) {
		return []models.Restaurant{}, LoadResult{Status: StatusEmpty}
	}
	if err != nil {
		a.logger.Error().Err(err).Str("key", a.key).Msg("restaurant store unavailable")
		return []models.Restaurant{}, LoadResult{Status: StatusUnavailable, Err: err}
	}

	items, err := decode(raw)
	if err != nil {
		a.logger.Warn().Err(err).Str("key", a.key).Int("bytes", len(raw)).Msg("stored restaurants are corrupt, starting empty")
		return []models.Restaurant{}, LoadResult{Status: StatusCorrupt, Err: err}
	}

	return items, LoadResult{Status: StatusLoaded, Count: len(items)}
}

// Save overwrites the stored document with items, preserving their order.
func (a *Adapter) Save(ctx context.Context, items []models.Restaurant) error {
	raw, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode restaurants: %w", err)
	}
	if err := a.store.Put(ctx, a.key, raw); err != nil {
		return fmt.Errorf("save restaurants: %w", err)
	}
	return nil
}

func encode(items []models.Restaurant) ([]byte, error) {
	out := make([]models.Restaurant, len(items))
	for i, item := range items {
		out[i] = item.Clone()
		out[i].CreatedAt = item.CreatedAt.UTC()
		out[i].UpdatedAt = item.UpdatedAt.UTC()
	}
	return json.Marshal(out)
}

func decode(raw []byte) ([]models.Restaurant, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top-level value is not an array", ErrCorrupt)
	}

	var items []models.Restaurant
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for i := range items {
		if items[i].ID == "" {
			return nil, fmt.Errorf("%w: record %d has no id", ErrCorrupt, i)
		}
		if items[i].CreatedAt.IsZero() || items[i].UpdatedAt.IsZero() {
			return nil, fmt.Errorf("%w: record %q has no timestamps", ErrCorrupt, items[i].ID)
		}
		if items[i].Links == nil {
			items[i].Links = []string{}
		}
	}
	if items == nil {
		items = []models.Restaurant{}
	}
	return items, nil
}
