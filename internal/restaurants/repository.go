// Package restaurants owns the in-memory restaurant collection and keeps it
// written through to persistent storage.
package restaurants

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"restotrack/internal/persistence"
	"restotrack/internal/query"
	"restotrack/shared/go/models"
)

// Persister loads and saves the whole collection. *persistence.Adapter
// implements it.
type Persister interface {
	Load(ctx context.Context) ([]models.Restaurant, persistence.LoadResult)
	Save(ctx context.Context, items []models.Restaurant) error
}

var _ Persister = (*persistence.Adapter)(nil)

// ErrStoreUnavailable is returned by NewRepository when the backend could not
// be read. Starting empty would let the next save overwrite the stored data.
var ErrStoreUnavailable = errors.New("restaurant store unavailable")

// Repository holds the ordered collection. Every mutation saves the full
// collection before returning; a failed save leaves memory unchanged.
type Repository struct {
	mu     sync.RWMutex
	items  []models.Restaurant
	store  Persister
	loaded persistence.LoadResult

	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

// Option customises a Repository.
type Option func(*Repository)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the uuid generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *Repository) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// WithLogger sets the repository logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository loads the stored collection once and returns a repository over it.
// Corrupt data yields an empty repository; an unreadable backend is an error.
func NewRepository(ctx context.Context, store Persister, opts ...Option) (*Repository, error) {
	r := &Repository{
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	items, result := store.Load(ctx)
	if result.Status == persistence.StatusUnavailable {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, result.Err)
	}
	r.items = items
	r.loaded = result

	r.logger.Info().
		Str("status", result.Status.String()).
		Int("count", len(items)).
		Msg("restaurants loaded")

	return r, nil
}

// LoadResult reports how the initial load went.
func (r *Repository) LoadResult() persistence.LoadResult {
	return r.loaded
}

// GetAll returns a copy of every restaurant in insertion order.
func (r *Repository) GetAll(_ context.Context) []models.Restaurant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return cloneAll(r.items)
}

// GetByID returns the restaurant with id. Absence is reported by ok == false.
func (r *Repository) GetByID(_ context.Context, id string) (models.Restaurant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		return r.items[i].Clone(), true
	}
	return models.Restaurant{}, false
}

// Len returns the collection size.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// Create appends a new restaurant with a fresh id and persists the collection.
func (r *Repository) Create(ctx context.Context, in models.RestaurantInput) (models.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return models.Restaurant{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	created := models.Restaurant{
		ID:        r.newID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	created.Apply(in)

	next := make([]models.Restaurant, len(r.items), len(r.items)+1)
	copy(next, r.items)
	next = append(next, created)

	if err := r.store.Save(ctx, next); err != nil {
		return models.Restaurant{}, err
	}
	r.items = next

	r.logger.Debug().Str("restaurant_id", created.ID).Msg("restaurant created")
	return created.Clone(), nil
}

// Update replaces every editable field of the restaurant with id, keeping its
// position, id and CreatedAt. An unknown id is a no-op without a write and
// reports ok == false.
func (r *Repository) Update(ctx context.Context, id string, in models.RestaurantInput) (models.Restaurant, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.Restaurant{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Restaurant{}, false, nil
	}

	updated := r.items[i].Clone()
	updated.Apply(in)
	now := r.now().UTC()
	if now.Before(updated.UpdatedAt) {
		now = updated.UpdatedAt
	}
	updated.UpdatedAt = now

	next := make([]models.Restaurant, len(r.items))
	copy(next, r.items)
	next[i] = updated

	if err := r.store.Save(ctx, next); err != nil {
		return models.Restaurant{}, true, err
	}
	r.items = next

	r.logger.Debug().Str("restaurant_id", id).Msg("restaurant updated")
	return updated.Clone(), true, nil
}

// Delete removes the restaurant with id and persists the collection. An
// unknown id is a no-op without a write and reports ok == false.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}

	next := make([]models.Restaurant, 0, len(r.items)-1)
	next = append(next, r.items[:i]...)
	next = append(next, r.items[i+1:]...)

	if err := r.store.Save(ctx, next); err != nil {
		return true, err
	}
	r.items = next

	r.logger.Debug().Str("restaurant_id", id).Msg("restaurant deleted")
	return true, nil
}

// Query returns the restaurants matching f in insertion order.
func (r *Repository) Query(_ context.Context, f models.Filter) ([]models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched, err := query.Run(r.items, f)
	if err != nil {
		return nil, err
	}
	return cloneAll(matched), nil
}

// Genres returns the distinct genres currently stored, sorted.
func (r *Repository) Genres(_ context.Context) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return query.Genres(r.items)
}

func (r *Repository) indexOf(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneAll(items []models.Restaurant) []models.Restaurant {
	out := make([]models.Restaurant, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}
