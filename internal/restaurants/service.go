package restaurants

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"restotrack/internal/forms"
	"restotrack/shared/go/logging"
	"restotrack/shared/go/models"
)

// ErrNotFound is returned by Service when an id does not resolve.
var ErrNotFound = errors.New("restaurant not found")

// Service validates forms and coordinates repository calls for the HTTP layer.
type Service struct {
	repo   *Repository
	logger zerolog.Logger
}

// NewService wires a Service to repo.
func NewService(repo *Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns the restaurants matching filter plus the unfiltered total.
func (s *Service) List(ctx context.Context, filter models.Filter) ([]models.Restaurant, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	items, err := s.repo.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, s.repo.Len(), nil
}

// Genres returns the distinct genres for filter choices.
func (s *Service) Genres(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.repo.Genres(ctx), nil
}

// Get returns the restaurant with id or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (models.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return models.Restaurant{}, err
	}
	restaurant, ok := s.repo.GetByID(ctx, id)
	if !ok {
		return models.Restaurant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return restaurant, nil
}

// Create validates form and stores a new restaurant.
func (s *Service) Create(ctx context.Context, form forms.Restaurant) (models.Restaurant, error) {
	if err := form.Validate(); err != nil {
		return models.Restaurant{}, err
	}

	created, err := s.repo.Create(ctx, form.Input())
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("create restaurant: %w", err)
	}

	logger := logging.FromContext(ctx, s.logger)
	logger.Info().
		Str("restaurant_id", created.ID).
		Str("name", created.Name).
		Msg("restaurant added")
	return created, nil
}

// Update validates form and replaces the restaurant with id.
func (s *Service) Update(ctx context.Context, id string, form forms.Restaurant) (models.Restaurant, error) {
	if err := form.Validate(); err != nil {
		return models.Restaurant{}, err
	}

	updated, ok, err := s.repo.Update(ctx, id, form.Input())
	if err != nil {
		return models.Restaurant{}, fmt.Errorf("update restaurant %s: %w", id, err)
	}
	if !ok {
		return models.Restaurant{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	logger := logging.FromContext(ctx, s.logger)
	logger.Info().
		Str("restaurant_id", id).
		Msg("restaurant updated")
	return updated, nil
}

// Delete removes the restaurant with id. Deleting an unknown id succeeds.
func (s *Service) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete restaurant %s: %w", id, err)
	}

	logger := logging.FromContext(ctx, s.logger)
	logger.Info().
		Str("restaurant_id", id).
		Bool("removed", removed).
		Msg("restaurant delete requested")
	return nil
}
