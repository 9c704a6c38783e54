package main

import (
	"context"
	"fmt"

	"restotrack/internal/forms"
	"restotrack/internal/restaurants"
	"restotrack/shared/go/models"
)

// bootstrapDemoData fills an empty collection with a few sample restaurants.
func bootstrapDemoData(ctx context.Context, repo *restaurants.Repository) error {
	if repo.Len() > 0 {
		return nil
	}

	for _, form := range demoRestaurants() {
		if err := form.Validate(); err != nil {
			return fmt.Errorf("demo restaurant %q: %w", form.Name, err)
		}
		if _, err := repo.Create(ctx, form.Input()); err != nil {
			return fmt.Errorf("bootstrap demo restaurant %q: %w", form.Name, err)
		}
	}
	return nil
}

func demoRestaurants() []forms.Restaurant {
	intPtr := func(v int) *int { return &v }
	floatPtr := func(v float64) *float64 { return &v }

	return []forms.Restaurant{
		{
			Name:           "Sushi Kanesaka",
			Address:        "8-10-3 Ginza, Chuo City, Tokyo",
			Lat:            floatPtr(35.6695),
			Lng:            floatPtr(139.7610),
			PriceRangeText: &models.PriceRangeText{Min: 20000, Max: 35000},
			Rating:         intPtr(5),
			FoodGenre:      "Sushi",
			Notes:          "Counter seats only, reserve a month ahead.",
			Links:          []string{"https://tabelog.com/"},
		},
		{
			Name:           "Ichiran Shibuya",
			Address:        "1-22-7 Jinnan, Shibuya City, Tokyo",
			Lat:            floatPtr(35.6617),
			Lng:            floatPtr(139.6995),
			PriceRangeText: &models.PriceRangeText{Min: 980, Max: 1500},
			Rating:         intPtr(4),
			FoodGenre:      "Ramen",
			Notes:          "Open 24 hours.",
		},
		{
			Name:       "Trattoria Tokyo",
			Address:    "2-1 Marunouchi, Chiyoda City, Tokyo",
			PriceRange: intPtr(3),
			FoodGenre:  "Italian",
		},
	}
}
