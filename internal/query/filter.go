// Package query derives the visible subset of a restaurant collection.
package query

import (
	"sort"
	"strings"

	"restotrack/shared/go/models"
)

// Apply returns the restaurants matching every set field of f, in input order.
// f.Where is not consulted; use Run for expression filters.
func Apply(items []models.Restaurant, f models.Filter) []models.Restaurant {
	out := make([]models.Restaurant, 0, len(items))
	for _, item := range items {
		if Matches(item, f) {
			out = append(out, item)
		}
	}
	return out
}

// Matches reports whether r passes the field predicates of f.
func Matches(r models.Restaurant, f models.Filter) bool {
	return matchesText(r, f.SearchTerm) &&
		matchesGenre(r, f.Genre) &&
		matchesMinRating(r, f.MinRating) &&
		matchesPriceTier(r, f.PriceTier)
}

func matchesText(r models.Restaurant, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, field := range []string{r.Name, r.Location.Address, r.Notes} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Genre comparison is exact and case-sensitive.
func matchesGenre(r models.Restaurant, genre string) bool {
	return genre == "" || r.FoodGenre == genre
}

func matchesMinRating(r models.Restaurant, min int) bool {
	if min == 0 {
		return true
	}
	return r.Rating != nil && *r.Rating >= min
}

func matchesPriceTier(r models.Restaurant, tier int) bool {
	if tier == 0 {
		return true
	}
	return r.PriceRange != nil && *r.PriceRange == tier
}

// Genres returns the distinct non-empty genres in items, sorted ascending.
func Genres(items []models.Restaurant) []string {
	seen := make(map[string]struct{}, len(items))
	genres := make([]string, 0, len(items))
	for _, item := range items {
		if item.FoodGenre == "" {
			continue
		}
		if _, ok := seen[item.FoodGenre]; ok {
			continue
		}
		seen[item.FoodGenre] = struct{}{}
		genres = append(genres, item.FoodGenre)
	}
	sort.Strings(genres)
	return genres
}
