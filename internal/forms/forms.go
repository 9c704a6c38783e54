// Package forms validates user-entered restaurant data and turns it into
// repository input.
package forms

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"restotrack/shared/go/models"
)

// Default coordinates used when none are supplied (Tokyo Station).
const (
	DefaultLat = 35.6812
	DefaultLng = 139.7671
)

// Validation messages shown next to the offending field.
const (
	MsgNameRequired    = "Restaurant name is required"
	MsgAddressRequired = "Address is required"
	MsgGenreRequired   = "Food genre is required"
	MsgInvalidURL      = "Please enter a valid URL (include http:// or https://)"
	MsgRatingRange     = "Rating must be between 1 and 5"
	MsgPriceTierRange  = "Price range must be between 1 and 5"
	MsgPriceTextRange  = "Price range must satisfy 0 <= min <= max"
)

// ErrInvalid is matched by every *ValidationError.
var ErrInvalid = errors.New("invalid restaurant")

// ValidationError maps field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid restaurant: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Restaurant is the create/edit form as submitted by a client.
type Restaurant struct {
	Name           string                 `json:"name"`
	Address        string                 `json:"address"`
	Lat            *float64               `json:"lat"`
	Lng            *float64               `json:"lng"`
	PriceRange     *int                   `json:"priceRange"`
	PriceRangeText *models.PriceRangeText `json:"priceRangeText"`
	Rating         *int                   `json:"rating"`
	FoodGenre      string                 `json:"foodGenre"`
	Notes          string                 `json:"notes"`
	Links          []string               `json:"links"`
}

// FromRestaurant pre-fills a form from a stored restaurant.
func FromRestaurant(r models.Restaurant) Restaurant {
	lat, lng := r.Location.Coordinates.Lat, r.Location.Coordinates.Lng
	c := r.Clone()
	return Restaurant{
		Name:           c.Name,
		Address:        c.Location.Address,
		Lat:            &lat,
		Lng:            &lng,
		PriceRange:     c.PriceRange,
		PriceRangeText: c.PriceRangeText,
		Rating:         c.Rating,
		FoodGenre:      c.FoodGenre,
		Notes:          c.Notes,
		Links:          c.Links,
	}
}

// Validate returns a *ValidationError describing every problem, or nil.
func (f Restaurant) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(f.Name) == "" {
		fields["name"] = MsgNameRequired
	}
	if strings.TrimSpace(f.Address) == "" {
		fields["address"] = MsgAddressRequired
	}
	if strings.TrimSpace(f.FoodGenre) == "" {
		fields["foodGenre"] = MsgGenreRequired
	}
	if f.Rating != nil && (*f.Rating < 1 || *f.Rating > 5) {
		fields["rating"] = MsgRatingRange
	}
	if f.PriceRangeText != nil {
		if f.PriceRangeText.Min < 0 || f.PriceRangeText.Max < f.PriceRangeText.Min {
			fields["priceRangeText"] = MsgPriceTextRange
		}
	} else if f.PriceRange != nil && (*f.PriceRange < 1 || *f.PriceRange > 5) {
		fields["priceRange"] = MsgPriceTierRange
	}
	for i, link := range f.Links {
		if strings.TrimSpace(link) == "" {
			continue
		}
		if err := ValidateLink(link); err != nil {
			fields[fmt.Sprintf("links[%d]", i)] = MsgInvalidURL
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Input converts a validated form into repository input. A price range given
// as min/max overrides any explicit tier.
func (f Restaurant) Input() models.RestaurantInput {
	in := models.RestaurantInput{
		Name:      strings.TrimSpace(f.Name),
		Address:   strings.TrimSpace(f.Address),
		Lat:       DefaultLat,
		Lng:       DefaultLng,
		Rating:    f.Rating,
		FoodGenre: strings.TrimSpace(f.FoodGenre),
		Notes:     f.Notes,
		Links:     make([]string, 0, len(f.Links)),
	}
	if f.Lat != nil || f.Lng != nil {
		in.Lat, in.Lng = 0, 0
		if f.Lat != nil {
			in.Lat = *f.Lat
		}
		if f.Lng != nil {
			in.Lng = *f.Lng
		}
	}

	if f.PriceRangeText != nil {
		prt := *f.PriceRangeText
		tier := PriceTier(prt.Min, prt.Max)
		in.PriceRangeText = &prt
		in.PriceRange = &tier
	} else {
		in.PriceRange = f.PriceRange
	}

	for _, link := range f.Links {
		if trimmed := strings.TrimSpace(link); trimmed != "" {
			in.Links = append(in.Links, trimmed)
		}
	}
	return in
}

// ValidateLink accepts absolute URLs with a scheme and a host.
func ValidateLink(link string) error {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return err
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not an absolute URL", link)
	}
	return nil
}

// PriceTier maps a yen min/max range onto the 1-5 tier using its mean.
func PriceTier(lo, hi float64) int {
	avg := (lo + hi) / 2
	switch {
	case avg <= 1000:
		return 1
	case avg <= 3000:
		return 2
	case avg <= 5000:
		return 3
	case avg <= 10000:
		return 4
	default:
		return 5
	}
}

// ToggleRating returns the rating after a star click: clicking the current
// rating clears it.
func ToggleRating(current *int, clicked int) *int {
	if current != nil && *current == clicked {
		return nil
	}
	return &clicked
}
