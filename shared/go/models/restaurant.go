package models

import "time"

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Location holds a free-text address and its coordinates.
type Location struct {
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}

// PriceRangeText is the raw per-person spend range in yen.
type PriceRangeText struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Restaurant is a single tracked place.
type Restaurant struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Location       Location        `json:"location"`
	PriceRange     *int            `json:"priceRange"`     // 1-5, nil when unknown
	PriceRangeText *PriceRangeText `json:"priceRangeText"` // nil when unknown
	Rating         *int            `json:"rating"`         // 1-5, nil when unrated
	FoodGenre      string          `json:"foodGenre"`
	Notes          string          `json:"notes"`
	Links          []string        `json:"links"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// RestaurantInput carries the caller-supplied fields for create and update.
type RestaurantInput struct {
	Name           string
	Address        string
	Lat            float64
	Lng            float64
	PriceRange     *int
	PriceRangeText *PriceRangeText
	Rating         *int
	FoodGenre      string
	Notes          string
	Links          []string
}

// Filter narrows a restaurant listing. Zero values leave a predicate unset.
type Filter struct {
	SearchTerm string
	Genre      string
	MinRating  int
	PriceTier  int
	Where      string // optional expression over restaurant fields
}

// IsZero reports whether no predicate is set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Clone returns a deep copy. Links is never nil on the copy.
func (r Restaurant) Clone() Restaurant {
	out := r
	out.PriceRange = cloneInt(r.PriceRange)
	out.Rating = cloneInt(r.Rating)
	if r.PriceRangeText != nil {
		prt := *r.PriceRangeText
		out.PriceRangeText = &prt
	}
	out.Links = append(make([]string, 0, len(r.Links)), r.Links...)
	return out
}

// Apply overwrites every user-editable field with the values from in.
func (r *Restaurant) Apply(in RestaurantInput) {
	r.Name = in.Name
	r.Location = Location{
		Address:     in.Address,
		Coordinates: Coordinates{Lat: in.Lat, Lng: in.Lng},
	}
	r.PriceRange = cloneInt(in.PriceRange)
	r.PriceRangeText = nil
	if in.PriceRangeText != nil {
		prt := *in.PriceRangeText
		r.PriceRangeText = &prt
	}
	r.Rating = cloneInt(in.Rating)
	r.FoodGenre = in.FoodGenre
	r.Notes = in.Notes
	r.Links = append(make([]string, 0, len(in.Links)), in.Links...)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
