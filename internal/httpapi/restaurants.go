package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"restotrack/internal/forms"
	"restotrack/internal/query"
	"restotrack/internal/restaurants"
	"restotrack/shared/go/logging"
	"restotrack/shared/go/models"
)

const msgRestaurantNotFound = "restaurant not found"

type restaurantListResponse struct {
	Restaurants []models.Restaurant `json:"restaurants"`
	Total       int                 `json:"total"`
}

// restaurantDetail adds display helpers to a restaurant.
type restaurantDetail struct {
	models.Restaurant
	MapsURL    string `json:"mapsUrl"`
	PriceLabel string `json:"priceLabel,omitempty"`
}

func newRestaurantDetail(r models.Restaurant) restaurantDetail {
	return restaurantDetail{
		Restaurant: r,
		MapsURL:    forms.MapsURL(r.Location.Address),
		PriceLabel: forms.PriceLabel(r.PriceRangeText),
	}
}

func (s *Server) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	items, total, err := s.restaurants.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, restaurantListResponse{Restaurants: items, Total: total})
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := s.restaurants.Genres(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Genres []string `json:"genres"`
	}{Genres: genres})
}

func (s *Server) handleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurant, err := s.restaurants.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRestaurantDetail(restaurant))
}

func (s *Server) handleCreateRestaurant(w http.ResponseWriter, r *http.Request) {
	var form forms.Restaurant
	if !decodeJSON(w, r, &form) {
		return
	}

	created, err := s.restaurants.Create(r.Context(), form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRestaurantDetail(created))
}

func (s *Server) handleUpdateRestaurant(w http.ResponseWriter, r *http.Request) {
	var form forms.Restaurant
	if !decodeJSON(w, r, &form) {
		return
	}

	updated, err := s.restaurants.Update(r.Context(), mux.Vars(r)["id"], form)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newRestaurantDetail(updated))
}

func (s *Server) handleDeleteRestaurant(w http.ResponseWriter, r *http.Request) {
	if err := s.restaurants.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePriceTier(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lo, errLo := strconv.ParseFloat(q.Get("min"), 64)
	hi, errHi := strconv.ParseFloat(q.Get("max"), 64)
	if errLo != nil || errHi != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "min and max must be numbers"})
		return
	}

	prt := &models.PriceRangeText{Min: lo, Max: hi}
	writeJSON(w, http.StatusOK, struct {
		PriceRange int    `json:"priceRange"`
		Label      string `json:"label"`
	}{PriceRange: forms.PriceTier(lo, hi), Label: forms.PriceLabel(prt)})
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *forms.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, restaurants.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgRestaurantNotFound})
	case errors.Is(err, query.ErrInvalidExpression):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logger := logging.FromContext(r.Context(), s.logger)
		logger.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("restaurant request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func parseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	filter := models.Filter{
		SearchTerm: q.Get("q"),
		Genre:      q.Get("genre"),
		Where:      strings.TrimSpace(q.Get("where")),
	}

	var err error
	if filter.MinRating, err = parseLevel(q.Get("minRating"), "minRating"); err != nil {
		return models.Filter{}, err
	}
	if filter.PriceTier, err = parseLevel(q.Get("price"), "price"); err != nil {
		return models.Filter{}, err
	}
	return filter, nil
}

// parseLevel reads a 0-5 query value; empty and 0 both mean "any".
func parseLevel(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > 5 {
		return 0, errors.New(name + " must be an integer between 0 and 5")
	}
	return v, nil
}
