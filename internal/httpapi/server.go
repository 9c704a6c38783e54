package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"restotrack/internal/forms"
	"restotrack/shared/go/models"
)

// RestaurantService captures the restaurant operations needed by the HTTP handlers.
type RestaurantService interface {
	List(ctx context.Context, filter models.Filter) ([]models.Restaurant, int, error)
	Genres(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (models.Restaurant, error)
	Create(ctx context.Context, form forms.Restaurant) (models.Restaurant, error)
	Update(ctx context.Context, id string, form forms.Restaurant) (models.Restaurant, error)
	Delete(ctx context.Context, id string) error
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	restaurants RestaurantService
	logger      zerolog.Logger
}

// New configures a Server.
func New(restaurants RestaurantService, logger zerolog.Logger) *Server {
	return &Server{restaurants: restaurants, logger: logger}
}

// Routes exposes the health check and the v1 API.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	s.Register(api)

	// Subrouters do not fall back to the parent's handlers.
	for _, rt := range []*mux.Router{router, api} {
		rt.NotFoundHandler = http.HandlerFunc(handleNotFound)
		rt.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)
	}

	return router
}

// Register mounts the restaurant routes on router.
func (s *Server) Register(router *mux.Router) {
	router.HandleFunc("/restaurants", s.handleListRestaurants).Methods(http.MethodGet)
	router.HandleFunc("/restaurants", s.handleCreateRestaurant).Methods(http.MethodPost)
	router.HandleFunc("/restaurants/genres", s.handleGenres).Methods(http.MethodGet)
	router.HandleFunc("/restaurants/{id}", s.handleGetRestaurant).Methods(http.MethodGet)
	router.HandleFunc("/restaurants/{id}", s.handleUpdateRestaurant).Methods(http.MethodPut)
	router.HandleFunc("/restaurants/{id}", s.handleDeleteRestaurant).Methods(http.MethodDelete)
	router.HandleFunc("/price-tier", s.handlePriceTier).Methods(http.MethodGet)
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func handleMethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
