// Package server exposes the planning, routing and geocoding operations over
// a JSON HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/openwander/wayfind/internal/geocoding"
	"github.com/openwander/wayfind/internal/models"
	"github.com/openwander/wayfind/internal/repository"
)

// Router is the routing backend surface used by the API handlers.
type Router interface {
	CalculateRoute(
		ctx context.Context,
		waypoints []models.Coordinate,
		profile models.Profile,
		city string,
	) (*models.Route, error)
	FindNearest(ctx context.Context, coord models.Coordinate, profile models.Profile, city string) *models.Coordinate
}

// Geocoder resolves coordinates and free-text queries for display purposes.
type Geocoder interface {
	DisplayAddress(ctx context.Context, coord models.Coordinate) string
	FindPlaces(ctx context.Context, query string, bounds *models.BoundingBox) []geocoding.Place
}

// Place mirrors geocoding.Place at the API boundary.
type Place struct {
	Name       string            `json:"name"`
	Address    string            `json:"address"`
	Coordinate models.Coordinate `json:"coordinate"`
	Importance float64           `json:"importance,omitempty"`
}

// Defaults are applied to requests that omit a city or profile.
type Defaults struct {
	City    string
	Profile models.Profile
}

// Server wires the API handlers to their dependencies. The repository is
// optional; saved-route endpoints report 503 when it is absent.
type Server struct {
	router   Router
	geocoder Geocoder
	repo     repository.Interface
	defaults Defaults
	log      *slog.Logger
	mux      *http.ServeMux
}

// NewServer creates the API server and registers its routes.
func NewServer(router Router, geocoder Geocoder, repo repository.Interface, defaults Defaults, log *slog.Logger) *Server {
	if defaults.Profile == "" {
		defaults.Profile = models.DefaultProfile
	}
	s := &Server{
		router:   router,
		geocoder: geocoder,
		repo:     repo,
		defaults: defaults,
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /api/route", s.handleCalculateRoute)
	s.mux.HandleFunc("GET /api/nearest", s.handleNearest)
	s.mux.HandleFunc("GET /api/geocode/reverse", s.handleReverseGeocode)
	s.mux.HandleFunc("GET /api/places", s.handlePlaces)

	s.mux.HandleFunc("POST /api/routes", s.handleSaveRoute)
	s.mux.HandleFunc("GET /api/routes", s.handleListRoutes)
	s.mux.HandleFunc("GET /api/routes/{id}", s.handleGetRoute)
	s.mux.HandleFunc("DELETE /api/routes/{id}", s.handleDeleteRoute)
	s.mux.HandleFunc("GET /api/routes/{id}/export", s.handleExportRoute)

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
