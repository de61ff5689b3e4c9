package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/openwander/wayfind/internal/export"
	"github.com/openwander/wayfind/internal/geocoding"
	"github.com/openwander/wayfind/internal/models"
	"github.com/openwander/wayfind/internal/repository"
	"github.com/openwander/wayfind/internal/routing"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeRoutingError maps a routing failure onto an HTTP status while keeping
// the localized message and machine-readable code.
func writeRoutingError(w http.ResponseWriter, err error) {
	var routingErr *routing.Error
	if !errors.As(err, &routingErr) {
		writeError(w, http.StatusInternalServerError, "route calculation failed")
		return
	}

	status := http.StatusInternalServerError
	switch routingErr.Code {
	case routing.CodeInsufficientWaypoints, routing.CodeInvalidQuery, routing.CodeInvalidValue:
		status = http.StatusBadRequest
	case routing.CodeNoRoute, routing.CodeNoSegment:
		status = http.StatusNotFound
	case routing.CodeTooBig:
		status = http.StatusRequestEntityTooLarge
	case routing.CodeServerUnavailable:
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: routingErr.Message, Code: string(routingErr.Code)})
}

func parseCoordinate(r *http.Request) (models.Coordinate, error) {
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid longitude: %w", err)
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid latitude: %w", err)
	}
	return models.Coordinate{Longitude: lon, Latitude: lat}, nil
}

type routeRequest struct {
	Waypoints [][2]float64 `json:"waypoints"` // lon,lat pairs
	Profile   string       `json:"profile"`
	City      string       `json:"city"`
}

func (s *Server) handleCalculateRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile := models.Profile(req.Profile)
	if req.Profile == "" {
		profile = s.defaults.Profile
	}
	if !profile.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown travel profile: "+req.Profile)
		return
	}

	city := req.City
	if city == "" {
		city = s.defaults.City
	}

	waypoints := make([]models.Coordinate, 0, len(req.Waypoints))
	for _, pair := range req.Waypoints {
		waypoints = append(waypoints, models.Coordinate{Longitude: pair[0], Latitude: pair[1]})
	}

	route, err := s.router.CalculateRoute(r.Context(), waypoints, profile, city)
	if err != nil {
		s.log.WarnContext(r.Context(), "Route calculation failed", "error", err)
		writeRoutingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, route)
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile := models.Profile(r.URL.Query().Get("profile"))
	if profile == "" {
		profile = s.defaults.Profile
	}
	if !profile.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown travel profile")
		return
	}

	city := r.URL.Query().Get("city")
	if city == "" {
		city = s.defaults.City
	}

	snapped := s.router.FindNearest(r.Context(), coord, profile, city)
	if snapped == nil {
		writeError(w, http.StatusNotFound, "no routable point near the given coordinate")
		return
	}

	writeJSON(w, http.StatusOK, snapped)
}

func (s *Server) handleReverseGeocode(w http.ResponseWriter, r *http.Request) {
	coord, err := parseCoordinate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	address := s.geocoder.DisplayAddress(r.Context(), coord)
	writeJSON(w, http.StatusOK, map[string]string{"address": address})
}

func (s *Server) handlePlaces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	var bounds *models.BoundingBox
	if viewbox := r.URL.Query().Get("viewbox"); viewbox != "" {
		parsed, err := parseViewbox(viewbox)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		bounds = parsed
	}

	results := s.geocoder.FindPlaces(r.Context(), query, bounds)
	writeJSON(w, http.StatusOK, placesFromGeocoding(results))
}

// parseViewbox parses "minLon,minLat,maxLon,maxLat".
func parseViewbox(raw string) (*models.BoundingBox, error) {
	parts := strings.Split(raw, ",")
	const viewboxParts = 4
	if len(parts) != viewboxParts {
		return nil, errors.New("viewbox must be minLon,minLat,maxLon,maxLat")
	}

	values := make([]float64, viewboxParts)
	for idx, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid viewbox value: %w", err)
		}
		values[idx] = value
	}

	return &models.BoundingBox{
		MinLon: values[0], MinLat: values[1],
		MaxLon: values[2], MaxLat: values[3],
	}, nil
}

func (s *Server) handleSaveRoute(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "route persistence is not configured")
		return
	}

	var saved models.SavedRoute
	if err := json.NewDecoder(r.Body).Decode(&saved); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if saved.Name == "" {
		writeError(w, http.StatusBadRequest, "route name is required")
		return
	}

	if err := s.repo.SaveRoute(r.Context(), &saved); err != nil {
		s.log.ErrorContext(r.Context(), "Failed to save route", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save route")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "route persistence is not configured")
		return
	}

	routes, err := s.repo.ListRoutes(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "Failed to list routes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list routes")
		return
	}
	if routes == nil {
		routes = []models.SavedRoute{}
	}

	writeJSON(w, http.StatusOK, routes)
}

func (s *Server) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "route persistence is not configured")
		return
	}

	saved, err := s.repo.GetRoute(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		s.log.ErrorContext(r.Context(), "Failed to get route", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get route")
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "route persistence is not configured")
		return
	}

	if err := s.repo.DeleteRoute(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		s.log.ErrorContext(r.Context(), "Failed to delete route", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete route")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportRoute(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "route persistence is not configured")
		return
	}

	saved, err := s.repo.GetRoute(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrRouteNotFound) {
			writeError(w, http.StatusNotFound, "route not found")
			return
		}
		s.log.ErrorContext(r.Context(), "Failed to get route", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get route")
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "geojson":
		data, exportErr := export.GeoJSON(saved)
		if exportErr != nil {
			writeError(w, http.StatusInternalServerError, "failed to export route")
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write(data)
	case "gpx":
		data, exportErr := export.GPX(saved)
		if exportErr != nil {
			writeError(w, http.StatusInternalServerError, "failed to export route")
			return
		}
		w.Header().Set("Content-Type", "application/gpx+xml")
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "unknown export format: "+format)
	}
}

// placesFromGeocoding converts geocoding results to the API representation.
func placesFromGeocoding(results []geocoding.Place) []Place {
	places := make([]Place, 0, len(results))
	for _, result := range results {
		places = append(places, Place{
			Name:       result.Name,
			Address:    result.Address,
			Coordinate: result.Coordinate,
			Importance: result.Importance,
		})
	}
	return places
}
