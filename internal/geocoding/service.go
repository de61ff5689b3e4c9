package geocoding

import (
	"context"
	"log/slog"

	"github.com/openwander/wayfind/internal/metrics"
	"github.com/openwander/wayfind/internal/models"
)

// Service wraps a Provider with degradation behavior suitable for display
// surfaces. Lookups that fail never surface an error to the caller; the
// coordinate itself is shown instead.
type Service struct {
	provider Provider
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// NewService creates a geocoding service around the given provider.
func NewService(provider Provider, appMetrics *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{provider: provider, metrics: appMetrics, log: log}
}

// DisplayAddress resolves a coordinate to a human-readable address. When the
// provider fails or returns nothing, the coordinate formatted as "lon,lat"
// is returned so the caller always has something to show.
func (s *Service) DisplayAddress(ctx context.Context, coord models.Coordinate) string {
	address, err := s.provider.ReverseGeocode(ctx, coord)
	if err != nil {
		s.log.WarnContext(ctx, "Reverse geocoding failed, falling back to raw coordinate",
			"lat", coord.Latitude, "lon", coord.Longitude, "error", err)
		s.metrics.GeocodeFallbacks.Inc()
		return coord.String()
	}
	return address
}

// FindPlaces searches for places matching the query. Failures are logged and
// reported as an empty result set.
func (s *Service) FindPlaces(ctx context.Context, query string, bounds *models.BoundingBox) []Place {
	places, err := s.provider.Search(ctx, query, bounds)
	if err != nil {
		s.log.WarnContext(ctx, "Place search failed", "query", query, "error", err)
		return nil
	}
	return places
}
