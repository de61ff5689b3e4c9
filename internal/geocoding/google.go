package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"googlemaps.github.io/maps"

	"github.com/openwander/wayfind/internal/models"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
	ReverseGeocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// ErrEmptyResponse is returned when the Google Maps API responds with an empty result.
var ErrEmptyResponse = errors.New("get empty response from Google Maps API")

// NewGoogleProvider initializes a new GoogleProvider with the given API client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// ReverseGeocode returns the formatted address for the given coordinate using
// the Google Maps Geocoding API. If the response is empty, it returns an
// appropriate error.
func (gp *GoogleProvider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	gp.log.DebugContext(ctx, "Reverse geocoding using Google Maps",
		"lat", coord.Latitude, "lon", coord.Longitude)

	req := maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: coord.Latitude, Lng: coord.Longitude},
	}
	geocodeResponse, err := gp.client.ReverseGeocode(ctx, &req)
	if err != nil {
		return "", fmt.Errorf("failed to reverse geocode coordinate: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return "", ErrEmptyResponse
	}

	return geocodeResponse[0].FormattedAddress, nil
}

// Search finds places matching the query using the Google Maps Geocoding API.
// When bounds is non-nil the results are biased towards that bounding box.
func (gp *GoogleProvider) Search(
	ctx context.Context,
	query string,
	bounds *models.BoundingBox,
) ([]Place, error) {
	gp.log.DebugContext(ctx, "Searching places using Google Maps", "query", query)

	req := maps.GeocodingRequest{Address: query}
	if bounds != nil {
		req.Bounds = &maps.LatLngBounds{
			NorthEast: maps.LatLng{Lat: bounds.MaxLat, Lng: bounds.MaxLon},
			SouthWest: maps.LatLng{Lat: bounds.MinLat, Lng: bounds.MinLon},
		}
	}

	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode query: %w", err)
	}

	if len(geocodeResponse) == 0 {
		return nil, ErrEmptyResponse
	}

	places := make([]Place, 0, len(geocodeResponse))
	for _, result := range geocodeResponse {
		location := result.Geometry.Location
		places = append(places, Place{
			Name:    result.FormattedAddress,
			Address: result.FormattedAddress,
			Coordinate: models.Coordinate{
				Longitude: location.Lng,
				Latitude:  location.Lat,
			},
		})
	}

	return places, nil
}
