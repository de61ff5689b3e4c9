package geocoding

import (
	"context"
	"net/http"

	"github.com/openwander/wayfind/internal/models"
)

// Place is a single result returned by a forward search.
type Place struct {
	Name       string
	Address    string
	Coordinate models.Coordinate
	Importance float64
}

// Provider resolves coordinates to human-readable addresses and
// free-text queries to places.
type Provider interface {
	// ReverseGeocode returns a display address for the given coordinate.
	ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error)

	// Search finds places matching the query, optionally constrained
	// to a bounding box.
	Search(ctx context.Context, query string, bounds *models.BoundingBox) ([]Place, error)
}

// HTTPClient abstracts the transport so tests can substitute their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
