package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/openwander/wayfind/internal/models"
)

// NominatimProvider implements the Provider interface using OpenStreetMap's
// Nominatim API. This is a free geocoding service with usage limits
// (1 request/second for fair use), enforced here with a client-side limiter.
type NominatimProvider struct {
	client  HTTPClient
	baseURL string
	limiter *rate.Limiter
	log     *slog.Logger
	// userAgent is required by Nominatim usage policy
	userAgent string
}

// nominatimPlace represents a single entry in a Nominatim JSON response.
type nominatimPlace struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Common errors for the Nominatim provider.
var (
	ErrNominatimEmptyResponse = errors.New("nominatim API returned empty response")
	ErrNominatimInvalidCoords = errors.New("nominatim API returned invalid coordinates")
)

const defaultSearchLimit = 5

// NewNominatimProvider creates a new Nominatim geocoding provider.
// Uses the public Nominatim API endpoint by default.
func NewNominatimProvider(log *slog.Logger, requestsPerSecond float64, userAgent string) *NominatimProvider {
	const timeout = 10
	return NewNominatimProviderWithClient(
		&http.Client{Timeout: timeout * time.Second},
		log,
		requestsPerSecond,
		userAgent,
	)
}

// NewNominatimProviderWithClient creates a Nominatim provider with a custom
// HTTP client. Useful for testing with mocked HTTP clients.
func NewNominatimProviderWithClient(
	client HTTPClient,
	log *slog.Logger,
	requestsPerSecond float64,
	userAgent string,
) *NominatimProvider {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if userAgent == "" {
		// User-Agent MUST include valid contact info per Nominatim usage policy:
		// https://operations.osmfoundation.org/policies/nominatim/
		userAgent = "Wayfind-Geocoding/1.0 (https://github.com/openwander/wayfind)"
	}
	return &NominatimProvider{
		client:    client,
		baseURL:   "https://nominatim.openstreetmap.org",
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		log:       log,
		userAgent: userAgent,
	}
}

// ReverseGeocode converts a coordinate to a display address.
func (np *NominatimProvider) ReverseGeocode(ctx context.Context, coord models.Coordinate) (string, error) {
	np.log.DebugContext(ctx, "Reverse geocoding using Nominatim",
		"lat", coord.Latitude, "lon", coord.Longitude)

	query := url.Values{}
	query.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	query.Set("lon", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	query.Set("format", "jsonv2")

	body, err := np.get(ctx, "/reverse", query)
	if err != nil {
		return "", err
	}

	var place nominatimPlace
	if err = json.Unmarshal(body, &place); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return "", fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if place.DisplayName == "" {
		return "", ErrNominatimEmptyResponse
	}

	return place.DisplayName, nil
}

// Search finds places matching the query. When bounds is non-nil the search
// is restricted to that bounding box.
func (np *NominatimProvider) Search(
	ctx context.Context,
	searchQuery string,
	bounds *models.BoundingBox,
) ([]Place, error) {
	np.log.DebugContext(ctx, "Searching places using Nominatim", "query", searchQuery)

	query := url.Values{}
	query.Set("q", searchQuery)
	query.Set("format", "jsonv2")
	query.Set("limit", strconv.Itoa(defaultSearchLimit))
	if bounds != nil {
		query.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f",
			bounds.MinLon, bounds.MinLat, bounds.MaxLon, bounds.MaxLat))
		query.Set("bounded", "1")
	}

	body, err := np.get(ctx, "/search", query)
	if err != nil {
		return nil, err
	}

	var results []nominatimPlace
	if err = json.Unmarshal(body, &results); err != nil {
		np.log.ErrorContext(ctx, "Failed to parse Nominatim response", "error", err, "body", string(body))
		return nil, fmt.Errorf("failed to decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return nil, ErrNominatimEmptyResponse
	}

	places := make([]Place, 0, len(results))
	for _, result := range results {
		lat, err := strconv.ParseFloat(result.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid latitude: %s", ErrNominatimInvalidCoords, result.Lat)
		}
		lon, err := strconv.ParseFloat(result.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid longitude: %s", ErrNominatimInvalidCoords, result.Lon)
		}
		places = append(places, Place{
			Name:       result.Name,
			Address:    result.DisplayName,
			Coordinate: models.Coordinate{Longitude: lon, Latitude: lat},
			Importance: result.Importance,
		})
	}

	return places, nil
}

// get executes a rate-limited GET request against the Nominatim API and
// returns the raw response body.
func (np *NominatimProvider) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := np.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	reqURL := np.baseURL + path + "?" + query.Encode()
	np.log.DebugContext(ctx, "Nominatim request URL", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Required header per Nominatim usage policy.
	req.Header.Set("User-Agent", np.userAgent)

	resp, err := np.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute geocoding request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		np.log.ErrorContext(ctx, "Nominatim API error", "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nominatim API returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
