// Package routing implements the client for an OSRM-compatible routing
// backend: request construction, response normalization, the typed error
// taxonomy, and derivation of human-readable step instructions.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/openwander/wayfind/internal/models"
	"github.com/openwander/wayfind/internal/polyline"
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls an OSRM-compatible routing backend. Two addressing modes are
// supported: a single-tenant instance reached directly (base URL carries a
// path, requests go to {base}/route/v1/{profile}/...), and a multi-tenant
// gateway (bare-host base URL, requests are scoped per city as
// {base}/{city}/{profile}/route/v1/{profile}/...). The mode is derived from
// the configured base URL so existing deployments keep working unchanged.
type Client struct {
	client  HTTPClient   // HTTP client for making requests
	baseURL string       // Base URL for the routing backend
	scoped  bool         // true when the base URL addresses a multi-tenant gateway
	log     *slog.Logger // Logger for logging operations
}

const defaultTimeout = 15 * time.Second

// NewClient creates a routing client for the given base URL. A zero timeout
// falls back to the default.
func NewClient(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, baseURL, log)
}

// NewClientWithHTTP creates a routing client with a custom HTTP client.
// Useful for testing with mocked transports.
func NewClientWithHTTP(client HTTPClient, baseURL string, log *slog.Logger) *Client {
	return &Client{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		scoped:  isGatewayBase(baseURL),
		log:     log,
	}
}

// isGatewayBase reports whether the base URL addresses a multi-tenant
// gateway. A bare host (no path component) is the gateway; a base URL that
// already points into an OSRM instance is single-tenant.
func isGatewayBase(baseURL string) bool {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.Trim(parsed.Path, "/") == ""
}

// osrm response envelope.
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Geometry json.RawMessage `json:"geometry"`
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Legs     []osrmLeg       `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Maneuver osrmManeuver    `json:"maneuver"`
	Geometry json.RawMessage `json:"geometry"`
	Distance float64         `json:"distance"`
	Duration float64         `json:"duration"`
	Name     string          `json:"name"`
}

type osrmManeuver struct {
	Type     string     `json:"type"`
	Modifier string     `json:"modifier"`
	Location [2]float64 `json:"location"` // [lon, lat]
}

type nearestResponse struct {
	Code      string `json:"code"`
	Waypoints []struct {
		Location [2]float64 `json:"location"`
	} `json:"waypoints"`
}

// CalculateRoute requests a route through the given waypoints and normalizes
// the backend response into a Route. Failures are always returned as *Error;
// fewer than two waypoints fails locally without a network call.
func (c *Client) CalculateRoute(
	ctx context.Context,
	waypoints []models.Coordinate,
	profile models.Profile,
	city string,
) (*models.Route, error) {
	const minWaypoints = 2
	if len(waypoints) < minWaypoints {
		return nil, NewError(CodeInsufficientWaypoints, fmt.Sprintf("got %d waypoints", len(waypoints)))
	}

	reqURL := c.routeURL(waypoints, profile, city)
	c.log.DebugContext(ctx, "Routing request", "url", reqURL, "waypoints", len(waypoints), "profile", profile)

	body, rerr := c.get(ctx, reqURL)
	if rerr != nil {
		return nil, rerr
	}

	var envelope osrmResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.log.ErrorContext(ctx, "Failed to parse routing response", "error", err)
		return nil, NewError(CodeServerUnavailable, "malformed response: "+err.Error())
	}

	if envelope.Code != "Ok" {
		c.log.InfoContext(ctx, "Routing backend rejected request", "code", envelope.Code, "message", envelope.Message)
		return nil, NewError(Code(envelope.Code), envelope.Message)
	}
	if len(envelope.Routes) == 0 {
		return nil, NewError(CodeNoRoute, "backend returned Ok with no routes")
	}

	// Only the first (best) alternative is used.
	return c.buildRoute(&envelope.Routes[0]), nil
}

// routeURL joins waypoints as "lon,lat;lon,lat;..." and scopes the path to
// the city when talking to the gateway.
func (c *Client) routeURL(waypoints []models.Coordinate, profile models.Profile, city string) string {
	coords := make([]string, len(waypoints))
	for i, w := range waypoints {
		coords[i] = formatCoord(w)
	}

	var sb strings.Builder
	sb.WriteString(c.baseURL)
	sb.WriteString(c.scopePrefix(city, profile))
	sb.WriteString("/route/v1/" + string(profile) + "/" + strings.Join(coords, ";"))
	sb.WriteString("?overview=full&steps=true")
	return sb.String()
}

// scopePrefix returns the per-city path segment used against the gateway,
// or "" when the backend is single-tenant or no city is set.
func (c *Client) scopePrefix(city string, profile models.Profile) string {
	if c.scoped && city != "" {
		return "/" + url.PathEscape(city) + "/" + string(profile)
	}
	return ""
}

// buildRoute normalizes a backend route alternative: geometry resolved to
// coordinates, instructions derived per step, interior per-leg arrival steps
// suppressed in favor of a single synthesized final arrival.
func (c *Client) buildRoute(raw *osrmRoute) *models.Route {
	route := &models.Route{
		Coordinates: decodeGeometry(raw.Geometry),
		Distance:    raw.Distance,
		Duration:    raw.Duration,
	}

	var lastArrive *osrmStep
	for li := range raw.Legs {
		for si := range raw.Legs[li].Steps {
			step := &raw.Legs[li].Steps[si]
			mtype := models.ParseManeuverType(step.Maneuver.Type)
			if mtype == models.ManeuverArrive {
				lastArrive = step
				continue
			}
			route.Steps = append(route.Steps, c.buildStep(step, mtype))
		}
	}

	if lastArrive != nil {
		route.Steps = append(route.Steps, c.buildStep(lastArrive, models.ManeuverArrive))
	} else if len(route.Coordinates) > 0 {
		// Backends should always close each leg with an arrive step; if the
		// response lacks one, synthesize arrival at the end of the path.
		route.Steps = append(route.Steps, models.RouteStep{
			Instruction: Instruction(models.ManeuverArrive, models.ModifierNone, ""),
			Maneuver:    models.ManeuverArrive,
			Location:    route.Coordinates[len(route.Coordinates)-1],
		})
	}

	return route
}

func (c *Client) buildStep(raw *osrmStep, mtype models.ManeuverType) models.RouteStep {
	modifier := models.ParseManeuverModifier(raw.Maneuver.Modifier)
	return models.RouteStep{
		Instruction: Instruction(mtype, modifier, raw.Name),
		Icon:        string(Icon(mtype, modifier)),
		Distance:    raw.Distance,
		Duration:    raw.Duration,
		Maneuver:    mtype,
		Modifier:    modifier,
		StreetName:  raw.Name,
		Location: models.Coordinate{
			Longitude: raw.Maneuver.Location[0],
			Latitude:  raw.Maneuver.Location[1],
		},
		Geometry: decodeGeometry(raw.Geometry),
	}
}

// decodeGeometry resolves the backend's geometry union shape once, at the
// client boundary: either an encoded polyline string or a GeoJSON-style
// object with longitude-first coordinate pairs.
func decodeGeometry(raw json.RawMessage) []models.Coordinate {
	if len(raw) == 0 {
		return nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		return polyline.Decode(encoded)
	}

	var structured struct {
		Coordinates [][]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil && len(structured.Coordinates) > 0 {
		coords := make([]models.Coordinate, 0, len(structured.Coordinates))
		for _, pair := range structured.Coordinates {
			if len(pair) < 2 {
				continue
			}
			coords = append(coords, models.Coordinate{Longitude: pair[0], Latitude: pair[1]})
		}
		return coords
	}

	return nil
}

// FindNearest snaps a coordinate to the nearest routable network edge,
// scoped to the city when talking to the gateway. It returns nil on any
// failure; the caller decides whether to fall back to the raw coordinate.
func (c *Client) FindNearest(
	ctx context.Context,
	coord models.Coordinate,
	profile models.Profile,
	city string,
) *models.Coordinate {
	var sb strings.Builder
	sb.WriteString(c.baseURL)
	sb.WriteString(c.scopePrefix(city, profile))
	sb.WriteString("/nearest/v1/" + string(profile) + "/" + formatCoord(coord))

	body, rerr := c.get(ctx, sb.String())
	if rerr != nil {
		c.log.DebugContext(ctx, "Nearest lookup failed", "error", rerr)
		return nil
	}

	var resp nearestResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Code != "Ok" || len(resp.Waypoints) == 0 {
		return nil
	}

	return &models.Coordinate{
		Longitude: resp.Waypoints[0].Location[0],
		Latitude:  resp.Waypoints[0].Location[1],
	}
}

// get executes a GET request and returns the body, mapping every transport
// failure to CodeServerUnavailable with diagnostic detail.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewError(CodeServerUnavailable, "failed to create request: "+err.Error())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Routing backend unreachable", "error", err)
		return nil, NewError(CodeServerUnavailable, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(CodeServerUnavailable, "failed to read response body: "+err.Error())
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// OSRM reports application errors with a 4xx status and a code in
		// the body; surface the backend code when one is present.
		var envelope osrmResponse
		if jerr := json.Unmarshal(body, &envelope); jerr == nil && envelope.Code != "" && envelope.Code != "Ok" {
			return nil, NewError(Code(envelope.Code), envelope.Message)
		}
		c.log.ErrorContext(ctx, "Routing backend error", "status", resp.StatusCode)
		return nil, NewError(CodeServerUnavailable, "HTTP status "+strconv.Itoa(resp.StatusCode))
	}

	return body, nil
}

func formatCoord(c models.Coordinate) string {
	return strconv.FormatFloat(c.Longitude, 'f', 6, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', 6, 64)
}
