package models

import "time"

// Waypoint is a user-placed stop on a planned route. The ID is generated at
// creation and never reused; ordering is owned by the planning session and
// implied by position in its waypoint slice.
type Waypoint struct {
	ID         string     `json:"id"`
	Coordinate Coordinate `json:"coordinate"`
	Name       string     `json:"name,omitempty"`
}

// RouteStep is a single maneuver on a calculated route.
type RouteStep struct {
	Instruction string           `json:"instruction"`
	Icon        string           `json:"icon,omitempty"`
	Distance    float64          `json:"distance"` // meters
	Duration    float64          `json:"duration"` // seconds
	Maneuver    ManeuverType     `json:"maneuver"`
	Modifier    ManeuverModifier `json:"modifier,omitempty"`
	StreetName  string           `json:"street_name,omitempty"`
	Location    Coordinate       `json:"location"`
	Geometry    []Coordinate     `json:"geometry,omitempty"` // path of this step, when the backend provides it
}

// Route is the result of a successful routing call. A new Route replaces the
// previous one atomically; partial or stale routes are never exposed.
type Route struct {
	Coordinates []Coordinate `json:"coordinates"` // full path, longitude-first pairs
	Distance    float64      `json:"distance"`    // meters
	Duration    float64      `json:"duration"`    // seconds
	Steps       []RouteStep  `json:"steps"`
}

// SavedRoute is a persisted route record keyed by an opaque id.
type SavedRoute struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	City      string     `json:"city,omitempty"`
	Profile   Profile    `json:"profile"`
	Route     Route      `json:"route"`
	Waypoints []Waypoint `json:"waypoints"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
