// Package planner owns the waypoint list of a route being planned and keeps
// the calculated route in sync with it. Each session is an explicitly owned
// object, never a process-wide singleton, so multiple concurrent sessions
// (for example several map views) are safe.
package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openwander/wayfind/internal/metrics"
	"github.com/openwander/wayfind/internal/models"
)

// Router calculates routes. *routing.Client satisfies it; tests substitute
// their own.
type Router interface {
	CalculateRoute(
		ctx context.Context,
		waypoints []models.Coordinate,
		profile models.Profile,
		city string,
	) (*models.Route, error)
}

// Snapshot is an immutable view of the session state, safe to hand to the
// UI layer.
type Snapshot struct {
	Waypoints []models.Waypoint
	Route     *models.Route
	Err       error
	Loading   bool
}

// Session maintains an ordered waypoint sequence and recalculates the route
// asynchronously after every mutation that leaves at least two waypoints.
// Overlapping recalculations are resolved by generation tagging: only the
// response to the most recent request may update the exposed route, and
// older in-flight responses are discarded on arrival.
type Session struct {
	log     *slog.Logger
	router  Router
	metrics *metrics.Metrics

	mu         sync.Mutex
	profile    models.Profile
	city       string
	waypoints  []models.Waypoint
	route      *models.Route
	err        error
	loading    bool
	generation uint64
	onChange   func(Snapshot)
}

// NewSession creates a planning session for the given profile and city.
func NewSession(
	log *slog.Logger,
	router Router,
	appMetrics *metrics.Metrics,
	profile models.Profile,
	city string,
) *Session {
	if !profile.IsValid() {
		profile = models.DefaultProfile
	}
	return &Session{
		log:     log,
		router:  router,
		metrics: appMetrics,
		profile: profile,
		city:    city,
	}
}

// SetOnChange registers a callback invoked after every state change. The
// callback runs outside the session lock on the mutating or responding
// goroutine.
func (s *Session) SetOnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	waypoints := make([]models.Waypoint, len(s.waypoints))
	copy(waypoints, s.waypoints)
	return Snapshot{
		Waypoints: waypoints,
		Route:     s.route,
		Err:       s.err,
		Loading:   s.loading,
	}
}

// AddWaypoint appends a waypoint with a freshly generated id and returns it.
func (s *Session) AddWaypoint(coord models.Coordinate, name string) models.Waypoint {
	waypoint := models.Waypoint{
		ID:         uuid.NewString(),
		Coordinate: coord,
		Name:       name,
	}

	s.mu.Lock()
	s.waypoints = append(s.waypoints, waypoint)
	notify := s.afterMutationLocked()
	s.mu.Unlock()
	notify()

	return waypoint
}

// RemoveWaypoint removes the waypoint with the given id. Unknown ids are
// ignored.
func (s *Session) RemoveWaypoint(id string) bool {
	s.mu.Lock()
	index := -1
	for i, w := range s.waypoints {
		if w.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		s.mu.Unlock()
		return false
	}

	s.waypoints = append(s.waypoints[:index], s.waypoints[index+1:]...)
	notify := s.afterMutationLocked()
	s.mu.Unlock()
	notify()
	return true
}

// Reorder moves the waypoint at fromIndex to toIndex. Out-of-range indices
// are a no-op.
func (s *Session) Reorder(fromIndex, toIndex int) bool {
	s.mu.Lock()
	n := len(s.waypoints)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n || fromIndex == toIndex {
		s.mu.Unlock()
		return false
	}

	moved := s.waypoints[fromIndex]
	s.waypoints = append(s.waypoints[:fromIndex], s.waypoints[fromIndex+1:]...)
	s.waypoints = append(s.waypoints[:toIndex], append([]models.Waypoint{moved}, s.waypoints[toIndex:]...)...)
	notify := s.afterMutationLocked()
	s.mu.Unlock()
	notify()
	return true
}

// Clear removes all waypoints and the current route.
func (s *Session) Clear() {
	s.mu.Lock()
	s.waypoints = nil
	notify := s.afterMutationLocked()
	s.mu.Unlock()
	notify()
}

// SetProfile switches the routing profile and recalculates.
func (s *Session) SetProfile(profile models.Profile) {
	if !profile.IsValid() {
		return
	}

	s.mu.Lock()
	if profile == s.profile {
		s.mu.Unlock()
		return
	}
	s.profile = profile
	notify := s.afterMutationLocked()
	s.mu.Unlock()
	notify()
}

// afterMutationLocked invalidates any in-flight recalculation and either
// starts a new one or, below two waypoints, clears the route without a
// network call. It returns the deferred change notification.
func (s *Session) afterMutationLocked() func() {
	s.generation++

	const minWaypoints = 2
	if len(s.waypoints) < minWaypoints {
		s.route = nil
		s.err = nil
		s.loading = false
		return s.notifierLocked()
	}

	coords := make([]models.Coordinate, len(s.waypoints))
	for i, w := range s.waypoints {
		coords[i] = w.Coordinate
	}

	s.loading = true
	s.metrics.ActiveRecalculations.Inc()
	go s.recalculate(s.generation, coords, s.profile, s.city)

	return s.notifierLocked()
}

// recalculate runs one routing request and applies its result only if it is
// still the most recent request.
func (s *Session) recalculate(generation uint64, coords []models.Coordinate, profile models.Profile, city string) {
	ctx := context.Background()
	start := time.Now()
	route, err := s.router.CalculateRoute(ctx, coords, profile, city)
	s.metrics.RoutingSeconds.WithLabelValues(string(profile)).Observe(time.Since(start).Seconds())

	s.mu.Lock()
	s.metrics.ActiveRecalculations.Dec()

	if generation != s.generation {
		s.mu.Unlock()
		s.metrics.StaleRoutesDropped.Inc()
		s.log.Debug("Discarding stale routing response", "generation", generation)
		return
	}

	s.loading = false
	if err != nil {
		// The previous route stays visible; only the error state changes.
		s.err = err
		s.metrics.RouteCalculations.WithLabelValues("failure").Inc()
		s.log.Error("Route recalculation failed", "error", err)
	} else {
		s.route = route
		s.err = nil
		s.metrics.RouteCalculations.WithLabelValues("success").Inc()
		s.log.Debug("Route recalculated", "distance", route.Distance, "steps", len(route.Steps))
	}

	notify := s.notifierLocked()
	s.mu.Unlock()
	notify()
}

// notifierLocked captures the change callback and a snapshot while locked
// and returns a closure to invoke after unlocking.
func (s *Session) notifierLocked() func() {
	fn := s.onChange
	if fn == nil {
		return func() {}
	}
	snapshot := s.snapshotLocked()
	return func() { fn(snapshot) }
}
