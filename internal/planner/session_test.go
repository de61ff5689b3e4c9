package planner_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/openwander/wayfind/internal/metrics"
	"github.com/openwander/wayfind/internal/models"
	"github.com/openwander/wayfind/internal/planner"
	"github.com/openwander/wayfind/internal/routing"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRouter dispatches each CalculateRoute call to handler with its
// 1-based call number.
type mockRouter struct {
	mu      sync.Mutex
	calls   int
	handler func(call int, coords []models.Coordinate) (*models.Route, error)
}

func (m *mockRouter) CalculateRoute(
	_ context.Context,
	coords []models.Coordinate,
	_ models.Profile,
	_ string,
) (*models.Route, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	handler := m.handler
	m.mu.Unlock()
	return handler(call, coords)
}

func (m *mockRouter) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func routeWithDistance(distance float64) *models.Route {
	return &models.Route{
		Coordinates: []models.Coordinate{{Longitude: 19.9385, Latitude: 50.0647}, {Longitude: 19.94, Latitude: 50.065}},
		Distance:    distance,
		Duration:    distance / 2,
	}
}

func newTestSession(t *testing.T, router planner.Router) (*planner.Session, chan planner.Snapshot) {
	t.Helper()
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	session := planner.NewSession(slog.Default(), router, appMetrics, models.ProfileFoot, "krakow")

	changes := make(chan planner.Snapshot, 32)
	session.SetOnChange(func(s planner.Snapshot) { changes <- s })
	return session, changes
}

// waitFor drains change notifications until one satisfies the predicate.
func waitFor(t *testing.T, changes chan planner.Snapshot, match func(planner.Snapshot) bool) planner.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snapshot := <-changes:
			if match(snapshot) {
				return snapshot
			}
		case <-deadline:
			t.Fatal("timed out waiting for session state")
			return planner.Snapshot{}
		}
	}
}

func TestAddWaypoint(t *testing.T) {
	t.Run("single waypoint never triggers a routing call", func(t *testing.T) {
		router := &mockRouter{handler: func(int, []models.Coordinate) (*models.Route, error) {
			return routeWithDistance(1), nil
		}}
		session, _ := newTestSession(t, router)

		waypoint := session.AddWaypoint(models.Coordinate{Longitude: 19.9385, Latitude: 50.0647}, "Start")

		assert.NotEmpty(t, waypoint.ID)
		assert.Zero(t, router.callCount())
		assert.Nil(t, session.Snapshot().Route)
	})

	t.Run("second waypoint triggers recalculation", func(t *testing.T) {
		router := &mockRouter{handler: func(int, []models.Coordinate) (*models.Route, error) {
			return routeWithDistance(1234), nil
		}}
		session, changes := newTestSession(t, router)

		session.AddWaypoint(models.Coordinate{Longitude: 19.9385, Latitude: 50.0647}, "Start")
		session.AddWaypoint(models.Coordinate{Longitude: 19.94, Latitude: 50.065}, "End")

		snapshot := waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route != nil && !s.Loading })
		assert.InDelta(t, 1234, snapshot.Route.Distance, 1e-9)
		require.NoError(t, snapshot.Err)
		assert.Equal(t, 1, router.callCount())
	})

	t.Run("waypoint ids are unique", func(t *testing.T) {
		router := &mockRouter{handler: func(int, []models.Coordinate) (*models.Route, error) {
			return routeWithDistance(1), nil
		}}
		session, _ := newTestSession(t, router)

		seen := map[string]bool{}
		for range 10 {
			wp := session.AddWaypoint(models.Coordinate{}, "")
			assert.False(t, seen[wp.ID])
			seen[wp.ID] = true
		}
	})
}

func TestStaleResponseRejection(t *testing.T) {
	release := make(chan struct{})
	router := &mockRouter{handler: func(call int, _ []models.Coordinate) (*models.Route, error) {
		if call == 1 {
			<-release
			return routeWithDistance(222), nil
		}
		return routeWithDistance(333), nil
	}}
	session, changes := newTestSession(t, router)

	session.AddWaypoint(models.Coordinate{Longitude: 19.9385, Latitude: 50.0647}, "")
	session.AddWaypoint(models.Coordinate{Longitude: 19.94, Latitude: 50.065}, "")  // request 1, blocked
	session.AddWaypoint(models.Coordinate{Longitude: 19.95, Latitude: 50.066}, "") // request 2, instant

	newer := waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route != nil })
	assert.InDelta(t, 333, newer.Route.Distance, 1e-9)

	// Resolve the older request after the newer one has already been
	// applied; its response must be discarded on arrival.
	close(release)
	time.Sleep(100 * time.Millisecond)

	final := session.Snapshot()
	require.NotNil(t, final.Route)
	assert.InDelta(t, 333, final.Route.Distance, 1e-9)
}

func TestRecalculationFailure(t *testing.T) {
	router := &mockRouter{handler: func(call int, _ []models.Coordinate) (*models.Route, error) {
		if call == 1 {
			return routeWithDistance(1000), nil
		}
		return nil, &routing.Error{Code: routing.CodeNoRoute, Message: "No route could be found between these points."}
	}}
	session, changes := newTestSession(t, router)

	session.AddWaypoint(models.Coordinate{Longitude: 19.9385, Latitude: 50.0647}, "")
	session.AddWaypoint(models.Coordinate{Longitude: 19.94, Latitude: 50.065}, "")
	waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route != nil })

	session.AddWaypoint(models.Coordinate{Longitude: 25.0, Latitude: 55.0}, "")
	snapshot := waitFor(t, changes, func(s planner.Snapshot) bool { return s.Err != nil })

	// The last good route stays visible alongside the error state.
	require.NotNil(t, snapshot.Route)
	assert.InDelta(t, 1000, snapshot.Route.Distance, 1e-9)
	var routingErr *routing.Error
	require.ErrorAs(t, snapshot.Err, &routingErr)
	assert.Equal(t, routing.CodeNoRoute, routingErr.Code)
}

func TestRemoveWaypoint(t *testing.T) {
	router := &mockRouter{handler: func(int, []models.Coordinate) (*models.Route, error) {
		return routeWithDistance(500), nil
	}}
	session, changes := newTestSession(t, router)

	first := session.AddWaypoint(models.Coordinate{Longitude: 19.9385, Latitude: 50.0647}, "")
	session.AddWaypoint(models.Coordinate{Longitude: 19.94, Latitude: 50.065}, "")
	waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route != nil })
	callsBefore := router.callCount()

	t.Run("dropping below two waypoints clears the route without a call", func(t *testing.T) {
		require.True(t, session.RemoveWaypoint(first.ID))

		snapshot := waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route == nil })
		assert.Len(t, snapshot.Waypoints, 1)
		require.NoError(t, snapshot.Err)
		assert.Equal(t, callsBefore, router.callCount())
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		assert.False(t, session.RemoveWaypoint("no-such-id"))
	})
}

func TestReorder(t *testing.T) {
	router := &mockRouter{handler: func(int, []models.Coordinate) (*models.Route, error) {
		return routeWithDistance(500), nil
	}}
	session, changes := newTestSession(t, router)

	a := session.AddWaypoint(models.Coordinate{Longitude: 1, Latitude: 1}, "A")
	b := session.AddWaypoint(models.Coordinate{Longitude: 2, Latitude: 2}, "B")
	c := session.AddWaypoint(models.Coordinate{Longitude: 3, Latitude: 3}, "C")
	waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route != nil })

	t.Run("moves waypoint and recalculates", func(t *testing.T) {
		callsBefore := router.callCount()
		require.True(t, session.Reorder(0, 2))

		snapshot := session.Snapshot()
		ids := []string{snapshot.Waypoints[0].ID, snapshot.Waypoints[1].ID, snapshot.Waypoints[2].ID}
		assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids)

		waitFor(t, changes, func(s planner.Snapshot) bool { return !s.Loading })
		assert.Greater(t, router.callCount(), callsBefore)
	})

	t.Run("out of range indices are a no-op", func(t *testing.T) {
		assert.False(t, session.Reorder(-1, 1))
		assert.False(t, session.Reorder(0, 3))
		assert.False(t, session.Reorder(1, 1))
	})
}

func TestClear(t *testing.T) {
	router := &mockRouter{handler: func(int, []models.Coordinate) (*models.Route, error) {
		return routeWithDistance(500), nil
	}}
	session, changes := newTestSession(t, router)

	session.AddWaypoint(models.Coordinate{Longitude: 1, Latitude: 1}, "")
	session.AddWaypoint(models.Coordinate{Longitude: 2, Latitude: 2}, "")
	waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route != nil })

	session.Clear()

	snapshot := session.Snapshot()
	assert.Empty(t, snapshot.Waypoints)
	assert.Nil(t, snapshot.Route)
}

func TestSetProfile(t *testing.T) {
	router := &mockRouter{handler: func(int, []models.Coordinate) (*models.Route, error) {
		return routeWithDistance(500), nil
	}}
	session, changes := newTestSession(t, router)
	session.AddWaypoint(models.Coordinate{Longitude: 1, Latitude: 1}, "")
	session.AddWaypoint(models.Coordinate{Longitude: 2, Latitude: 2}, "")
	waitFor(t, changes, func(s planner.Snapshot) bool { return s.Route != nil })
	callsBefore := router.callCount()

	session.SetProfile(models.ProfileBicycle)
	waitFor(t, changes, func(s planner.Snapshot) bool { return !s.Loading })

	assert.Greater(t, router.callCount(), callsBefore)

	t.Run("same profile is a no-op", func(t *testing.T) {
		calls := router.callCount()
		session.SetProfile(models.ProfileBicycle)
		assert.Equal(t, calls, router.callCount())
	})
}
