package repository_test

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openwander/wayfind/internal/models"
	"github.com/openwander/wayfind/internal/repository"
)

const saveRouteQuery = `
		INSERT INTO routes (id, name, city, profile, route, waypoints, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET name = $2, city = $3, profile = $4, route = $5, waypoints = $6, updated_at = now();
	`

const getRouteQuery = `
		SELECT id, name, city, profile, route, waypoints, created_at, updated_at
		FROM routes
		WHERE id = $1;
	`

const listRoutesQuery = `
		SELECT id, name, city, profile, route, waypoints, created_at, updated_at
		FROM routes
		ORDER BY updated_at DESC;
	`

func sampleSavedRoute() *models.SavedRoute {
	return &models.SavedRoute{
		ID:      "route-1",
		Name:    "Morning run",
		City:    "krakow",
		Profile: models.ProfileFoot,
		Route: models.Route{
			Coordinates: []models.Coordinate{
				{Longitude: 19.9385, Latitude: 50.0647},
				{Longitude: 19.9400, Latitude: 50.0650},
			},
			Distance: 1234,
			Duration: 567,
		},
		Waypoints: []models.Waypoint{
			{ID: "wp-1", Coordinate: models.Coordinate{Longitude: 19.9385, Latitude: 50.0647}},
			{ID: "wp-2", Coordinate: models.Coordinate{Longitude: 19.9400, Latitude: 50.0650}},
		},
	}
}

func TestSaveRoute(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success - insert route", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		saved := sampleSavedRoute()

		routeJSON, err := json.Marshal(saved.Route)
		require.NoError(t, err)
		waypointsJSON, err := json.Marshal(saved.Waypoints)
		require.NoError(t, err)

		mock.ExpectExec(regexp.QuoteMeta(saveRouteQuery)).
			WithArgs(saved.ID, saved.Name, saved.City, "foot", routeJSON, waypointsJSON).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.SaveRoute(ctx, saved)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("generates an id when missing", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		saved := sampleSavedRoute()
		saved.ID = ""

		mock.ExpectExec(regexp.QuoteMeta(saveRouteQuery)).
			WithArgs(pgxmock.AnyArg(), saved.Name, saved.City, "foot", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err = repo.SaveRoute(ctx, saved)

		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		saved := sampleSavedRoute()

		mock.ExpectExec(regexp.QuoteMeta(saveRouteQuery)).
			WithArgs(saved.ID, saved.Name, saved.City, "foot", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(assert.AnError)

		err = repo.SaveRoute(ctx, saved)

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to save route")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetRoute(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success - get route", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		saved := sampleSavedRoute()
		now := time.Now()

		routeJSON, err := json.Marshal(saved.Route)
		require.NoError(t, err)
		waypointsJSON, err := json.Marshal(saved.Waypoints)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(getRouteQuery)).
			WithArgs(saved.ID).
			WillReturnRows(
				pgxmock.NewRows([]string{
					"id", "name", "city", "profile", "route", "waypoints", "created_at", "updated_at",
				}).AddRow(saved.ID, saved.Name, saved.City, "foot", routeJSON, waypointsJSON, now, now),
			)

		got, err := repo.GetRoute(ctx, saved.ID)

		require.NoError(t, err)
		assert.Equal(t, saved.Name, got.Name)
		assert.Equal(t, models.ProfileFoot, got.Profile)
		assert.Len(t, got.Route.Coordinates, 2)
		assert.Len(t, got.Waypoints, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(getRouteQuery)).
			WithArgs("missing").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "name", "city", "profile", "route", "waypoints", "created_at", "updated_at",
			}))

		_, err = repo.GetRoute(ctx, "missing")

		require.ErrorIs(t, err, repository.ErrRouteNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - malformed route document", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(getRouteQuery)).
			WithArgs("route-1").
			WillReturnRows(
				pgxmock.NewRows([]string{
					"id", "name", "city", "profile", "route", "waypoints", "created_at", "updated_at",
				}).AddRow("route-1", "x", "", "foot", []byte("not json"), []byte("[]"), now, now),
			)

		_, err = repo.GetRoute(ctx, "route-1")

		require.Error(t, err)
		require.ErrorContains(t, err, "failed to unmarshal route geometry")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListRoutes(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()

	t.Run("success - list routes", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		saved := sampleSavedRoute()
		now := time.Now()

		routeJSON, err := json.Marshal(saved.Route)
		require.NoError(t, err)
		waypointsJSON, err := json.Marshal(saved.Waypoints)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(listRoutesQuery)).
			WillReturnRows(
				pgxmock.NewRows([]string{
					"id", "name", "city", "profile", "route", "waypoints", "created_at", "updated_at",
				}).
					AddRow("route-1", "first", "", "foot", routeJSON, waypointsJSON, now, now).
					AddRow("route-2", "second", "", "car", routeJSON, waypointsJSON, now, now),
			)

		routes, err := repo.ListRoutes(ctx)

		require.NoError(t, err)
		require.Len(t, routes, 2)
		assert.Equal(t, "first", routes[0].Name)
		assert.Equal(t, models.ProfileCar, routes[1].Profile)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - query fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectQuery(regexp.QuoteMeta(listRoutesQuery)).
			WillReturnError(assert.AnError)

		routes, err := repo.ListRoutes(ctx)

		require.Nil(t, routes)
		require.ErrorContains(t, err, "failed to query routes")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(listRoutesQuery)).
			WillReturnRows(
				pgxmock.NewRows([]string{
					"id", "name", "city", "profile", "route", "waypoints", "created_at", "updated_at",
				}).
					AddRow("route-1", "x", "", "foot", []byte("{}"), []byte("[]"), now, now).
					RowError(1, assert.AnError),
			)

		routes, err := repo.ListRoutes(ctx)

		require.Nil(t, routes)
		require.ErrorContains(t, err, "failed to read row")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteRoute(t *testing.T) {
	t.Parallel()
	logger := slog.Default()
	ctx := t.Context()
	query := `DELETE FROM routes WHERE id = $1;`

	t.Run("success - delete route", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("route-1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		err = repo.DeleteRoute(ctx, "route-1")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - not found", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("missing").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err = repo.DeleteRoute(ctx, "missing")

		require.ErrorIs(t, err, repository.ErrRouteNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error - exec fails", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := repository.NewRepository(mock, logger)

		mock.ExpectExec(regexp.QuoteMeta(query)).WithArgs("route-1").
			WillReturnError(assert.AnError)

		err = repo.DeleteRoute(ctx, "route-1")

		require.ErrorContains(t, err, "failed to delete route")
		require.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
