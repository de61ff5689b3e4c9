package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/openwander/wayfind/internal/models"
)

// SaveRoute persists a planned route together with its waypoints. The route
// geometry and the waypoint list are stored as JSONB documents. A route with
// an existing ID is updated in place; a route without an ID gets one.
func (r *Repository) SaveRoute(ctx context.Context, route *models.SavedRoute) error {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}

	routeJSON, err := json.Marshal(route.Route)
	if err != nil {
		return fmt.Errorf("failed to marshal route geometry: %w", err)
	}
	waypointsJSON, err := json.Marshal(route.Waypoints)
	if err != nil {
		return fmt.Errorf("failed to marshal waypoints: %w", err)
	}

	query := `
		INSERT INTO routes (id, name, city, profile, route, waypoints, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET name = $2, city = $3, profile = $4, route = $5, waypoints = $6, updated_at = now();
	`

	_, err = r.db.Exec(ctx, query,
		route.ID, route.Name, route.City, string(route.Profile), routeJSON, waypointsJSON)
	if err != nil {
		return fmt.Errorf("failed to save route: %w", err)
	}

	r.log.DebugContext(ctx, "Route saved", "id", route.ID, "name", route.Name)
	return nil
}

// GetRoute loads a single saved route by ID.
// Returns ErrRouteNotFound when no such route exists.
func (r *Repository) GetRoute(ctx context.Context, id string) (*models.SavedRoute, error) {
	query := `
		SELECT id, name, city, profile, route, waypoints, created_at, updated_at
		FROM routes
		WHERE id = $1;
	`

	row := r.db.QueryRow(ctx, query, id)

	saved, err := scanSavedRoute(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}

	return saved, nil
}

// ListRoutes returns all saved routes, most recently updated first.
func (r *Repository) ListRoutes(ctx context.Context) ([]models.SavedRoute, error) {
	query := `
		SELECT id, name, city, profile, route, waypoints, created_at, updated_at
		FROM routes
		ORDER BY updated_at DESC;
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes: %w", err)
	}
	defer rows.Close()

	var routes []models.SavedRoute
	for rows.Next() {
		saved, errScan := scanSavedRoute(rows)
		if errScan != nil {
			return nil, fmt.Errorf("failed to scan route: %w", errScan)
		}
		routes = append(routes, *saved)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return routes, nil
}

// DeleteRoute removes a saved route by ID.
// Returns ErrRouteNotFound when no such route exists.
func (r *Repository) DeleteRoute(ctx context.Context, id string) error {
	query := `DELETE FROM routes WHERE id = $1;`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrRouteNotFound
	}

	r.log.DebugContext(ctx, "Route deleted", "id", id)
	return nil
}

// scanSavedRoute reads a saved route from a row with the canonical column
// order and unmarshals the JSONB documents.
func scanSavedRoute(row pgx.Row) (*models.SavedRoute, error) {
	var (
		saved         models.SavedRoute
		profile       string
		routeJSON     []byte
		waypointsJSON []byte
	)

	err := row.Scan(&saved.ID, &saved.Name, &saved.City, &profile,
		&routeJSON, &waypointsJSON, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, err
	}

	saved.Profile = models.Profile(profile)
	if err = json.Unmarshal(routeJSON, &saved.Route); err != nil {
		return nil, fmt.Errorf("failed to unmarshal route geometry: %w", err)
	}
	if err = json.Unmarshal(waypointsJSON, &saved.Waypoints); err != nil {
		return nil, fmt.Errorf("failed to unmarshal waypoints: %w", err)
	}

	return &saved, nil
}
