package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openwander/wayfind/internal/config"
	"github.com/openwander/wayfind/internal/models"
)

// Database is the subset of pgxpool.Pool used by the repository.
// It allows the pool to be replaced with a mock in tests.
type Database interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ErrRouteNotFound is returned when a saved route does not exist.
var ErrRouteNotFound = errors.New("saved route not found")

type Repository struct {
	db  Database
	log *slog.Logger
}

type Interface interface {
	SaveRoute(ctx context.Context, route *models.SavedRoute) error
	GetRoute(ctx context.Context, id string) (*models.SavedRoute, error)
	ListRoutes(ctx context.Context) ([]models.SavedRoute, error)
	DeleteRoute(ctx context.Context, id string) error
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// NewDatabase opens a connection pool to the configured PostgreSQL database
// and verifies connectivity.
func NewDatabase(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
