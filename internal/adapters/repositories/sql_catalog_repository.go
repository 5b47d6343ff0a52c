package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fugitive-hunt-service/internal/domain"
)

// SQLCatalogRepository is the Postgres-backed CatalogRepository, for
// deployments that point DATABASE_URL at a shared server instead of the
// local SQLite file.
type SQLCatalogRepository struct{ DB *sql.DB }

func NewSQLCatalogRepository(db *sql.DB) *SQLCatalogRepository {
	return &SQLCatalogRepository{DB: db}
}

func (s *SQLCatalogRepository) ListDestinations(ctx context.Context) ([]*domain.Destination, error) {
	if s.DB == nil {
		return nil, errors.New("sql catalog repository: DB is nil")
	}

	query := `
	SELECT destination_id, name, distance
	FROM destinations
	ORDER BY distance, destination_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list destinations: query destinations table: %w", err)
	}
	defer rows.Close()

	return scanDestinations(rows)
}

func (s *SQLCatalogRepository) ListVehicles(ctx context.Context) ([]*domain.VehicleClass, error) {
	if s.DB == nil {
		return nil, errors.New("sql catalog repository: DB is nil")
	}

	query := `
	SELECT vehicle_id, type, operating_range, total_stock
	FROM vehicles
	ORDER BY vehicle_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: query vehicles table: %w", err)
	}
	defer rows.Close()

	return scanVehicles(rows)
}
