package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fugitive-hunt-service/internal/domain"
)

// SQLite-backed implementation of the CatalogRepository port.
type SqliteCatalogRepository struct{ DB *sql.DB }

func NewSqliteCatalogRepository(db *sql.DB) *SqliteCatalogRepository {
	return &SqliteCatalogRepository{DB: db}
}

// Return all destinations stored in the database.
func (s *SqliteCatalogRepository) ListDestinations(ctx context.Context) ([]*domain.Destination, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite catalog repository: DB is nil")
	}

	query := `
	SELECT
		destination_id,
		name,
		distance
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

// Return all vehicle classes stored in the database.
func (s *SqliteCatalogRepository) ListVehicles(ctx context.Context) ([]*domain.VehicleClass, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite catalog repository: DB is nil")
	}

	query := `
	SELECT
		vehicle_id,
		type,
		operating_range,
		total_stock
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

// Row scanning is shared with the game repositories, which reread the
// catalog inside their commit transactions.

func scanDestinations(rows *sql.Rows) ([]*domain.Destination, error) {
	dests := make([]*domain.Destination, 0, 8)
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.DestinationID, &d.Name, &d.Distance); err != nil {
			return nil, fmt.Errorf("list destinations: scan row: %w", err)
		}
		dests = append(dests, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list destinations: row iteration: %w", err)
	}

	return dests, nil
}

func scanVehicles(rows *sql.Rows) ([]*domain.VehicleClass, error) {
	vehicles := make([]*domain.VehicleClass, 0, 8)
	for rows.Next() {
		var v domain.VehicleClass
		if err := rows.Scan(&v.VehicleID, &v.Type, &v.Range, &v.TotalStock); err != nil {
			return nil, fmt.Errorf("list vehicles: scan row: %w", err)
		}
		vehicles = append(vehicles, &v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vehicles: row iteration: %w", err)
	}

	return vehicles, nil
}
