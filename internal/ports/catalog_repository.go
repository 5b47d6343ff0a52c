package ports

import (
	"context"
	"fugitive-hunt-service/internal/domain"
)

// Port: read-only access to destination and vehicle reference data.
type CatalogRepository interface {
	// Retrieve all destinations in the catalog.
	ListDestinations(ctx context.Context) ([]*domain.Destination, error)
	// Retrieve all vehicle classes in the catalog.
	ListVehicles(ctx context.Context) ([]*domain.VehicleClass, error)
}
