package services

import (
	"context"
	"fmt"
	"fugitive-hunt-service/internal/domain"
	"fugitive-hunt-service/internal/ports"
)

// A vehicle class together with the number of units still committable.
type VehicleAvailability struct {
	Vehicle   *domain.VehicleClass
	Available int
}

type CatalogView struct {
	Destinations []*domain.Destination
	Vehicles     []VehicleAvailability
}

// ListCatalog returns the reference data plus live per-vehicle availability
// (total stock minus claims committed across all active sessions). The
// availability figure is a snapshot; the committer rechecks it atomically.
func ListCatalog(ctx context.Context, catalog ports.CatalogRepository, store ports.GameStore) (CatalogView, error) {
	dests, err := catalog.ListDestinations(ctx)
	if err != nil {
		return CatalogView{}, fmt.Errorf("list catalog: list destinations: %w", err)
	}

	vehicles, err := catalog.ListVehicles(ctx)
	if err != nil {
		return CatalogView{}, fmt.Errorf("list catalog: list vehicles: %w", err)
	}

	usage, err := store.VehicleUsage(ctx)
	if err != nil {
		return CatalogView{}, fmt.Errorf("list catalog: vehicle usage: %w", err)
	}

	view := CatalogView{
		Destinations: dests,
		Vehicles:     make([]VehicleAvailability, 0, len(vehicles)),
	}
	for _, v := range vehicles {
		available := v.TotalStock - usage[v.VehicleID]
		if available < 0 {
			available = 0
		}
		view.Vehicles = append(view.Vehicles, VehicleAvailability{
			Vehicle:   v,
			Available: available,
		})
	}

	return view, nil
}

// catalogMaps indexes the reference data by id for validation lookups.
func catalogMaps(ctx context.Context, catalog ports.CatalogRepository) (map[string]*domain.Destination, map[string]*domain.VehicleClass, error) {
	dests, err := catalog.ListDestinations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog maps: list destinations: %w", err)
	}

	vehicles, err := catalog.ListVehicles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog maps: list vehicles: %w", err)
	}

	destIndex := make(map[string]*domain.Destination, len(dests))
	for _, d := range dests {
		destIndex[d.DestinationID] = d
	}

	vehicleIndex := make(map[string]*domain.VehicleClass, len(vehicles))
	for _, v := range vehicles {
		vehicleIndex[v.VehicleID] = v
	}

	return destIndex, vehicleIndex, nil
}
