package services

import (
	"context"
	"fmt"
	"fugitive-hunt-service/internal/domain"
	"fugitive-hunt-service/internal/ports"
)

// ValidateBatch is the advisory pre-check: it evaluates a proposed batch
// against a snapshot of committed state, without holding any lock. A clean
// result here can still lose a race; the authoritative check is re-run by
// the store inside the commit transaction.
func ValidateBatch(
	ctx context.Context,
	sessionID string,
	batch []domain.ClaimRequest,
	catalog ports.CatalogRepository,
	store ports.GameStore,
) error {
	exists, err := store.SessionExists(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("validate batch: session lookup: %w", err)
	}
	if !exists {
		return domain.ErrSessionNotFound
	}

	destIndex, vehicleIndex, err := catalogMaps(ctx, catalog)
	if err != nil {
		return fmt.Errorf("validate batch: %w", err)
	}

	taken, err := store.SessionDestinations(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("validate batch: session destinations: %w", err)
	}

	usage, err := store.VehicleUsage(ctx)
	if err != nil {
		return fmt.Errorf("validate batch: vehicle usage: %w", err)
	}

	return domain.ValidateBatch(batch, destIndex, vehicleIndex, taken, usage)
}

// SubmitBatch validates and commits an allocation batch as one unit. The
// advisory pre-check gives fast rejection without touching the write path;
// the store then re-checks every invariant atomically so two batches racing
// for the last unit of a vehicle class cannot both land.
func SubmitBatch(
	ctx context.Context,
	sessionID string,
	batch []domain.ClaimRequest,
	catalog ports.CatalogRepository,
	store ports.GameStore,
) ([]*domain.Claim, error) {
	if err := ValidateBatch(ctx, sessionID, batch, catalog, store); err != nil {
		return nil, err
	}

	claims, err := store.CommitBatch(ctx, sessionID, batch)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
