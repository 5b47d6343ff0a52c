package services

import (
	"context"
	"fmt"
	"fugitive-hunt-service/internal/domain"
	"fugitive-hunt-service/internal/ports"
	"time"

	"github.com/google/uuid"
)

// RandomSource picks an index in [0, n). Injectable so tests can pin the
// hidden destination; *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

type StartSessionResult struct {
	SessionID        string
	DestinationCount int
}

// StartSession creates a new round with a randomly hidden destination.
// The hidden destination id is written to the store and never returned;
// callers only learn the session id and how many destinations exist.
func StartSession(
	ctx context.Context,
	catalog ports.CatalogRepository,
	store ports.GameStore,
	rng RandomSource,
) (StartSessionResult, error) {
	dests, err := catalog.ListDestinations(ctx)
	if err != nil {
		return StartSessionResult{}, fmt.Errorf("start session: list destinations: %w", err)
	}
	if len(dests) == 0 {
		return StartSessionResult{}, domain.ErrCatalogEmpty
	}

	hidden := dests[rng.Intn(len(dests))]
	session := &domain.Session{
		SessionID:           uuid.NewString(),
		HiddenDestinationID: hidden.DestinationID,
		CreatedAt:           time.Now().UTC(),
	}

	if err := store.CreateSession(ctx, session); err != nil {
		return StartSessionResult{}, fmt.Errorf("start session: create session: %w", err)
	}

	return StartSessionResult{
		SessionID:        session.SessionID,
		DestinationCount: len(dests),
	}, nil
}
