package services

import (
	"context"
	"fugitive-hunt-service/internal/domain"
	"fugitive-hunt-service/internal/ports"
)

// ResolveSession determines the round's outcome and retires the session.
// The store performs read, outcome computation and deletion in one atomic
// scope, so of two concurrent resolvers exactly one receives the outcome
// and the other domain.ErrSessionNotFound. Resolution cannot be replayed.
func ResolveSession(ctx context.Context, sessionID string, store ports.GameStore) (*domain.Outcome, error) {
	return store.ResolveSession(ctx, sessionID)
}

// ListClaims returns the claims committed to a session so far.
func ListClaims(ctx context.Context, sessionID string, store ports.GameStore) ([]*domain.Claim, error) {
	exists, err := store.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	return store.ListClaims(ctx, sessionID)
}
