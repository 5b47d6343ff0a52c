package ports

import (
	"context"
	"fugitive-hunt-service/internal/domain"
	"time"
)

// Port: a boundary for session and claim state. CommitBatch and
// ResolveSession must be atomic: each either fully applies or leaves the
// store untouched, and concurrent calls racing for the same stock or the
// same session must be linearized by the implementation.
type GameStore interface {
	// Persist a new session.
	CreateSession(ctx context.Context, session *domain.Session) error

	// Report whether a session exists. Resolved sessions report false.
	SessionExists(ctx context.Context, sessionID string) (bool, error)

	// Return committed claim counts per vehicle id across all active sessions.
	VehicleUsage(ctx context.Context) (map[string]int, error)

	// Return destination ids already committed to a session.
	SessionDestinations(ctx context.Context, sessionID string) (map[string]bool, error)

	// Atomically persist a batch, re-checking every allocation invariant
	// against committed state inside the same transaction as the writes.
	// Returns the committed claims, or a domain violation with nothing
	// written.
	CommitBatch(ctx context.Context, sessionID string, batch []domain.ClaimRequest) ([]*domain.Claim, error)

	// List the claims committed to a session, in commit order.
	ListClaims(ctx context.Context, sessionID string) ([]*domain.Claim, error)

	// Atomically read the hidden destination and committed claims, compute
	// the outcome, and delete all of the session's state. A second call for
	// the same id returns domain.ErrSessionNotFound.
	ResolveSession(ctx context.Context, sessionID string) (*domain.Outcome, error)

	// Delete sessions (and their claims) created before the cutoff.
	// Returns the number of sessions removed.
	PurgeSessionsBefore(ctx context.Context, cutoff time.Time) (int, error)
}
