package services

import (
	"context"
	"errors"
	"fugitive-hunt-service/internal/domain"
	"sync"
	"testing"
)

// Hidden destination pinned to "y"; p2 claims it and wins, after which the
// session is gone.
func TestResolveSessionCaptured(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	result, err := StartSession(ctx, repo, repo, fixedRand{n: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = SubmitBatch(ctx, result.SessionID, []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
		{Participant: "p2", DestinationID: "y", VehicleID: "car"},
	}, repo, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcome, err := ResolveSession(ctx, result.SessionID, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Captured {
		t.Fatalf("expected captured outcome")
	}
	if len(outcome.Winners) != 1 || outcome.Winners[0].Participant != "p2" {
		t.Fatalf("unexpected winners: %+v", outcome.Winners)
	}

	exists, err := repo.SessionExists(ctx, result.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatalf("session must be purged after resolution")
	}
}

// Resolve with no batch ever submitted: the fugitive escapes.
func TestResolveSessionEscapedWithoutClaims(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	result, err := StartSession(ctx, repo, repo, fixedRand{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcome, err := ResolveSession(ctx, result.SessionID, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Captured {
		t.Fatalf("expected escaped outcome")
	}
	if len(outcome.Winners) != 0 {
		t.Fatalf("expected no winners, got %+v", outcome.Winners)
	}
}

func TestResolveSessionOneShot(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	result, err := StartSession(ctx, repo, repo, fixedRand{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := ResolveSession(ctx, result.SessionID, repo); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	_, err = ResolveSession(ctx, result.SessionID, repo)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("second resolve: expected ErrSessionNotFound, got %v", err)
	}
}

// Concurrent resolvers for the same session: exactly one receives the
// outcome, the rest get ErrSessionNotFound.
func TestResolveSessionConcurrentOneWinner(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	result, err := StartSession(ctx, repo, repo, fixedRand{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	const resolvers = 8
	var wg sync.WaitGroup
	outcomes := make(chan *domain.Outcome, resolvers)
	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := ResolveSession(ctx, result.SessionID, repo)
			if err == nil {
				outcomes <- outcome
				return
			}
			if !errors.Is(err, domain.ErrSessionNotFound) {
				t.Errorf("loser got %v, want ErrSessionNotFound", err)
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	delivered := 0
	for range outcomes {
		delivered++
	}
	if delivered != 1 {
		t.Fatalf("exactly one resolver should succeed, got %d", delivered)
	}
}

func TestListClaimsUnknownSession(t *testing.T) {
	repo := testRepo()

	_, err := ListClaims(context.Background(), "missing", repo)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
