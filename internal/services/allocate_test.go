package services

import (
	"context"
	"errors"
	"fugitive-hunt-service/internal/domain"
	"sync"
	"testing"
)

func TestSubmitBatchUnknownSession(t *testing.T) {
	repo := testRepo()

	_, err := SubmitBatch(context.Background(), "missing", []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
	}, repo, repo)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

// A batch with one invalid entry commits nothing.
func TestSubmitBatchAtomicRejection(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	result, err := StartSession(ctx, repo, repo, fixedRand{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = SubmitBatch(ctx, result.SessionID, []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
		{Participant: "p2", DestinationID: "y", VehicleID: "bike"}, // 25 < 40
	}, repo, repo)

	var short *domain.InsufficientRangeError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientRangeError, got %v", err)
	}

	claims, err := ListClaims(ctx, result.SessionID, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("expected 0 committed claims after rejection, got %d", len(claims))
	}
}

// Stock is shared system-wide: a car committed in one session blocks the
// only unit for every other session.
func TestSubmitBatchStockSharedAcrossSessions(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	first, err := StartSession(ctx, repo, repo, fixedRand{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := StartSession(ctx, repo, repo, fixedRand{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := SubmitBatch(ctx, first.SessionID, []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "car"},
	}, repo, repo); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = SubmitBatch(ctx, second.SessionID, []domain.ClaimRequest{
		{Participant: "p2", DestinationID: "y", VehicleID: "car"},
	}, repo, repo)

	var unavailable *domain.VehicleUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected VehicleUnavailableError, got %v", err)
	}
}

// N concurrent batches race for the last unit of a vehicle class; exactly
// one may win.
func TestSubmitBatchConcurrentStockConservation(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	const racers = 8
	sessions := make([]string, racers)
	for i := range sessions {
		result, err := StartSession(ctx, repo, repo, fixedRand{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sessions[i] = result.SessionID
	}

	var wg sync.WaitGroup
	wins := make(chan struct{}, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			_, err := SubmitBatch(ctx, sessionID, []domain.ClaimRequest{
				{Participant: "p", DestinationID: "x", VehicleID: "car"},
			}, repo, repo)
			if err == nil {
				wins <- struct{}{}
				return
			}
			var unavailable *domain.VehicleUnavailableError
			if !errors.As(err, &unavailable) {
				t.Errorf("loser got %v, want VehicleUnavailableError", err)
			}
		}(sessions[i])
	}
	wg.Wait()
	close(wins)

	won := 0
	for range wins {
		won++
	}
	if won != 1 {
		t.Fatalf("exactly one racer should win the last car, got %d", won)
	}

	usage, err := repo.VehicleUsage(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage["car"] != 1 {
		t.Fatalf("committed car claims = %d, want 1", usage["car"])
	}
}

func TestValidateBatchAdvisory(t *testing.T) {
	repo := testRepo()
	ctx := context.Background()

	result, err := StartSession(ctx, repo, repo, fixedRand{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = ValidateBatch(ctx, result.SessionID, []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
	}, repo, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Advisory validation must not commit anything.
	claims, err := ListClaims(ctx, result.SessionID, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("validation committed %d claims", len(claims))
	}
}
