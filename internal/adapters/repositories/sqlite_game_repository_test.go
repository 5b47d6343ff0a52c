package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fugitive-hunt-service/internal/domain"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// Each test gets its own in-memory database. A single connection keeps the
// shared cache alive and serializes writers the same way cmd/server does.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	seedTestCatalog(t, db)
	return db
}

func seedTestCatalog(t *testing.T, db *sql.DB) {
	t.Helper()

	dests := []struct {
		id, name string
		distance int
	}{
		{"x", "X", 10},
		{"y", "Y", 20},
	}
	for _, d := range dests {
		if _, err := db.Exec(
			`INSERT INTO destinations (destination_id, name, distance) VALUES (?, ?, ?);`,
			d.id, d.name, d.distance,
		); err != nil {
			t.Fatalf("seed destination %q: %v", d.id, err)
		}
	}

	vehicles := []struct {
		id, typ    string
		rng, stock int
	}{
		{"bike", "Bike", 25, 2},
		{"car", "Car", 200, 1},
	}
	for _, v := range vehicles {
		if _, err := db.Exec(
			`INSERT INTO vehicles (vehicle_id, type, operating_range, total_stock) VALUES (?, ?, ?, ?);`,
			v.id, v.typ, v.rng, v.stock,
		); err != nil {
			t.Fatalf("seed vehicle %q: %v", v.id, err)
		}
	}
}

func createTestSession(t *testing.T, repo *SqliteGameRepository, id, hidden string) {
	t.Helper()

	err := repo.CreateSession(context.Background(), &domain.Session{
		SessionID:           id,
		HiddenDestinationID: hidden,
		CreatedAt:           time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create session %q: %v", id, err)
	}
}

func TestSqliteCommitAndListClaims(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)
	ctx := context.Background()

	createTestSession(t, repo, "s1", "y")

	committed, err := repo.CommitBatch(ctx, "s1", []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
		{Participant: "p2", DestinationID: "y", VehicleID: "car"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(committed) != 2 {
		t.Fatalf("expected 2 committed claims, got %d", len(committed))
	}
	if committed[0].ClaimID == 0 {
		t.Fatalf("claims must be stamped with store-assigned ids")
	}

	claims, err := repo.ListClaims(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims) != 2 {
		t.Fatalf("expected 2 claims listed, got %d", len(claims))
	}
	if claims[0].Participant != "p1" || claims[1].Participant != "p2" {
		t.Fatalf("claims out of commit order: %+v", claims)
	}
}

func TestSqliteCommitUnknownSession(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)

	_, err := repo.CommitBatch(context.Background(), "missing", []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
	})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

// An invalid entry aborts the whole batch: nothing is persisted.
func TestSqliteCommitAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)
	ctx := context.Background()

	createTestSession(t, repo, "s1", "x")

	_, err := repo.CommitBatch(ctx, "s1", []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
		{Participant: "p2", DestinationID: "y", VehicleID: "bike"}, // 25 < 40
	})

	var short *domain.InsufficientRangeError
	if !errors.As(err, &short) {
		t.Fatalf("expected InsufficientRangeError, got %v", err)
	}

	claims, err := repo.ListClaims(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("expected 0 claims after aborted batch, got %d", len(claims))
	}
}

// The second batch into the same session may not reuse a committed
// destination.
func TestSqliteCommitDuplicateAcrossBatches(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)
	ctx := context.Background()

	createTestSession(t, repo, "s1", "x")

	if _, err := repo.CommitBatch(ctx, "s1", []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := repo.CommitBatch(ctx, "s1", []domain.ClaimRequest{
		{Participant: "p2", DestinationID: "x", VehicleID: "bike"},
	})

	var dup *domain.DuplicateDestinationError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateDestinationError, got %v", err)
	}
}

// Stock is global: two sessions fight over the single car and only one
// commit lands, even when the batches run concurrently.
func TestSqliteCommitStockRace(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)
	ctx := context.Background()

	const racers = 4
	for i := 0; i < racers; i++ {
		createTestSession(t, repo, sessionName(i), "x")
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins, losses := 0, 0
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			_, err := repo.CommitBatch(ctx, sessionID, []domain.ClaimRequest{
				{Participant: "p", DestinationID: "x", VehicleID: "car"},
			})

			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			var unavailable *domain.VehicleUnavailableError
			if errors.As(err, &unavailable) {
				losses++
				return
			}
			t.Errorf("unexpected error: %v", err)
		}(sessionName(i))
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("exactly one commit should win the last car, got %d", wins)
	}
	if losses != racers-1 {
		t.Fatalf("losses = %d, want %d", losses, racers-1)
	}

	usage, err := repo.VehicleUsage(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage["car"] != 1 {
		t.Fatalf("committed car claims = %d, want 1", usage["car"])
	}
}

func sessionName(i int) string {
	return "s" + string(rune('a'+i))
}

func TestSqliteResolveCapturedAndPurged(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)
	ctx := context.Background()

	createTestSession(t, repo, "s1", "y")

	if _, err := repo.CommitBatch(ctx, "s1", []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
		{Participant: "p2", DestinationID: "y", VehicleID: "car"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcome, err := repo.ResolveSession(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Captured {
		t.Fatalf("expected captured outcome")
	}
	if len(outcome.Winners) != 1 || outcome.Winners[0].Participant != "p2" {
		t.Fatalf("unexpected winners: %+v", outcome.Winners)
	}

	// Resolution frees the stock the session held.
	usage, err := repo.VehicleUsage(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage["car"] != 0 || usage["bike"] != 0 {
		t.Fatalf("usage not released after resolve: %v", usage)
	}

	_, err = repo.ResolveSession(ctx, "s1")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("second resolve: expected ErrSessionNotFound, got %v", err)
	}
}

func TestSqliteResolveWithoutClaims(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)

	createTestSession(t, repo, "s1", "x")

	outcome, err := repo.ResolveSession(context.Background(), "s1")
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

func TestSqlitePurgeSessionsBefore(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteGameRepository(db)
	ctx := context.Background()

	old := &domain.Session{
		SessionID:           "old",
		HiddenDestinationID: "x",
		CreatedAt:           time.Now().UTC().Add(-2 * time.Hour),
	}
	if err := repo.CreateSession(ctx, old); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if _, err := repo.CommitBatch(ctx, "old", []domain.ClaimRequest{
		{Participant: "p1", DestinationID: "x", VehicleID: "bike"},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	createTestSession(t, repo, "fresh", "y")

	purged, err := repo.PurgeSessionsBefore(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if purged != 1 {
		t.Fatalf("purged = %d, want 1", purged)
	}

	exists, err := repo.SessionExists(ctx, "old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatalf("old session should be gone")
	}

	exists, err = repo.SessionExists(ctx, "fresh")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("fresh session should survive the sweep")
	}

	usage, err := repo.VehicleUsage(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if usage["bike"] != 0 {
		t.Fatalf("purged session's claims should release stock, usage=%v", usage)
	}
}

func TestSqliteCatalogRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewSqliteCatalogRepository(db)
	ctx := context.Background()

	dests, err := repo.ListDestinations(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dests) != 2 {
		t.Fatalf("expected 2 destinations, got %d", len(dests))
	}
	if dests[0].DestinationID != "x" {
		t.Fatalf("expected nearest destination first, got %q", dests[0].DestinationID)
	}

	vehicles, err := repo.ListVehicles(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vehicles) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(vehicles))
	}
	if vehicles[0].VehicleID != "bike" || vehicles[0].Range != 25 {
		t.Fatalf("unexpected first vehicle: %+v", vehicles[0])
	}
}
