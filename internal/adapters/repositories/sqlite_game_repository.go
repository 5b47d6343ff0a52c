package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"fugitive-hunt-service/internal/domain"
	"fugitive-hunt-service/internal/platform/obs"
	"time"
)

// querier is satisfied by *sql.DB and *sql.Tx so the snapshot readers can
// run both standalone and inside a commit transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLite-backed implementation of the GameStore port.
//
// SQLite allows a single writer at a time; the caller should cap the pool at
// one open connection (see cmd/server) so commit and resolve transactions
// are serialized rather than failing with SQLITE_BUSY under contention.
type SqliteGameRepository struct{ DB *sql.DB }

func NewSqliteGameRepository(db *sql.DB) *SqliteGameRepository {
	return &SqliteGameRepository{DB: db}
}

func (s *SqliteGameRepository) CreateSession(ctx context.Context, session *domain.Session) (err error) {
	defer obs.Time(ctx, "store.CreateSession")(&err)

	if s.DB == nil {
		return errors.New("sqlite game repository: DB is nil")
	}

	query := `
	INSERT INTO sessions (
		session_id,
		hidden_destination_id,
		created_at
	)
	VALUES (?, ?, ?);
	`
	if _, err := s.DB.ExecContext(ctx, query, session.SessionID, session.HiddenDestinationID, session.CreatedAt); err != nil {
		return fmt.Errorf("create session: insert session_id=%q: %w", session.SessionID, err)
	}

	return nil
}

func (s *SqliteGameRepository) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	if s.DB == nil {
		return false, errors.New("sqlite game repository: DB is nil")
	}

	return sessionExists(ctx, s.DB, sessionID)
}

func (s *SqliteGameRepository) VehicleUsage(ctx context.Context) (map[string]int, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite game repository: DB is nil")
	}

	return vehicleUsage(ctx, s.DB)
}

func (s *SqliteGameRepository) SessionDestinations(ctx context.Context, sessionID string) (map[string]bool, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite game repository: DB is nil")
	}

	return sessionDestinations(ctx, s.DB, sessionID)
}

// CommitBatch persists an allocation batch as one transaction. Every
// invariant is re-checked against committed state inside the transaction,
// so a batch that validated cleanly can still lose the race here and abort
// with the same violation taxonomy. Either all claims land or none do.
func (s *SqliteGameRepository) CommitBatch(
	ctx context.Context,
	sessionID string,
	batch []domain.ClaimRequest,
) (_ []*domain.Claim, err error) {
	defer obs.Time(ctx, "store.CommitBatch")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite game repository: DB is nil")
	}
	if len(batch) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("commit batch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exists, err := sessionExists(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	destIndex, vehicleIndex, err := catalogIndex(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	taken, err := sessionDestinations(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	usage, err := vehicleUsage(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	if err := domain.ValidateBatch(batch, destIndex, vehicleIndex, taken, usage); err != nil {
		return nil, err
	}

	insertQuery := `
	INSERT INTO claims (
		session_id,
		participant,
		destination_id,
		vehicle_id
	)
	VALUES (?, ?, ?, ?);
	`
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return nil, fmt.Errorf("commit batch: prepare insert: %w", err)
	}
	defer stmt.Close()

	claims := make([]*domain.Claim, 0, len(batch))
	for _, c := range batch {
		res, err := stmt.ExecContext(ctx, sessionID, c.Participant, c.DestinationID, c.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("commit batch: insert claim participant=%q: %w", c.Participant, err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("commit batch: claim id participant=%q: %w", c.Participant, err)
		}

		claims = append(claims, &domain.Claim{
			ClaimID:       id,
			SessionID:     sessionID,
			Participant:   c.Participant,
			DestinationID: c.DestinationID,
			VehicleID:     c.VehicleID,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: commit tx: %w", err)
	}

	return claims, nil
}

func (s *SqliteGameRepository) ListClaims(ctx context.Context, sessionID string) ([]*domain.Claim, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite game repository: DB is nil")
	}

	return listClaims(ctx, s.DB, sessionID)
}

// ResolveSession reads the hidden destination and the committed claims,
// computes the outcome, and deletes all session state in one transaction.
// Of two concurrent resolvers, the loser finds the session row gone and
// fails with domain.ErrSessionNotFound.
func (s *SqliteGameRepository) ResolveSession(ctx context.Context, sessionID string) (_ *domain.Outcome, err error) {
	defer obs.Time(ctx, "store.ResolveSession")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite game repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve session: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var hidden string
	selectQuery := `SELECT hidden_destination_id FROM sessions WHERE session_id = ?;`
	if err := tx.QueryRowContext(ctx, selectQuery, sessionID).Scan(&hidden); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("resolve session: read session: %w", err)
	}

	claims, err := listClaims(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	outcome := domain.ResolveOutcome(hidden, claims)

	if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE session_id = ?;`, sessionID); err != nil {
		return nil, fmt.Errorf("resolve session: delete claims: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?;`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: delete session: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("resolve session: rows affected: %w", err)
	}
	if deleted == 0 {
		// A concurrent resolver got here first.
		return nil, domain.ErrSessionNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("resolve session: commit tx: %w", err)
	}

	return &outcome, nil
}

// PurgeSessionsBefore removes sessions created before the cutoff along with
// their claims. Used by the reaping sweep for rounds nobody resolved.
func (s *SqliteGameRepository) PurgeSessionsBefore(ctx context.Context, cutoff time.Time) (_ int, err error) {
	defer obs.Time(ctx, "store.PurgeSessionsBefore")(&err)

	if s.DB == nil {
		return 0, errors.New("sqlite game repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteClaimsQuery := `
	DELETE FROM claims
	WHERE session_id IN (
		SELECT session_id FROM sessions WHERE created_at < ?
	);
	`
	if _, err := tx.ExecContext(ctx, deleteClaimsQuery, cutoff); err != nil {
		return 0, fmt.Errorf("purge sessions: delete claims: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: delete sessions: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge sessions: rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("purge sessions: commit tx: %w", err)
	}

	return int(purged), nil
}

// Shared snapshot readers, usable standalone or inside a transaction.

func sessionExists(ctx context.Context, q querier, sessionID string) (bool, error) {
	var n int
	query := `SELECT COUNT(*) FROM sessions WHERE session_id = ?;`
	if err := q.QueryRowContext(ctx, query, sessionID).Scan(&n); err != nil {
		return false, fmt.Errorf("session exists: query sessions table: %w", err)
	}

	return n > 0, nil
}

func vehicleUsage(ctx context.Context, q querier) (map[string]int, error) {
	query := `
	SELECT vehicle_id, COUNT(*)
	FROM claims
	GROUP BY vehicle_id;
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vehicle usage: query claims table: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]int, 8)
	for rows.Next() {
		var vehicleID string
		var count int
		if err := rows.Scan(&vehicleID, &count); err != nil {
			return nil, fmt.Errorf("vehicle usage: scan row: %w", err)
		}
		usage[vehicleID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vehicle usage: row iteration: %w", err)
	}

	return usage, nil
}

func sessionDestinations(ctx context.Context, q querier, sessionID string) (map[string]bool, error) {
	query := `SELECT destination_id FROM claims WHERE session_id = ?;`
	rows, err := q.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session destinations: query claims table: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]bool, 8)
	for rows.Next() {
		var destinationID string
		if err := rows.Scan(&destinationID); err != nil {
			return nil, fmt.Errorf("session destinations: scan row: %w", err)
		}
		taken[destinationID] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session destinations: row iteration: %w", err)
	}

	return taken, nil
}

func listClaims(ctx context.Context, q querier, sessionID string) ([]*domain.Claim, error) {
	query := `
	SELECT
		claim_id,
		session_id,
		participant,
		destination_id,
		vehicle_id
	FROM claims
	WHERE session_id = ?
	ORDER BY claim_id;
	`
	rows, err := q.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list claims: query claims table: %w", err)
	}
	defer rows.Close()

	claims := make([]*domain.Claim, 0, 8)
	for rows.Next() {
		var c domain.Claim
		if err := rows.Scan(&c.ClaimID, &c.SessionID, &c.Participant, &c.DestinationID, &c.VehicleID); err != nil {
			return nil, fmt.Errorf("list claims: scan row: %w", err)
		}
		claims = append(claims, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list claims: row iteration: %w", err)
	}

	return claims, nil
}

func catalogIndex(ctx context.Context, q querier) (map[string]*domain.Destination, map[string]*domain.VehicleClass, error) {
	destRows, err := q.QueryContext(ctx, `SELECT destination_id, name, distance FROM destinations;`)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog index: query destinations table: %w", err)
	}
	dests, err := scanDestinations(destRows)
	destRows.Close()
	if err != nil {
		return nil, nil, err
	}

	vehicleRows, err := q.QueryContext(ctx, `SELECT vehicle_id, type, operating_range, total_stock FROM vehicles;`)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog index: query vehicles table: %w", err)
	}
	vehicles, err := scanVehicles(vehicleRows)
	vehicleRows.Close()
	if err != nil {
		return nil, nil, err
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
