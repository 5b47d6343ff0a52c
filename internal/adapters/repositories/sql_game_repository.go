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

// SQLGameRepository is the Postgres-backed GameStore. Unlike SQLite there is
// no single-writer guarantee, so CommitBatch locks the referenced vehicle
// rows (SELECT ... FOR UPDATE) to linearize batches racing for the same
// stock, and ResolveSession locks the session row so only one resolver wins.
type SQLGameRepository struct{ DB *sql.DB }

func NewSQLGameRepository(db *sql.DB) *SQLGameRepository {
	return &SQLGameRepository{DB: db}
}

func (s *SQLGameRepository) CreateSession(ctx context.Context, session *domain.Session) (err error) {
	defer obs.Time(ctx, "store.CreateSession")(&err)

	if s.DB == nil {
		return errors.New("sql game repository: DB is nil")
	}

	query := `
	INSERT INTO sessions (session_id, hidden_destination_id, created_at)
	VALUES ($1, $2, $3);
	`
	if _, err := s.DB.ExecContext(ctx, query, session.SessionID, session.HiddenDestinationID, session.CreatedAt); err != nil {
		return fmt.Errorf("create session: insert session_id=%q: %w", session.SessionID, err)
	}

	return nil
}

func (s *SQLGameRepository) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	if s.DB == nil {
		return false, errors.New("sql game repository: DB is nil")
	}

	var n int
	query := `SELECT COUNT(*) FROM sessions WHERE session_id = $1;`
	if err := s.DB.QueryRowContext(ctx, query, sessionID).Scan(&n); err != nil {
		return false, fmt.Errorf("session exists: query sessions table: %w", err)
	}

	return n > 0, nil
}

func (s *SQLGameRepository) VehicleUsage(ctx context.Context) (map[string]int, error) {
	if s.DB == nil {
		return nil, errors.New("sql game repository: DB is nil")
	}

	return sqlVehicleUsage(ctx, s.DB)
}

func (s *SQLGameRepository) SessionDestinations(ctx context.Context, sessionID string) (map[string]bool, error) {
	if s.DB == nil {
		return nil, errors.New("sql game repository: DB is nil")
	}

	return sqlSessionDestinations(ctx, s.DB, sessionID)
}

func (s *SQLGameRepository) CommitBatch(
	ctx context.Context,
	sessionID string,
	batch []domain.ClaimRequest,
) (_ []*domain.Claim, err error) {
	defer obs.Time(ctx, "store.CommitBatch")(&err)

	if s.DB == nil {
		return nil, errors.New("sql game repository: DB is nil")
	}
	if len(batch) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("commit batch: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	existsQuery := `SELECT COUNT(*) FROM sessions WHERE session_id = $1;`
	if err := tx.QueryRowContext(ctx, existsQuery, sessionID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("commit batch: query sessions table: %w", err)
	}
	if exists == 0 {
		return nil, domain.ErrSessionNotFound
	}

	// Lock the referenced vehicle rows first. Two commits contending for
	// overlapping stock serialize on these locks, so the loser sees the
	// winner's claims when it counts usage below.
	vehicleIndex, err := sqlLockVehicles(ctx, tx, batch)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	destIndex, err := sqlDestinationIndex(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	taken, err := sqlSessionDestinations(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	usage, err := sqlVehicleUsage(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}

	if err := domain.ValidateBatch(batch, destIndex, vehicleIndex, taken, usage); err != nil {
		return nil, err
	}

	insertQuery := `
	INSERT INTO claims (session_id, participant, destination_id, vehicle_id)
	VALUES ($1, $2, $3, $4)
	RETURNING claim_id;
	`
	stmt, err := tx.PrepareContext(ctx, insertQuery)
	if err != nil {
		return nil, fmt.Errorf("commit batch: prepare insert: %w", err)
	}
	defer stmt.Close()

	claims := make([]*domain.Claim, 0, len(batch))
	for _, c := range batch {
		var id int64
		if err := stmt.QueryRowContext(ctx, sessionID, c.Participant, c.DestinationID, c.VehicleID).Scan(&id); err != nil {
			return nil, fmt.Errorf("commit batch: insert claim participant=%q: %w", c.Participant, err)
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

func (s *SQLGameRepository) ListClaims(ctx context.Context, sessionID string) ([]*domain.Claim, error) {
	if s.DB == nil {
		return nil, errors.New("sql game repository: DB is nil")
	}

	return sqlListClaims(ctx, s.DB, sessionID)
}

func (s *SQLGameRepository) ResolveSession(ctx context.Context, sessionID string) (_ *domain.Outcome, err error) {
	defer obs.Time(ctx, "store.ResolveSession")(&err)

	if s.DB == nil {
		return nil, errors.New("sql game repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve session: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// FOR UPDATE makes concurrent resolvers queue on the session row; the
	// loser unblocks after the winner's delete commits and finds no row.
	var hidden string
	selectQuery := `SELECT hidden_destination_id FROM sessions WHERE session_id = $1 FOR UPDATE;`
	if err := tx.QueryRowContext(ctx, selectQuery, sessionID).Scan(&hidden); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("resolve session: read session: %w", err)
	}

	claims, err := sqlListClaims(ctx, tx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	outcome := domain.ResolveOutcome(hidden, claims)

	if _, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE session_id = $1;`, sessionID); err != nil {
		return nil, fmt.Errorf("resolve session: delete claims: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1;`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: delete session: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("resolve session: rows affected: %w", err)
	}
	if deleted == 0 {
		return nil, domain.ErrSessionNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("resolve session: commit tx: %w", err)
	}

	return &outcome, nil
}

func (s *SQLGameRepository) PurgeSessionsBefore(ctx context.Context, cutoff time.Time) (_ int, err error) {
	defer obs.Time(ctx, "store.PurgeSessionsBefore")(&err)

	if s.DB == nil {
		return 0, errors.New("sql game repository: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteClaimsQuery := `
	DELETE FROM claims
	WHERE session_id IN (
		SELECT session_id FROM sessions WHERE created_at < $1
	);
	`
	if _, err := tx.ExecContext(ctx, deleteClaimsQuery, cutoff); err != nil {
		return 0, fmt.Errorf("purge sessions: delete claims: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE created_at < $1;`, cutoff)
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

func sqlLockVehicles(ctx context.Context, tx *sql.Tx, batch []domain.ClaimRequest) (map[string]*domain.VehicleClass, error) {
	seen := make(map[string]struct{}, len(batch))
	ids := make([]string, 0, len(batch))
	for _, c := range batch {
		if _, ok := seen[c.VehicleID]; ok {
			continue
		}
		seen[c.VehicleID] = struct{}{}
		ids = append(ids, c.VehicleID)
	}

	query := `
	SELECT vehicle_id, type, operating_range, total_stock
	FROM vehicles
	WHERE vehicle_id = ANY($1::text[])
	FOR UPDATE;
	`
	rows, err := tx.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("lock vehicles: query vehicles table: %w", err)
	}
	locked, err := scanVehicles(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	// Unlocked classes are still needed for reference validation; only the
	// contended rows require locks.
	allRows, err := tx.QueryContext(ctx, `SELECT vehicle_id, type, operating_range, total_stock FROM vehicles;`)
	if err != nil {
		return nil, fmt.Errorf("lock vehicles: query vehicles table: %w", err)
	}
	all, err := scanVehicles(allRows)
	allRows.Close()
	if err != nil {
		return nil, err
	}

	index := make(map[string]*domain.VehicleClass, len(all))
	for _, v := range all {
		index[v.VehicleID] = v
	}
	for _, v := range locked {
		index[v.VehicleID] = v
	}

	return index, nil
}

func sqlDestinationIndex(ctx context.Context, tx *sql.Tx) (map[string]*domain.Destination, error) {
	rows, err := tx.QueryContext(ctx, `SELECT destination_id, name, distance FROM destinations;`)
	if err != nil {
		return nil, fmt.Errorf("destination index: query destinations table: %w", err)
	}
	dests, err := scanDestinations(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	index := make(map[string]*domain.Destination, len(dests))
	for _, d := range dests {
		index[d.DestinationID] = d
	}

	return index, nil
}

func sqlVehicleUsage(ctx context.Context, q querier) (map[string]int, error) {
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

func sqlSessionDestinations(ctx context.Context, q querier, sessionID string) (map[string]bool, error) {
	query := `SELECT destination_id FROM claims WHERE session_id = $1;`
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

func sqlListClaims(ctx context.Context, q querier, sessionID string) ([]*domain.Claim, error) {
	query := `
	SELECT claim_id, session_id, participant, destination_id, vehicle_id
	FROM claims
	WHERE session_id = $1
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
