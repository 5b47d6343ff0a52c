package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres database schema.
func InitSchemaSQL(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
		CREATE TABLE IF NOT EXISTS destinations (
			destination_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			distance INTEGER NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS vehicles (
			vehicle_id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			operating_range INTEGER NOT NULL,
			total_stock INTEGER NOT NULL CHECK (total_stock >= 0)
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			hidden_destination_id TEXT NOT NULL REFERENCES destinations(destination_id),
			created_at TIMESTAMPTZ NOT NULL
		);
		`,
		`
		CREATE TABLE IF NOT EXISTS claims (
			claim_id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL REFERENCES sessions(session_id),
			participant TEXT NOT NULL,
			destination_id TEXT NOT NULL REFERENCES destinations(destination_id),
			vehicle_id TEXT NOT NULL REFERENCES vehicles(vehicle_id),
			UNIQUE (session_id, destination_id)
		);
		`,
		`
		CREATE INDEX IF NOT EXISTS idx_claims_vehicle
		ON claims(vehicle_id);
		`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the Postgres catalog tables from a JSON file.
func SeedFromJSONSQL(db *sql.DB, jsonPath string) error {
	seed, err := loadCatalogSeed(jsonPath)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed catalog: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	destQuery := `
	INSERT INTO destinations (destination_id, name, distance)
	VALUES ($1, $2, $3)
	ON CONFLICT (destination_id) DO UPDATE
	SET name = EXCLUDED.name,
		distance = EXCLUDED.distance;
	`
	destStmt, err := tx.Prepare(destQuery)
	if err != nil {
		return fmt.Errorf("seed catalog: prepare destination insert: %w", err)
	}
	defer destStmt.Close()

	for _, d := range seed.Destinations {
		if _, err := destStmt.Exec(d.DestinationID, d.Name, d.Distance); err != nil {
			return fmt.Errorf("seed catalog: insert destination_id=%q: %w", d.DestinationID, err)
		}
	}

	vehicleQuery := `
	INSERT INTO vehicles (vehicle_id, type, operating_range, total_stock)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (vehicle_id) DO UPDATE
	SET type = EXCLUDED.type,
		operating_range = EXCLUDED.operating_range,
		total_stock = EXCLUDED.total_stock;
	`
	vehicleStmt, err := tx.Prepare(vehicleQuery)
	if err != nil {
		return fmt.Errorf("seed catalog: prepare vehicle insert: %w", err)
	}
	defer vehicleStmt.Close()

	for _, v := range seed.Vehicles {
		if _, err := vehicleStmt.Exec(v.VehicleID, v.Type, v.Range, v.TotalStock); err != nil {
			return fmt.Errorf("seed catalog: insert vehicle_id=%q: %w", v.VehicleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed catalog: commit tx: %w", err)
	}

	return nil
}
