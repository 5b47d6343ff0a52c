package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDestinationsQuery := `
	CREATE TABLE IF NOT EXISTS destinations (
		destination_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		distance INTEGER NOT NULL
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		vehicle_id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		operating_range INTEGER NOT NULL,
		total_stock INTEGER NOT NULL CHECK (total_stock >= 0)
	);
	`

	createSessionsQuery := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		hidden_destination_id TEXT NOT NULL REFERENCES destinations(destination_id),
		created_at TIMESTAMP NOT NULL
	);
	`

	createClaimsQuery := `
	CREATE TABLE IF NOT EXISTS claims (
		claim_id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(session_id),
		participant TEXT NOT NULL,
		destination_id TEXT NOT NULL REFERENCES destinations(destination_id),
		vehicle_id TEXT NOT NULL REFERENCES vehicles(vehicle_id),
		UNIQUE (session_id, destination_id)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_claims_vehicle
	ON claims(vehicle_id);
	`

	statements := []string{
		createDestinationsQuery,
		createVehiclesQuery,
		createSessionsQuery,
		createClaimsQuery,
		createIndexQuery,
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

type DestinationSeed struct {
	DestinationID string `json:"destination_id"`
	Name          string `json:"name"`
	Distance      int    `json:"distance"`
}

type VehicleSeed struct {
	VehicleID  string `json:"vehicle_id"`
	Type       string `json:"type"`
	Range      int    `json:"range"`
	TotalStock int    `json:"total_stock"`
}

type CatalogSeed struct {
	Destinations []DestinationSeed `json:"destinations"`
	Vehicles     []VehicleSeed     `json:"vehicles"`
}

// Populate the catalog tables from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
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
	INSERT OR REPLACE INTO destinations (
		destination_id,
		name,
		distance
	)
	VALUES (?, ?, ?);
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
	INSERT OR REPLACE INTO vehicles (
		vehicle_id,
		type,
		operating_range,
		total_stock
	)
	VALUES (?, ?, ?, ?);
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

func loadCatalogSeed(jsonPath string) (*CatalogSeed, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed catalog: read %q: %w", jsonPath, err)
	}

	var seed CatalogSeed
	if err := json.Unmarshal(bytes, &seed); err != nil {
		return nil, fmt.Errorf("seed catalog: parse json: %w", err)
	}

	for i, d := range seed.Destinations {
		if strings.TrimSpace(d.DestinationID) == "" {
			return nil, fmt.Errorf("seed catalog: destination at index %d: id cannot be empty", i+1)
		}
		if strings.TrimSpace(d.Name) == "" {
			return nil, fmt.Errorf("seed catalog: destination at index %d: name cannot be empty", i+1)
		}
		if d.Distance <= 0 {
			return nil, fmt.Errorf("seed catalog: destination %q: invalid distance %d", d.DestinationID, d.Distance)
		}
	}

	for i, v := range seed.Vehicles {
		if strings.TrimSpace(v.VehicleID) == "" {
			return nil, fmt.Errorf("seed catalog: vehicle at index %d: id cannot be empty", i+1)
		}
		if v.Range <= 0 {
			return nil, fmt.Errorf("seed catalog: vehicle %q: invalid range %d", v.VehicleID, v.Range)
		}
		if v.TotalStock < 0 {
			return nil, fmt.Errorf("seed catalog: vehicle %q: invalid stock %d", v.VehicleID, v.TotalStock)
		}
	}

	return &seed, nil
}
