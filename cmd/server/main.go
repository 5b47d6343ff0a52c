package main

import (
	"context"
	"database/sql"
	"fmt"
	"fugitive-hunt-service/internal/adapters/repositories"
	"fugitive-hunt-service/internal/api"
	"fugitive-hunt-service/internal/config"
	"fugitive-hunt-service/internal/platform/db"
	"fugitive-hunt-service/internal/ports"
	"fugitive-hunt-service/internal/services"
	"log"
	"math/rand"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires a concrete store (SQLite or Postgres) behind the ports and starts
// the HTTP server plus the session reaping sweep.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var (
		conn    *sql.DB
		catalog ports.CatalogRepository
		store   ports.GameStore
	)

	if cfg.DatabaseURL != "" {
		conn, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		catalog = repositories.NewSQLCatalogRepository(conn)
		store = repositories.NewSQLGameRepository(conn)
		log.Println("Using postgres store")
	} else {
		conn, err = openSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal(err)
		}
		// Initialize schema and seed the catalog on startup for local runs.
		if err := initAndSeed(conn, cfg.SeedPath); err != nil {
			log.Fatal(err)
		}
		catalog = repositories.NewSqliteCatalogRepository(conn)
		store = repositories.NewSqliteGameRepository(conn)
		log.Printf("Using sqlite store path=%s", cfg.DBPath)
	}
	defer conn.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Rounds nobody resolves would otherwise leak forever.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go services.ReapSessions(ctx, store, cfg.SessionTTL, cfg.ReapInterval)

	router := api.NewRouter(catalog, store, rng)

	log.Printf("Server listening addr=:%s", cfg.Port)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

func openSQLite(dbPath string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath)
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	// SQLite permits one writer at a time; a single connection keeps commit
	// and resolve transactions serialized instead of surfacing SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return conn, nil
}

func initAndSeed(conn *sql.DB, seedPath string) error {
	if err := repositories.InitSchema(conn); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	if err := repositories.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}

	return nil
}
