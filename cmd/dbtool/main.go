package main

import (
	"database/sql"
	"fmt"
	"fugitive-hunt-service/internal/adapters/repositories"
	"fugitive-hunt-service/internal/config"
	"fugitive-hunt-service/internal/platform/db"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool initializes the schema and seeds the catalog for whichever backend
// the environment selects, so deploys do not depend on server startup.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()

		log.Println("Initializing postgres schema...")
		if err := repositories.InitSchemaSQL(conn); err != nil {
			log.Fatalf("schema initialization failed: %v", err)
		}
		log.Println("Schema ready.")

		log.Println("Seeding catalog...")
		if err := repositories.SeedFromJSONSQL(conn, cfg.SeedPath); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		log.Println("Seeding complete.")
		return
	}

	conn, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", cfg.DBPath))
	if err != nil {
		log.Fatalf("open sqlite database %q: %v", cfg.DBPath, err)
	}
	defer conn.Close()

	log.Println("Initializing sqlite schema...")
	if err := repositories.InitSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding catalog...")
	if err := repositories.SeedFromJSON(conn, cfg.SeedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
