package main

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

// Applies schema migrations from cmd/migrate/migrations against DB_ADDR.
//
// Usage:
//
//	go run ./cmd/migrate up
//	go run ./cmd/migrate down [steps]
//	go run ./cmd/migrate version
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	addr := os.Getenv("DB_ADDR")
	if addr == "" {
		log.Fatal("DB_ADDR is required")
	}

	if len(os.Args) < 2 {
		log.Fatal("usage: migrate up|down [steps]|version")
	}

	migrationsPath, err := filepath.Abs("cmd/migrate/migrations")
	if err != nil {
		log.Fatalf("resolving migrations path: %v", err)
	}

	m, err := migrate.New("file://"+migrationsPath, addr)
	if err != nil {
		log.Fatalf("creating migrate instance: %v", err)
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrating up: %v", err)
		}
		log.Println("migrations applied")
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			steps, err = strconv.Atoi(os.Args[2])
			if err != nil {
				log.Fatalf("invalid steps: %v", err)
			}
		}
		if err := m.Steps(-steps); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("migrating down: %v", err)
		}
		log.Println("migrations rolled back")
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("reading version: %v", err)
		}
		log.Printf("version=%d dirty=%v", version, dirty)
	default:
		log.Fatalf("unknown command %q", os.Args[1])
	}
}
