// cmd/dbtools/migrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/codr1/Padelicious/internal/db"
)

func main() {
	var (
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", "", "Path to a migrations directory (defaults to the migrations built into the server)")
		command        = flag.String("command", "", "Command to run (up, down, version, force)")
		forceVersion   = flag.Int("version", -1, "Version to record with the force command")
	)
	flag.Parse()

	if *dbPath == "" || *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	m, err := openMigrator(*dbPath, *migrationsPath)
	if err != nil {
		log.Fatalf("Migration init failed: %v", err)
	}
	defer m.Close()

	// Execute command
	switch *command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration up failed: %v", err)
		}
	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Migration down failed: %v", err)
		}
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatalf("Get version failed: %v", err)
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)
	case "force":
		if *forceVersion < 0 {
			log.Fatalf("force requires -version")
		}
		if err := m.Force(*forceVersion); err != nil {
			log.Fatalf("Force version failed: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}

func openMigrator(dbPath, migrationsPath string) (*migrate.Migrate, error) {
	if migrationsPath == "" {
		return db.OpenMigrator(dbPath)
	}
	return migrate.New(
		fmt.Sprintf("file://%s", migrationsPath),
		fmt.Sprintf("sqlite3://%s", dbPath),
	)
}
