package main

import (
	"errors"
	"flag"
	"log"

	"travel/cfg"
	"travel/pkg/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "number of migrations to apply or roll back (0 = all)")
	source := flag.String("source", "file://db/migrations", "migration source URL")
	flag.Parse()

	// ============
	// Load config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// Build Postgres DSN from config
	// ============
	pg := config.Postgres
	pgDSN := db.PostgresDSN(pg.User, pg.Password, pg.Host, pg.Port, pg.DBName, pg.SSLMode)

	// =========
	// Migrate
	// =========
	m, err := migrate.New(*source, pgDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if err := run(m, *down, *steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Println("schema is empty")
	case err != nil:
		log.Fatal(err)
	default:
		log.Printf("schema at version %d (dirty=%t)", version, dirty)
	}
}

func run(m *migrate.Migrate, down bool, steps int) error {
	switch {
	case steps > 0 && down:
		return m.Steps(-steps)
	case steps > 0:
		return m.Steps(steps)
	case down:
		return m.Down()
	default:
		return m.Up()
	}
}
