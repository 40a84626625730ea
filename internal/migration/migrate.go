package migration

import (
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

// Embed SQL files from the local migrations folder
//
//go:embed migrations/*.sql
var embeddedMigrations embed.FS

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msg(fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msg(fmt.Sprintf(format, v...))
}

// RunMigrations applies all pending migrations against the campwatch schema.
func RunMigrations(dbURL string, logger zerolog.Logger) error {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("failed to connect to the database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS campwatch"); err != nil {
		return fmt.Errorf("failed to create schema campwatch: %w", err)
	}

	if _, err := db.Exec("SET search_path TO campwatch"); err != nil {
		return fmt.Errorf("failed to set search path: %w", err)
	}

	goose.SetBaseFS(embeddedMigrations)
	goose.SetTableName("campwatch.goose_db_version")
	goose.SetLogger(gooseLogger{log: logger})

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("Migrations completed successfully")
	return nil
}
