package database

import (
	"database/sql"
	"log"

	"chatd/pkg/database/migrations"

	"github.com/pressly/goose/v3"
)

// Migrate applies all pending migrations from the embedded FS, including the
// notify trigger functions the event listener depends on.
func Migrate(db *sql.DB) {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("[DB] goose dialect err: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("[DB] migrate failed: %v", err)
	}
	log.Println("[DB] schema up to date")
}
