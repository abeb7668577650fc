package postgres

import (
	"context"
	"database/sql"
	"time"

	"birthday-reminders/internal/ports/storage"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = storage.ErrNotFound
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not open postgres")
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "could not ping postgres")
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS birthdays (
	id            TEXT PRIMARY KEY,
	owner_user_id TEXT NOT NULL,
	name          TEXT NOT NULL,
	relationship  TEXT NOT NULL DEFAULT '',
	bdate         TEXT NOT NULL,
	image_url     TEXT NOT NULL DEFAULT '',
	memo          TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS birthdays_owner_created_idx ON birthdays (owner_user_id, created_at);
`

// Migrate crea el esquema si no existe. bdate es TEXT a propósito: el motor
// de ranking tolera fechas inválidas y no queremos que la DB las rechace al migrar datos viejos.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "could not apply schema")
	}
	return nil
}
