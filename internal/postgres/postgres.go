// Package postgres opens the backing database and owns the schema DDL.
//
// The partial unique index loans_one_open_per_book is the load-bearing
// piece: it turns a lost check-then-insert race on loan creation into a
// unique-violation error instead of a double loan.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS books (
    id         UUID PRIMARY KEY,
    title      TEXT NOT NULL,
    author     TEXT NOT NULL,
    isbn       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS books_isbn_key ON books (isbn);

CREATE TABLE IF NOT EXISTS loans (
    id             UUID PRIMARY KEY,
    book_id        UUID NOT NULL REFERENCES books (id),
    customer       TEXT NOT NULL,
    customer_email TEXT NOT NULL,
    loan_date      DATE NOT NULL,
    returned       BOOLEAN
);

CREATE UNIQUE INDEX IF NOT EXISTS loans_one_open_per_book
    ON loans (book_id) WHERE NOT COALESCE(returned, FALSE);

CREATE INDEX IF NOT EXISTS loans_open_by_date
    ON loans (loan_date) WHERE NOT COALESCE(returned, FALSE);
`

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}

// EnsureSchema applies the schema idempotently.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}
