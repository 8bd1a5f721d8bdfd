// Package testutil provides an in-memory SQLite database with the same
// tables as the MySQL migrations, for repository and service tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE accounts (
    id            TEXT     NOT NULL PRIMARY KEY,
    display_name  TEXT     NOT NULL,
    phone         TEXT     NOT NULL UNIQUE,
    password_hash TEXT     NOT NULL,
    role          TEXT     NOT NULL,
    location      TEXT     NULL COLLATE BINARY,
    created_at    DATETIME NOT NULL
);
CREATE TABLE bookings (
    id                TEXT     NOT NULL PRIMARY KEY,
    user_id           TEXT     NOT NULL REFERENCES accounts (id),
    test_ref          TEXT     NOT NULL,
    selected_location TEXT     NOT NULL COLLATE BINARY,
    payment_method    TEXT     NOT NULL,
    payment_status    TEXT     NOT NULL,
    transaction_id    TEXT     NULL,
    report_url        TEXT     NULL,
    status            TEXT     NOT NULL DEFAULT 'pending',
    created_at        DATETIME NOT NULL,
    updated_at        DATETIME NOT NULL
);
CREATE INDEX idx_bookings_user ON bookings (user_id, created_at);
CREATE INDEX idx_bookings_location ON bookings (selected_location, created_at);
`

// NewDB opens a private in-memory database, creates the schema and closes
// it when the test ends.  The pool is limited to one connection because
// every SQLite :memory: connection is a separate database.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()
	raw, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	raw.SetMaxOpenConns(1)
	db := sqlx.NewDb(raw, "sqlite3")
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
