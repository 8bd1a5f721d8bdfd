// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// depending on a particular SQL driver.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when no row matches the lookup.
var ErrNotFound = errors.New("not found")

// ErrPhoneExists is returned when an account with the same phone number
// is already stored.
var ErrPhoneExists = errors.New("phone already exists")

// ErrStatusConflict is returned when a conditional status update matched
// no row because the booking is no longer in the expected state (or, for
// a scoped update, is not at the expected location).
var ErrStatusConflict = errors.New("status conflict")

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique constraint violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	// SQLite (tests) reports constraint failures only through the message.
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
