// Package repository contains data access logic separated from HTTP handlers.
// Every query is plain database/sql with `?` placeholders so the same code
// runs against MySQL and SQLite; only the schema differs per driver.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrUserExists is returned when a username or email is already taken.
// Handlers translate it into a 400 response without saying which one.
var ErrUserExists = errors.New("username or email already exists")

// ErrUserNotFound is returned when no user row matches.
var ErrUserNotFound = errors.New("user not found")

// ErrProjectNotFound is returned when no project matches both the id and
// the calling user.  A project owned by someone else is indistinguishable
// from one that does not exist.
var ErrProjectNotFound = errors.New("project not found")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a unique constraint violation in
// either supported driver.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
