package store

import (
	"errors"

	sqlite "modernc.org/sqlite"
)

// ErrConflict reports a unique-constraint violation on insert. For session
// tokens this should never happen under correct generation; callers retry
// once with a fresh token and then give up.
var ErrConflict = errors.New("store: conflict")

// SQLite extended result codes for primary-key and unique violations.
const (
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

func isConflict(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqliteConstraintPrimaryKey || se.Code() == sqliteConstraintUnique
	}
	return false
}
