package directory

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// sqliteConstraintError reports whether err is a mattn/go-sqlite3 error
// whose primary result code is SQLITE_CONSTRAINT, as for a
// duplicate-username insert (spec.md §4.5 step 3). The extended code is
// not inspected, so any constraint kind matches.
func sqliteConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.Code == sqlite3.ErrConstraint
}
