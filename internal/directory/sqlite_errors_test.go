package directory

import "github.com/mattn/go-sqlite3"

func sqliteUniqueErr() error {
	return sqlite3.Error{Code: sqlite3.ErrConstraint}
}
