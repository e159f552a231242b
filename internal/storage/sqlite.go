package storage

import (
	"database/sql"
	goerrors "errors"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/constants"
)

// ErrNotInitialized is returned by Load when the database file does not exist yet
var ErrNotInitialized = goerrors.New("storage not initialized, run 'habitual init' first")

// NewSQLiteStore creates a store backed by a single local database file
func NewSQLiteStore(path string) *Store {
	s := &Store{driver: DriverSQLite, dsn: path}
	s.open = func() (*sql.DB, error) {
		db, err := sql.Open("sqlite", sqliteDSN(path))
		if err != nil {
			return nil, err
		}
		// one writer, one file handle
		db.SetMaxOpenConns(1)
		return db, nil
	}
	return s
}

func sqliteDSN(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", constants.SQLiteBusyTimeout.Milliseconds()))
	return path + "?" + q.Encode()
}
