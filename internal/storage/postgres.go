package storage

import (
	"database/sql"
	goerrors "errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
)

var (
	ErrInvalidConnectionString = goerrors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = goerrors.New("connection string must not contain a password")
)

// IsPostgresDSN reports whether the configured location is a PostgreSQL URL
func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// IsPostgresConnString reports whether dsn names a PostgreSQL server, in
// either URL or key=value form, rather than a database file.
func IsPostgresConnString(dsn string) bool {
	return IsPostgresDSN(dsn) || strings.Contains(dsn, "host=")
}

// NewPostgresStore creates a store backed by a PostgreSQL database. Tables
// live in a schema named after the application.
func NewPostgresStore(connStr string) *Store {
	connStr = withSearchPath(connStr)
	s := &Store{driver: DriverPostgres, dsn: connStr}
	s.open = func() (*sql.DB, error) {
		db, err := sql.Open("postgres", connStr)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(4)
		db.SetConnMaxLifetime(5 * time.Minute)
		return db, nil
	}
	return s
}

func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// withSearchPath pins search_path to the application schema unless the
// caller already chose one.
func withSearchPath(connStr string) string {
	if IsPostgresDSN(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			logger.Warn("Failed to parse Postgres connection string", "error", err)
			return connStr
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
		}
		return u.String()
	}
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "search_path") {
			return connStr
		}
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName
}

// ValidateConnString checks that connStr parses as a PostgreSQL
// connection string (URI or DSN) and carries no password.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}
	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}
	if HasEmbeddedCredentials(connStr) {
		return ErrEmbeddedCredentials
	}
	return nil
}

// HasEmbeddedCredentials reports whether connStr contains a password
func HasEmbeddedCredentials(connStr string) bool {
	if IsPostgresDSN(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		_, isSet := u.User.Password()
		return isSet
	}
	for _, pair := range strings.Fields(connStr) {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "password") {
			return true
		}
	}
	return false
}

func isPostgresUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return goerrors.As(err, &pqErr) && pqErr.Code == "23505"
}
