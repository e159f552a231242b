package storage

import (
	"context"
	"database/sql"
	goerrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/migrations"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Store is the SQL implementation of Provider. Queries are written with
// "?" placeholders and rebound for the active driver.
type Store struct {
	driver string
	dsn    string
	open   func() (*sql.DB, error)
	db     *sql.DB
	q      querier
	inTx   bool
}

var _ Provider = (*Store)(nil)

func (s *Store) Driver() string        { return s.driver }
func (s *Store) GetConfigPath() string { return s.dsn }

func (s *Store) connect() error {
	db, err := s.open()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	s.db = db
	s.q = db
	return nil
}

func (s *Store) Init() error {
	if s.db != nil {
		return nil
	}
	if s.driver == DriverSQLite {
		dir := filepath.Dir(s.dsn)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if err := s.connect(); err != nil {
		return err
	}
	if s.driver == DriverPostgres {
		if err := s.ensureSchema(); err != nil {
			s.Close()
			return err
		}
	}
	if err := s.runMigrations(); err != nil {
		s.Close()
		return err
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}
	if s.driver == DriverSQLite {
		if _, err := os.Stat(s.dsn); os.IsNotExist(err) {
			return ErrNotInitialized
		}
	}

	if err := s.connect(); err != nil {
		return err
	}

	runner, err := s.migrationRunner()
	if err != nil {
		s.Close()
		return err
	}
	if err := runner.ValidateVersion(); err != nil {
		s.Close()
		return err
	}
	// bring older files forward so every command sees the current schema
	if _, err := runner.Apply(); err != nil {
		s.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) migrationRunner() (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, s.driver)
	if err != nil {
		return nil, fmt.Errorf("failed to access %s migrations: %w", s.driver, err)
	}
	return migration.NewRunner(s.db, subFS), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.migrationRunner()
	if err != nil {
		return err
	}
	if _, err := runner.Apply(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// SchemaStatus reports the applied and latest known schema versions
func (s *Store) SchemaStatus() (current, latest int, err error) {
	if s.db == nil {
		return 0, 0, errors.ErrStorageUnavailable
	}
	runner, err := s.migrationRunner()
	if err != nil {
		return 0, 0, err
	}
	if current, err = runner.CurrentVersion(); err != nil {
		return 0, 0, err
	}
	if latest, err = runner.LatestVersion(); err != nil {
		return 0, 0, err
	}
	return current, latest, nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Store) Close() error {
	if s.inTx {
		return nil
	}
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.q = nil
	logger.Debug("Closed store", "driver", s.driver)
	return err
}

func (s *Store) InTx(fn func(Provider) error) error {
	if s.inTx {
		return fn(s)
	}
	if s.db == nil {
		return errors.ErrStorageUnavailable
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	child := &Store{driver: s.driver, dsn: s.dsn, db: s.db, q: tx, inTx: true}
	if err := fn(child); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

func (s *Store) conn() (querier, error) {
	if s.q == nil {
		return nil, errors.ErrStorageUnavailable
	}
	return s.q, nil
}

func (s *Store) exec(query string, args ...any) (sql.Result, error) {
	q, err := s.conn()
	if err != nil {
		return nil, err
	}
	return q.Exec(s.rebind(query), args...)
}

func (s *Store) query(query string, args ...any) (*sql.Rows, error) {
	q, err := s.conn()
	if err != nil {
		return nil, err
	}
	return q.Query(s.rebind(query), args...)
}

// queryRow scans a single row into dest
func (s *Store) queryRow(query string, args []any, dest ...any) error {
	q, err := s.conn()
	if err != nil {
		return err
	}
	return q.QueryRow(s.rebind(query), args...).Scan(dest...)
}

// rebind turns "?" placeholders into "$n" for PostgreSQL
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// notFound maps sql.ErrNoRows to the given domain error
func notFound(err error, target error) error {
	if goerrors.Is(err, sql.ErrNoRows) {
		return target
	}
	return err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if isPostgresUniqueViolation(err) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
