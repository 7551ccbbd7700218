package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/homecase-signup/internal/domain"
	"github.com/mkrupp/homecase-signup/internal/infra/logging"
)

// Credential kinds stored in the credentials table.
const (
	KindTakenUsername    = "taken_username"
	KindTakenPassword    = "taken_password"
	KindInsecurePassword = "insecure_password"
)

// ErrDuplicateCredential is returned when a list holds the same value twice.
var ErrDuplicateCredential = errors.New("duplicate credential")

// SQLiteSourceConfig holds configuration for the SQLite dataset source.
type SQLiteSourceConfig struct {
	// DatabasePath is the filesystem path to the SQLite database file
	DatabasePath string `env:"DATABASE_PATH" default:"var/storage/dataset.db"`
}

// SQLiteSource keeps a dataset in a local SQLite database.
// It serves as a Source and can be (re)seeded with Replace.
type SQLiteSource struct {
	db        *sql.DB
	log       logging.Logger
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes
}

var _ Source = (*SQLiteSource)(nil)

// SQLiteSourceFactory creates a factory function that returns a new SQLiteSource.
func SQLiteSourceFactory(cfg SQLiteSourceConfig) SourceFactory {
	return func() (Source, error) {
		return NewSQLiteSource(cfg)
	}
}

// NewSQLiteSource creates a new SQLiteSource with the given configuration.
// It initializes the database connection and creates the schema if needed.
// Returns an error if database connection or initialization fails; the
// connection is closed again in that case.
func NewSQLiteSource(cfg SQLiteSourceConfig) (_ *SQLiteSource, err error) {
	log := logging.GetLogger("repo.dataset.sqlite_source").With(
		logging.Group("db", "path", cfg.DatabasePath),
	)

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	defer func() {
		if err != nil {
			_ = db.Close()
		}
	}()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := initializeDB(db); err != nil {
		return nil, fmt.Errorf("initialize db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteSource{
		db:        db,
		log:       log,
		writeLock: new(sync.Mutex),
	}, nil
}

func initializeDB(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS credentials (
			kind     TEXT    NOT NULL,
			position INTEGER NOT NULL,
			value    TEXT    NOT NULL,
			PRIMARY KEY (kind, position),
			UNIQUE (kind, value)
		)
	`); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	return nil
}

// Fetch implements Source.Fetch by reading all credentials in insertion order.
// Database failures wrap domain.ErrRequestFailed.
func (s *SQLiteSource) Fetch(ctx context.Context) (_ domain.ValidationDataset, err error) {
	defer func() {
		if err != nil {
			s.log.WarnContext(ctx, "dataset query failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "dataset queried")
		}
	}()

	rows, err := s.db.QueryContext(ctx, "SELECT kind, value FROM credentials ORDER BY kind, position")
	if err != nil {
		return domain.ValidationDataset{}, errors.Join(domain.ErrRequestFailed, fmt.Errorf("query credentials: %w", err))
	}
	defer rows.Close()

	lists := map[string][]string{}

	for rows.Next() {
		var kind, value string
		if err := rows.Scan(&kind, &value); err != nil {
			return domain.ValidationDataset{}, errors.Join(domain.ErrRequestFailed, fmt.Errorf("scan credential: %w", err))
		}

		lists[kind] = append(lists[kind], value)
	}

	if err := rows.Err(); err != nil {
		return domain.ValidationDataset{}, errors.Join(domain.ErrRequestFailed, fmt.Errorf("iterate credentials: %w", err))
	}

	return domain.NewValidationDataset(
		lists[KindTakenUsername],
		lists[KindTakenPassword],
		lists[KindInsecurePassword],
	), nil
}

// Replace swaps the stored dataset for ds in a single transaction.
// Values are stored verbatim; duplicates within a list are rejected.
func (s *SQLiteSource) Replace(ctx context.Context, ds domain.ValidationDataset) (err error) {
	s.writeLock.Lock()
	defer s.writeLock.Unlock()

	defer func() {
		if err != nil {
			s.log.ErrorContext(ctx, "replace dataset failed", "error", err)
		} else {
			s.log.DebugContext(ctx, "dataset replaced")
		}
	}()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM credentials"); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}

	for kind, list := range map[string][]string{
		KindTakenUsername:    ds.TakenUsernames(),
		KindTakenPassword:    ds.TakenPasswords(),
		KindInsecurePassword: ds.InsecurePasswords(),
	} {
		for position, value := range list {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO credentials (kind, position, value) VALUES (?, ?, ?)",
				kind, position, value,
			); err != nil {
				return fmt.Errorf("insert %s: %w", kind, uniqueViolation(err))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func uniqueViolation(err error) error {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			fallthrough
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return errors.Join(ErrDuplicateCredential, err)
		default:
			break
		}
	}

	return err
}

// Close releases the database connection.
func (s *SQLiteSource) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	return nil
}
