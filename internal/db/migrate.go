package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrMigration is matched by every MigrationError.
var ErrMigration = errors.New("migration failed")

// MigrationErrorKind classifies why a migration statement failed.
type MigrationErrorKind int

const (
	MigrationUnknown MigrationErrorKind = iota
	// MigrationAlreadyApplied covers re-running a statement whose effect is
	// already in the schema. It is the only tolerated kind.
	MigrationAlreadyApplied
	MigrationSyntax
	MigrationConstraint
	MigrationIO
)

func (k MigrationErrorKind) String() string {
	switch k {
	case MigrationAlreadyApplied:
		return "already_applied"
	case MigrationSyntax:
		return "syntax"
	case MigrationConstraint:
		return "constraint"
	case MigrationIO:
		return "io"
	default:
		return "unknown"
	}
}

// MigrationError reports the migration and statement class that failed.
type MigrationError struct {
	Version int
	Name    string
	Kind    MigrationErrorKind
	Err     error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %d (%s): %s: %v", e.Version, e.Name, e.Kind, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func (e *MigrationError) Is(target error) bool { return target == ErrMigration }

type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial schema",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY,
				username TEXT NOT NULL DEFAULT '',
				full_name TEXT NOT NULL DEFAULT '',
				last_active TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				raw_text TEXT NOT NULL,
				event_type TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				start_time TEXT,
				end_time TEXT,
				description TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS goals (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				goal_text TEXT NOT NULL,
				deadline TEXT,
				steps TEXT NOT NULL DEFAULT '[]',
				status TEXT NOT NULL DEFAULT 'active',
				created_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS graph_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				graph_type TEXT NOT NULL,
				file_path TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_user_created ON events(user_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_goals_user ON goals(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_graph_history_user ON graph_history(user_id, created_at)`,
		},
	},
	{
		version:    2,
		name:       "events payload",
		statements: []string{`ALTER TABLE events ADD COLUMN payload TEXT`},
	},
	{
		version:    3,
		name:       "goal progress",
		statements: []string{`ALTER TABLE goals ADD COLUMN progress INTEGER NOT NULL DEFAULT 0`},
	},
}

// SchemaVersion is the version Migrate brings a database up to.
func SchemaVersion() int {
	return migrations[len(migrations)-1].version
}

const versionKey = "db_version"

// Migrate applies every migration newer than the recorded db_version, each
// in its own transaction.
func Migrate(db *sql.DB) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return &MigrationError{Name: "metadata", Kind: classifyMigrationError(err), Err: err}
	}

	current, err := CurrentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := apply(ctx, db, m); err != nil {
			return err
		}
	}
	return nil
}

// CurrentVersion returns the recorded schema version, or 0 for a fresh
// database.
func CurrentVersion(ctx context.Context, db DBTX) (int, error) {
	var raw string
	err := db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, versionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parsing schema version %q: %w", raw, err)
	}
	return v, nil
}

func apply(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration %d: %w", m.version, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			kind := classifyMigrationError(err)
			if kind == MigrationAlreadyApplied {
				continue
			}
			return &MigrationError{Version: m.version, Name: m.name, Kind: kind, Err: err}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO metadata (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		versionKey, strconv.Itoa(m.version)); err != nil {
		return &MigrationError{Version: m.version, Name: m.name, Kind: classifyMigrationError(err), Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &MigrationError{Version: m.version, Name: m.name, Kind: MigrationIO, Err: err}
	}
	return nil
}

func classifyMigrationError(err error) MigrationErrorKind {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate column name") || strings.Contains(msg, "already exists") {
		return MigrationAlreadyApplied
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return MigrationConstraint
		case sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL, sqlite3.SQLITE_CANTOPEN,
			sqlite3.SQLITE_READONLY, sqlite3.SQLITE_CORRUPT:
			return MigrationIO
		case sqlite3.SQLITE_ERROR:
			if strings.Contains(msg, "syntax error") {
				return MigrationSyntax
			}
		}
	}
	if strings.Contains(msg, "syntax error") {
		return MigrationSyntax
	}
	return MigrationUnknown
}
