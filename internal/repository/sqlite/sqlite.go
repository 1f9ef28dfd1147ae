// Package sqlite implements the repository interfaces on SQLite through
// database/sql and the pure-Go modernc.org/sqlite driver (no cgo).
//
// Reminder of the database/sql model used throughout:
//   - sql.DB is a connection pool, not a connection
//   - every *sql.Rows must be closed
//   - sql.ErrNoRows is how QueryRow reports "nothing matched"
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB wraps the connection pool and implements both
// repository.UserRepository and repository.ComplaintRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/ncps.db" → file database, WAL mode
//   - ":memory:"     → private in-memory database for tests
func New(dbPath string) (*DB, error) {
	memory := dbPath == ":memory:"

	dsn := dbPath
	if !memory {
		// _pragma parameters are applied by the driver to every new
		// connection in the pool, not just the first one.
		dsn = "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if memory {
		// Each connection to ":memory:" is its own empty database, so the
		// pool must never open a second one.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if memory {
		if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
		}
	} else {
		// WAL lets page renders keep reading while a complaint is inserted.
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable; used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate brings the schema up to date. Every step is idempotent, so it runs
// on each start against fresh and existing databases alike.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			phone         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// Amber columns are NULL for every non-Amber complaint.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS complaints (
			id            TEXT PRIMARY KEY,
			user_id       TEXT NOT NULL REFERENCES users(id),
			service       TEXT NOT NULL,
			category      TEXT NOT NULL,
			title         TEXT NOT NULL,
			description   TEXT NOT NULL,
			file_path     TEXT NOT NULL DEFAULT '',
			lat           REAL,
			lng           REAL,
			child_name    TEXT,
			child_age     TEXT,
			last_location TEXT,
			more_info     TEXT,
			amber_sms     TEXT NOT NULL DEFAULT '',
			status        TEXT NOT NULL DEFAULT 'Submitted',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating complaints table: %w", err)
	}

	// result arrived after the first deployments; older databases lack it.
	if err := db.addColumnIfNotExists("complaints", "result", "TEXT NOT NULL DEFAULT ''"); err != nil {
		return fmt.Errorf("adding result to complaints: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_complaints_user_id ON complaints(user_id);
		CREATE INDEX IF NOT EXISTS idx_complaints_created_at ON complaints(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating complaints indexes: %w", err)
	}

	return nil
}

// addColumnIfNotExists runs ALTER TABLE ADD COLUMN only when pragma_table_info
// does not already list the column. ALTER TABLE itself has no IF NOT EXISTS.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
