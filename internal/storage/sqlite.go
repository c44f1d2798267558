package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const currentVersion = 1

// SQLiteKV is the durable KV backend: a single kv table in a SQLite file.
type SQLiteKV struct {
	db    *sql.DB
	lock  *flock.Flock
	quota int64
}

// OpenSQLite opens (or creates) the database at dbPath and runs migrations.
// File-backed databases are locked exclusively for the life of the KV.
// quota limits the bytes of stored keys plus values; 0 means unlimited.
func OpenSQLite(dbPath string, quota int64) (*SQLiteKV, error) {
	s := &SQLiteKV{quota: quota}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		s.lock = flock.New(dbPath + ".lock")
		locked, err := s.lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock database: %w", err)
		}
		if !locked {
			return nil, fmt.Errorf("open %s: %w", dbPath, ErrLocked)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		s.unlock()
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			s.unlock()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s.db = db
	if err := s.migrate(); err != nil {
		db.Close()
		s.unlock()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// OpenSQLiteMemory creates an in-memory database for testing.
func OpenSQLiteMemory(quota int64) (*SQLiteKV, error) {
	return OpenSQLite(":memory:", quota)
}

func (s *SQLiteKV) Close() error {
	err := s.db.Close()
	s.unlock()
	return err
}

func (s *SQLiteKV) unlock() {
	if s.lock != nil {
		s.lock.Unlock()
	}
}

func (s *SQLiteKV) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *SQLiteKV) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS kv (
		key         TEXT PRIMARY KEY,
		value       TEXT NOT NULL,
		updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);
	`
	_, err := s.db.Exec(ddl)
	return err
}

func (s *SQLiteKV) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(key, value string) error {
	if s.quota > 0 {
		var used int64
		err := s.db.QueryRow(
			`SELECT COALESCE(SUM(LENGTH(CAST(key AS BLOB)) + LENGTH(CAST(value AS BLOB))), 0) FROM kv WHERE key <> ?`, key,
		).Scan(&used)
		if err != nil {
			return fmt.Errorf("measure usage: %w", err)
		}
		if used+int64(len(key)+len(value)) > s.quota {
			return fmt.Errorf("set %q: %w", key, ErrQuotaExceeded)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now,
	)
	if err != nil {
		if isDiskFull(err) {
			return fmt.Errorf("set %q: %w: %w", key, ErrQuotaExceeded, err)
		}
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Remove(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, err)
	}
	return nil
}

func isDiskFull(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_FULL
}
