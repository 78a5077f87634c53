package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RAVBLACK/sentiguard/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/sentiguard.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.sentiguard.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions; the database holds
	// mood scores and bounded text previews, so it must not be world-readable.
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	dbPath := filepath.Join(baseDir, "sentiguard.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS mood_history (
		  seq   INTEGER PRIMARY KEY AUTOINCREMENT,
		  ts    TEXT NOT NULL,
		  score REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_mood_history_ts
		ON mood_history(ts);

		CREATE TABLE IF NOT EXISTS alert_state (
		  id               INTEGER PRIMARY KEY CHECK (id = 1),
		  last_acked_index INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS alerts (
		  id           TEXT PRIMARY KEY,
		  ts           TEXT NOT NULL,
		  breach_count INTEGER NOT NULL,
		  status       TEXT NOT NULL,
		  sample_lines TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_alerts_ts
		ON alerts(ts DESC);

		CREATE TABLE IF NOT EXISTS attention_log (
		  seq            INTEGER PRIMARY KEY AUTOINCREMENT,
		  ts             TEXT NOT NULL,
		  preview        TEXT NOT NULL,
		  raw_score      REAL NOT NULL,
		  adjusted_score REAL NOT NULL,
		  sarcastic      INTEGER NOT NULL,
		  concern        INTEGER NOT NULL,
		  explanation    TEXT NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
