package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config describes how to reach the progress database
type Config struct {
	Driver string
	// DSN is a file path for SQLite or a connection string for Postgres
	DSN string
}

// Open connects to the database and makes sure the schema exists.
// The returned handle is passed explicitly to every repository.
func Open(cfg Config) (*sqlx.DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	dsn := cfg.DSN
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			dsn = filepath.Join("data", "vox.db")
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			// Create data directory if it doesn't exist
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
			dsn = sqliteDSN(dsn)
		}
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres driver requires a DSN")
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == DriverSQLite {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// sqliteDSN turns a file path into a DSN with foreign keys and fully synchronous commits
func sqliteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_synchronous=FULL"
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := sqliteSchema
	if db.DriverName() == DriverPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %v", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS vocab (
		id TEXT PRIMARY KEY,
		hanzi TEXT NOT NULL,
		pinyin TEXT NOT NULL,
		gloss TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS grammar (
		id TEXT PRIMARY KEY,
		structure TEXT NOT NULL,
		pattern TEXT NOT NULL,
		explanation TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vocab_progress (
		vocab_id TEXT PRIMARY KEY,
		box INTEGER NOT NULL DEFAULT 1 CHECK (box BETWEEN 1 AND 6),
		last_review TIMESTAMP,
		next_review TIMESTAMP NOT NULL,
		FOREIGN KEY (vocab_id) REFERENCES vocab(id)
	)`,
	`CREATE INDEX IF NOT EXISTS vocab_progress_due_idx ON vocab_progress (next_review, vocab_id)`,
	`CREATE TABLE IF NOT EXISTS grammar_progress (
		grammar_id TEXT PRIMARY KEY,
		status TEXT NOT NULL DEFAULT 'unseen' CHECK (status IN ('unseen', 'seen', 'practiced', 'mastered')),
		practice_count INTEGER NOT NULL DEFAULT 0 CHECK (practice_count >= 0),
		FOREIGN KEY (grammar_id) REFERENCES grammar(id)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS vocab (
		id TEXT PRIMARY KEY,
		hanzi TEXT NOT NULL,
		pinyin TEXT NOT NULL,
		gloss TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS grammar (
		id TEXT PRIMARY KEY,
		structure TEXT NOT NULL,
		pattern TEXT NOT NULL,
		explanation TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vocab_progress (
		vocab_id TEXT PRIMARY KEY REFERENCES vocab(id),
		box INTEGER NOT NULL DEFAULT 1 CHECK (box BETWEEN 1 AND 6),
		last_review TIMESTAMPTZ,
		next_review TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS vocab_progress_due_idx ON vocab_progress (next_review, vocab_id)`,
	`CREATE TABLE IF NOT EXISTS grammar_progress (
		grammar_id TEXT PRIMARY KEY REFERENCES grammar(id),
		status TEXT NOT NULL DEFAULT 'unseen' CHECK (status IN ('unseen', 'seen', 'practiced', 'mastered')),
		practice_count INTEGER NOT NULL DEFAULT 0 CHECK (practice_count >= 0)
	)`,
}
