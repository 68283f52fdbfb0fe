package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

// Config holds SQLite connection settings.
type Config struct {
	// DSN is the database file path or connection string
	DSN string

	// BusyTimeout sets how long to wait for database locks
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode (WAL, DELETE, MEMORY, ...)
	JournalMode string

	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF)
	Synchronous string

	// MaxOpenConns sets the maximum number of open connections
	MaxOpenConns int
}

// DefaultConfig returns the settings used for an on-disk journal.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:          dsn,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		Synchronous:  "NORMAL",
		MaxOpenConns: 1,
	}
}

// InMemoryConfig returns settings for a throwaway in-memory database.
// A single connection keeps every statement on the same database.
func InMemoryConfig() Config {
	return Config{
		DSN:          MemoryDSN,
		BusyTimeout:  time.Second,
		JournalMode:  "MEMORY",
		Synchronous:  "OFF",
		MaxOpenConns: 1,
	}
}

var validJournalModes = map[string]bool{
	"DELETE":   true,
	"TRUNCATE": true,
	"PERSIST":  true,
	"MEMORY":   true,
	"WAL":      true,
	"OFF":      true,
}

var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// Validate checks the configuration before a connection is opened.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return errors.New("sqlite: DSN cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return errors.New("sqlite: BusyTimeout cannot be negative")
	}
	if c.JournalMode != "" && !validJournalModes[c.JournalMode] {
		return fmt.Errorf("sqlite: invalid journal mode: %s", c.JournalMode)
	}
	if c.Synchronous != "" && !validSyncModes[c.Synchronous] {
		return fmt.Errorf("sqlite: invalid synchronous mode: %s", c.Synchronous)
	}
	if c.MaxOpenConns < 0 {
		return errors.New("sqlite: MaxOpenConns cannot be negative")
	}
	return nil
}

// ConnectionPool wraps the journal database handle.
type ConnectionPool struct {
	db     *sql.DB
	config Config
}

// Open validates cfg, opens the database, applies pragmas and runs the
// embedded migrations.
func Open(ctx context.Context, cfg Config) (*ConnectionPool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ensureDir(cfg.DSN); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(0)

	pool := &ConnectionPool{db: db, config: cfg}
	if err := pool.configure(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return pool, nil
}

func (cp *ConnectionPool) configure(ctx context.Context) error {
	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", cp.config.BusyTimeout.Milliseconds()),
	}
	if cp.config.JournalMode != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = "+cp.config.JournalMode)
	}
	if cp.config.Synchronous != "" {
		pragmas = append(pragmas, "PRAGMA synchronous = "+cp.config.Synchronous)
	}
	for _, pragma := range pragmas {
		if _, err := cp.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	return nil
}

func ensureDir(dsn string) error {
	if dsn == MemoryDSN || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// DB returns the underlying database connection
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc represents a function that executes within a transaction
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a transaction. An error from fn rolls
// the transaction back; otherwise it is committed.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ErrLocked marks a write that lost a lock race and may be retried.
var ErrLocked = errors.New("sqlite: database locked")

// MapError maps SQLite-specific failures onto package errors.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY") {
		return fmt.Errorf("%w: %v", ErrLocked, err)
	}
	return err
}

// RetryConfig configures retry behavior for database operations
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig returns a retry configuration with sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// WithRetry runs fn, retrying with exponential backoff while it fails with
// ErrLocked.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * cfg.BackoffFactor)
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			}
		}

		lastErr = MapError(fn())
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, ErrLocked) {
			return lastErr
		}
	}

	return fmt.Errorf("operation failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
