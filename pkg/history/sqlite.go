package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/timekit-io/timekit/pkg/timespan"
)

// SQLiteStore is a SQLite-based implementation of the measurement store
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore creates a new SQLite store
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Configure SQLite connection string for concurrent access:
	// - _journal_mode=WAL: Write-Ahead Logging for better concurrency
	// - _busy_timeout=10000: wait up to 10 seconds when the database is locked
	// - _synchronous=NORMAL: balance between safety and performance
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=10000&_synchronous=NORMAL", dbPath)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to avoid SQLITE_BUSY under concurrent saves
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database schema
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		command TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		wall_ns INTEGER NOT NULL,
		mono_ns INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_created_at ON measurements(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRecord adds or updates a record in the store
func (s *SQLiteStore) SaveRecord(record *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO measurements
		(id, command, exit_code, wall_ns, mono_ns, started_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.Command, record.ExitCode,
		record.Wall.WholeNanoseconds(), record.Monotonic.WholeNanoseconds(),
		record.StartedAt, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// GetRecord retrieves a record by ID
func (s *SQLiteStore) GetRecord(id string) (*Record, error) {
	row := s.db.QueryRow(`
		SELECT id, command, exit_code, wall_ns, mono_ns, started_at, created_at
		FROM measurements WHERE id = ?`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// ListRecords returns records newest-first, at most limit of them.
// A limit of zero or less returns everything.
func (s *SQLiteStore) ListRecords(limit int) ([]*Record, error) {
	query := `
		SELECT id, command, exit_code, wall_ns, mono_ns, started_at, created_at
		FROM measurements ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// DeleteRecord removes a record from the store
func (s *SQLiteStore) DeleteRecord(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM measurements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Clear removes all records and reports how many were dropped
func (s *SQLiteStore) Clear() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(`DELETE FROM measurements`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear records: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database is reachable
func (s *SQLiteStore) HealthCheck() error {
	return s.db.Ping()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var wallNs, monoNs int64
	err := row.Scan(&record.ID, &record.Command, &record.ExitCode,
		&wallNs, &monoNs, &record.StartedAt, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	record.Wall = timespan.Nanoseconds(wallNs)
	record.Monotonic = timespan.Nanoseconds(monoNs)
	return &record, nil
}
