package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/parcel/internal/model"
)

// dbFileName is the history database file name inside the data directory.
const dbFileName = "parcel.db"

// PackDB provides SQLite-based storage for completed pack operations.
// It manages connection pooling and provides methods for saving, listing,
// and pruning history rows.
type PackDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures PackDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. Recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a PackDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are
// created; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*PackDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to refuse creating new files and
	// mode=rwc to allow it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY under concurrent batch saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pdb := &PackDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := pdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return pdb, nil
}

// Close closes the database connection.
func (pdb *PackDB) Close() error {
	return pdb.db.Close()
}

// Path returns the database file path.
func (pdb *PackDB) Path() string {
	return pdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (pdb *PackDB) createTables() error {
	schema := `
	-- One row per completed pack operation
	CREATE TABLE IF NOT EXISTS packs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		entry_name TEXT NOT NULL,
		bytes INTEGER NOT NULL,
		codec TEXT NOT NULL,
		duration_ns INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_packs_destination ON packs(destination);
	CREATE INDEX IF NOT EXISTS idx_packs_created_at ON packs(created_at);
	`

	_, err := pdb.db.ExecContext(context.Background(), schema)
	return err
}

// SavePackRecord inserts a history row and returns its ID.
func (pdb *PackDB) SavePackRecord(ctx context.Context, record *model.PackRecord) (int64, error) {
	query := `
	INSERT INTO packs (source, destination, entry_name, bytes, codec, duration_ns, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := pdb.db.ExecContext(ctx, query,
		record.Source,
		record.Destination,
		record.EntryName,
		record.Bytes,
		record.Codec,
		record.Duration.Nanoseconds(),
		createdAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pack record: %w", err)
	}

	return result.LastInsertId()
}

// RecentRecords returns the most recent history rows, newest first.
func (pdb *PackDB) RecentRecords(ctx context.Context, limit int) ([]model.PackRecord, error) {
	query := `
	SELECT id, source, destination, entry_name, bytes, codec, duration_ns, created_at
	FROM packs
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`

	rows, err := pdb.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pack records: %w", err)
	}
	defer rows.Close()

	var records []model.PackRecord
	for rows.Next() {
		var record model.PackRecord
		var durationNS int64
		var createdAt string

		if err := rows.Scan(
			&record.ID,
			&record.Source,
			&record.Destination,
			&record.EntryName,
			&record.Bytes,
			&record.Codec,
			&durationNS,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pack record: %w", err)
		}
		record.Duration = time.Duration(durationNS)
		record.CreatedAt = parseTimestamp(createdAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

// RecordsForDestination returns history rows for one archive path, newest
// first.
func (pdb *PackDB) RecordsForDestination(ctx context.Context, destination string, limit int) ([]model.PackRecord, error) {
	query := `
	SELECT id, source, destination, entry_name, bytes, codec, duration_ns, created_at
	FROM packs
	WHERE destination = ?
	ORDER BY created_at DESC, id DESC
	LIMIT ?
	`

	rows, err := pdb.db.QueryContext(ctx, query, destination, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pack records: %w", err)
	}
	defer rows.Close()

	var records []model.PackRecord
	for rows.Next() {
		var record model.PackRecord
		var durationNS int64
		var createdAt string

		if err := rows.Scan(
			&record.ID,
			&record.Source,
			&record.Destination,
			&record.EntryName,
			&record.Bytes,
			&record.Codec,
			&durationNS,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pack record: %w", err)
		}
		record.Duration = time.Duration(durationNS)
		record.CreatedAt = parseTimestamp(createdAt)
		records = append(records, record)
	}
	return records, rows.Err()
}

// Prune deletes history rows older than the given age and returns how many
// were removed.
func (pdb *PackDB) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)

	result, err := pdb.db.ExecContext(ctx, "DELETE FROM packs WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune pack records: %w", err)
	}
	return result.RowsAffected()
}

// timestampFormats are the formats SQLite may hand back depending on how a
// timestamp was written.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a timestamp string from SQLite, trying each known
// format. Returns the zero time if none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
