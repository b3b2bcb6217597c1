package database

import (
	"database/sql"
	"fmt"
	"time"

	"fsa-go/internal/audit"
	"fsa-go/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements the Database interface using SQLite.
type SQLiteDatabase struct {
	db   *sql.DB
	path string
}

// NewSQLiteDatabase creates a new SQLite database connection and brings the
// schema up to the latest version.
// path can be a file path or ":memory:" for in-memory database.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database at %s: %w", path, err)
	}

	return &SQLiteDatabase{
		db:   db,
		path: path,
	}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
// This is exported for use in tools and tests that need a properly configured SQLite connection.
// path can be a file path or ":memory:" for in-memory database.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Operation tracking

func (s *SQLiteDatabase) CreateAuditOperation(operation, parameters string) (*audit.Operation, error) {
	now := time.Now()

	res, err := s.db.Exec(
		`INSERT INTO audit_operations (operation, parameters, status, started_at) VALUES (?, ?, ?, ?)`,
		operation, parameters, "running", now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating audit operation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting audit operation id: %w", err)
	}

	return &audit.Operation{
		ID:         id,
		Operation:  operation,
		Parameters: parameters,
		Status:     "running",
		StartedAt:  now,
	}, nil
}

func (s *SQLiteDatabase) FinishAuditOperation(id int64, status string, fileCount int64) error {
	now := time.Now()
	res, err := s.db.Exec(
		`UPDATE audit_operations SET status = ?, file_count = ?, finished_at = ? WHERE id = ?`,
		status, fileCount, now, id,
	)
	if err != nil {
		return fmt.Errorf("finishing audit operation %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finishing audit operation %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("audit operation %d not found", id)
	}
	return nil
}

func (s *SQLiteDatabase) ListAuditOperations(limit int) ([]*audit.Operation, error) {
	rows, err := s.db.Query(
		`SELECT id, operation, parameters, status, file_count, started_at, finished_at
		 FROM audit_operations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing audit operations: %w", err)
	}
	defer rows.Close()

	var ops []*audit.Operation
	for rows.Next() {
		var op audit.Operation
		var finished sql.NullTime
		if err := rows.Scan(&op.ID, &op.Operation, &op.Parameters, &op.Status,
			&op.FileCount, &op.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("scanning audit operation: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			op.FinishedAt = &t
		}
		ops = append(ops, &op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing audit operations: %w", err)
	}
	return ops, nil
}

// Path returns the database file path (or ":memory:" for in-memory databases).
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// Close closes the database connection.
func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteDatabase implements audit.Database interface
var _ audit.Database = (*SQLiteDatabase)(nil)
