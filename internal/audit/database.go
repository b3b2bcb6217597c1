package audit

import "time"

// Operation is one recorded CLI run (an audit or a diff).
type Operation struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	FileCount  int64
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the run is in progress
}

// Database provides an interface for run-history storage.
type Database interface {
	// CreateAuditOperation records the start of a run and returns it with
	// its database-assigned ID.
	CreateAuditOperation(operation, parameters string) (*Operation, error)

	// FinishAuditOperation records a run's final status and file count.
	FinishAuditOperation(id int64, status string, fileCount int64) error

	// ListAuditOperations returns up to limit runs, newest first.
	ListAuditOperations(limit int) ([]*Operation, error)

	// Close closes the database connection.
	Close() error
}
