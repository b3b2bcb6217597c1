package app

// AuditRun tracks a CLI operation that may be recorded in the run history.
// Runs are created in memory with ID=0. Only recorded commands persist them
// (giving them an auto-increment ID from the database).
type AuditRun struct {
	ID         int64
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	FileCount  int64
}

// NewAuditRun creates a new in-memory audit run.
func NewAuditRun(operation, parameters string) *AuditRun {
	return &AuditRun{
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this run has been saved to the database.
func (r *AuditRun) Persisted() bool {
	return r.ID != 0
}
