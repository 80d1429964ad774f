package domain

import "context"

type Repository interface {
	// Run records
	CreateRun(ctx context.Context, record *RunRecord) error
	SaveRun(ctx context.Context, record *RunRecord) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)

	// Results and exception queries
	SaveResult(ctx context.Context, runID string, result *ReconciliationResult) error
	GetResult(ctx context.Context, runID string) (*ReconciliationResult, error)
	GetExceptions(ctx context.Context, runID string, page, perPage int, severity *Severity) ([]Discrepancy, int, error)

	// Idempotency tracking for run-execution events
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID string) error
}
