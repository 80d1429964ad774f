package eventbus

import (
	"time"

	"github.com/paydesk/swiftrecon/internal/domain"
)

type EventType string

const (
	EventTypeRunExecution EventType = "run_execution"
)

type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
	Retries   int         `json:"retries"`
}

// RunExecutionEvent asks a worker to execute one reconciliation run over
// two fully materialized collections. The event ID is the run ID, which is
// also the idempotency key.
type RunExecutionEvent struct {
	RunID  string               `json:"run_id"`
	Source []domain.Transaction `json:"source"`
	Target []domain.Transaction `json:"target"`
}
