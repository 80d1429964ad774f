package eventbus

import (
	"context"
	"fmt"

	"github.com/paydesk/swiftrecon/internal/domain"
	"github.com/paydesk/swiftrecon/internal/service"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

// RunConsumer executes submitted reconciliation runs. Each event runs the
// synchronous core once, with its own run and tracker instances; the run ID
// doubles as the idempotency key so a redelivered event is skipped.
type RunConsumer struct {
	svc         service.ReconciliationService
	repo        domain.Repository
	logger      *logger.Logger
	workerCount int
}

func NewRunConsumer(svc service.ReconciliationService, repo domain.Repository, log *logger.Logger, workerCount int) *RunConsumer {
	return &RunConsumer{
		svc:         svc,
		repo:        repo,
		logger:      log,
		workerCount: workerCount,
	}
}

func (rc *RunConsumer) Consume(ctx context.Context, event Event) error {
	processed, err := rc.repo.IsEventProcessed(ctx, event.ID)
	if err != nil {
		rc.logger.Error(ctx, "Failed to check event processed status",
			"event_id", event.ID,
			"error", err,
		)
		return err
	}

	if processed {
		rc.logger.Debug(ctx, "Event already processed, skipping",
			"event_id", event.ID,
		)
		return nil
	}

	payload, ok := event.Payload.(RunExecutionEvent)
	if !ok {
		rc.logger.Error(ctx, "Invalid payload type for run execution event",
			"event_id", event.ID,
		)
		return fmt.Errorf("invalid payload type")
	}

	ctx = logger.WithRunID(ctx, payload.RunID)

	rc.logger.Debug(ctx, "Executing reconciliation run",
		"event_id", event.ID,
		"source_count", len(payload.Source),
		"target_count", len(payload.Target),
	)

	// The service finalizes and persists the FAILED run record itself, so
	// a failed run is still marked processed: re-running it would only
	// repeat the same deterministic failure.
	_, runErr := rc.svc.RunReconciliation(ctx, payload.RunID, payload.Source, payload.Target)

	if err := rc.repo.MarkEventProcessed(ctx, event.ID); err != nil {
		rc.logger.Error(ctx, "Failed to mark event as processed",
			"event_id", event.ID,
			"error", err,
		)
		return err
	}

	if runErr != nil {
		rc.logger.Warn(ctx, "Reconciliation run ended in failure",
			"event_id", event.ID,
			"error", runErr,
		)
	}

	return nil
}

func (rc *RunConsumer) GetWorkerCount() int {
	return rc.workerCount
}
