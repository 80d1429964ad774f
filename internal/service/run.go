package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paydesk/swiftrecon/internal/domain"
	"github.com/paydesk/swiftrecon/internal/tracker"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

// GenerateRunID builds a caller-facing run identifier:
// RUN-<UTC timestamp>-<4 random chars>.
func GenerateRunID() string {
	return fmt.Sprintf("RUN-%s-%s", time.Now().UTC().Format("20060102150405"), uuid.NewString()[:4])
}

// Run owns the lifecycle of one reconciliation execution: the status state
// machine, timing and the volume comparison. It is scoped to a single
// invocation and never shared between runs.
type Run struct {
	id      string
	status  domain.RunStatus
	start   time.Time
	end     time.Time
	volume  *domain.VolumeComparison
	tracker *tracker.Tracker
	errMsg  string
	logger  *logger.Logger
}

// NewRun starts a run. A run ID is generated when none is supplied.
func NewRun(ctx context.Context, runID string, log *logger.Logger) *Run {
	if runID == "" {
		runID = GenerateRunID()
	}

	r := &Run{
		id:     runID,
		status: domain.RunStatusStarted,
		start:  time.Now(),
		logger: log,
	}

	log.Info(ctx, "Reconciliation run started",
		"run_id", runID,
		"start_timestamp", r.start.Format(time.RFC3339),
	)

	return r
}

func (r *Run) ID() string {
	return r.id
}

func (r *Run) Status() domain.RunStatus {
	return r.status
}

// AttachTracker binds the run's discrepancy tracker and moves the status to
// IN_PROGRESS. Only valid while the run is in STARTED.
func (r *Run) AttachTracker(ctx context.Context, t *tracker.Tracker) {
	if r.status != domain.RunStatusStarted {
		return
	}
	r.tracker = t
	r.status = domain.RunStatusInProgress

	r.logger.Debug(ctx, "Discrepancy tracker attached",
		"tracker_run_id", t.RunID(),
	)
}

// RecordVolumeComparison captures the volume figures for the run. The
// unmatched count stays signed; a negative value means the caller reported
// more matches than source records and is logged as an anomaly.
func (r *Run) RecordVolumeComparison(ctx context.Context, sourceSystem, targetSystem string, sourceTotal, targetTotal, matchedCount int) {
	vc := domain.NewVolumeComparison(sourceSystem, targetSystem, sourceTotal, targetTotal, matchedCount)
	r.volume = &vc

	if vc.UnmatchedCount < 0 {
		r.logger.Warn(ctx, "Matched count exceeds source total",
			"matched_count", matchedCount,
			"source_total", sourceTotal,
		)
	}

	r.logger.Info(ctx, "Volume comparison",
		"source_system", sourceSystem,
		"source_total", sourceTotal,
		"target_system", targetSystem,
		"target_total", targetTotal,
		"volume_difference", vc.VolumeDifference,
		"matched_count", matchedCount,
		"unmatched_count", vc.UnmatchedCount,
		"match_rate", vc.MatchRate,
	)
}

// Finalize ends the run: FAILED when an error occurred, otherwise
// COMPLETED_WITH_DISCREPANCIES when the tracker recorded anything, else
// COMPLETED_SUCCESS. Terminal states never transition again.
func (r *Run) Finalize(ctx context.Context, success bool, errorMessage string) {
	if r.status.Terminal() {
		return
	}

	r.end = time.Now()
	r.errMsg = errorMessage

	switch {
	case !success:
		r.status = domain.RunStatusFailed
	case r.tracker != nil && r.tracker.Count() > 0:
		r.status = domain.RunStatusCompletedWithDiscrepancies
	default:
		r.status = domain.RunStatusCompletedSuccess
	}

	duration := r.end.Sub(r.start)

	switch r.status {
	case domain.RunStatusCompletedSuccess:
		r.logger.Info(ctx, "Reconciliation run completed: all records reconciled",
			"status", string(r.status),
			"duration_seconds", duration.Seconds(),
		)
	case domain.RunStatusCompletedWithDiscrepancies:
		r.logger.Warn(ctx, "Reconciliation run completed with discrepancies",
			"status", string(r.status),
			"discrepancy_count", r.tracker.Count(),
			"duration_seconds", duration.Seconds(),
		)
	default:
		r.logger.Error(ctx, "Reconciliation run failed",
			"status", string(r.status),
			"error", errorMessage,
			"duration_seconds", duration.Seconds(),
		)
	}
}

// Record snapshots the run into its serializable audit form.
func (r *Run) Record() domain.RunRecord {
	record := domain.RunRecord{
		RunID:            r.id,
		Status:           r.status,
		StartTimestamp:   r.start,
		VolumeComparison: r.volume,
		ExceptionList:    []domain.Discrepancy{},
		Success:          r.status.Success(),
		ErrorMessage:     r.errMsg,
	}

	if !r.end.IsZero() {
		end := r.end
		record.EndTimestamp = &end
		duration := r.end.Sub(r.start).Seconds()
		record.DurationSeconds = &duration
	}

	if r.tracker != nil {
		record.DiscrepancySummary = r.tracker.Summary()
		record.ExceptionList = r.tracker.ExceptionList()
	}

	return record
}
