package service

import (
	"context"
	"time"

	"github.com/paydesk/swiftrecon/internal/domain"
	"github.com/paydesk/swiftrecon/internal/engine"
	"github.com/paydesk/swiftrecon/internal/tracker"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

type ReconciliationService interface {
	// RunReconciliation executes one full reconciliation of the two
	// collections under the given run ID (generated when empty). On error
	// the run has already been finalized as FAILED and its run log written
	// before the error is returned.
	RunReconciliation(ctx context.Context, runID string, source, target []domain.Transaction) (*domain.ReconciliationResult, error)
}

// ArtifactWriter persists the per-run audit artifacts. It is an external
// collaborator of the core; a nil writer disables artifact files.
type ArtifactWriter interface {
	WriteDiscrepancyFile(ctx context.Context, record domain.RunRecord) (string, error)
	WriteRunLog(ctx context.Context, record domain.RunRecord) (string, error)
}

type reconciliationService struct {
	repo         domain.Repository
	archiver     ArtifactWriter
	logger       *logger.Logger
	sourceSystem string
	targetSystem string
}

func NewReconciliationService(repo domain.Repository, archiver ArtifactWriter, log *logger.Logger, sourceSystem, targetSystem string) ReconciliationService {
	return &reconciliationService{
		repo:         repo,
		archiver:     archiver,
		logger:       log,
		sourceSystem: sourceSystem,
		targetSystem: targetSystem,
	}
}

func (s *reconciliationService) RunReconciliation(ctx context.Context, runID string, source, target []domain.Transaction) (*domain.ReconciliationResult, error) {
	run := NewRun(ctx, runID, s.logger)
	ctx = logger.WithRunID(ctx, run.ID())

	tr := tracker.New(run.ID(), s.logger)
	run.AttachTracker(ctx, tr)

	result, err := s.reconcile(ctx, run, tr, source, target)
	if err != nil {
		// Single fault boundary: finalize as FAILED, persist the run log,
		// then propagate.
		s.logger.Error(ctx, "Reconciliation failed",
			"error", err,
		)
		run.Finalize(ctx, false, err.Error())
		s.persist(ctx, run, nil)
		return nil, err
	}

	run.Finalize(ctx, true, "")
	s.persist(ctx, run, result)

	return result, nil
}

func (s *reconciliationService) reconcile(ctx context.Context, run *Run, tr *tracker.Tracker, source, target []domain.Transaction) (*domain.ReconciliationResult, error) {
	matcher, err := engine.New(source, target)
	if err != nil {
		return nil, err
	}

	missing := matcher.FindMissing()
	duplicates := matcher.FindDuplicates()
	differences := matcher.FindDifferences()

	totalSource := len(source)
	totalTarget := len(target)
	matched := totalSource - len(missing) - len(differences)

	for _, finding := range missing {
		tr.RecordMissing(ctx, finding.TransactionID, s.sourceSystem, s.targetSystem, finding.SourceDetails, finding.Severity)
	}

	for _, finding := range duplicates {
		tr.RecordDuplicate(ctx, finding.TransactionID, s.targetSystem, finding.OccurrenceCount, finding.SourceDetails, finding.TargetOccurrences, finding.Severity)
	}

	for _, finding := range differences {
		tr.RecordUnmatched(ctx, finding.TransactionID, s.sourceSystem, s.targetSystem, finding.SourceDetails, finding.TargetDetails, finding.Differences, finding.Severity)
	}

	if totalSource != totalTarget {
		tr.RecordCountDiscrepancy(ctx, s.sourceSystem, s.targetSystem, totalSource, totalTarget, "total_transactions", domain.SeverityMedium)
	}

	run.RecordVolumeComparison(ctx, s.sourceSystem, s.targetSystem, totalSource, totalTarget, matched)

	s.logSummary(ctx, tr)
	s.logExceptionList(ctx, tr)

	result := &domain.ReconciliationResult{
		Summary: domain.RunSummary{
			RunID:                       run.ID(),
			TotalSourceTransactions:     totalSource,
			TotalTargetTransactions:     totalTarget,
			MatchedTransactions:         matched,
			MissingInTarget:             len(missing),
			TransactionsWithDifferences: len(differences),
			DuplicateTransactions:       len(duplicates),
			ReconciliationDate:          time.Now(),
			DiscrepancySummary:          tr.Summary(),
		},
		MissingTransactions:         missing,
		DuplicateTransactions:       duplicates,
		TransactionsWithDifferences: differences,
		ExceptionList:               tr.ExceptionList(),
	}

	return result, nil
}

func (s *reconciliationService) logSummary(ctx context.Context, tr *tracker.Tracker) {
	summary := tr.Summary()
	s.logger.Info(ctx, "Discrepancy summary",
		"total_discrepancies", summary.TotalDiscrepancies,
		"missing_records", summary.ByKind.MissingRecords,
		"unmatched_transactions", summary.ByKind.UnmatchedTransactions,
		"duplicate_records", summary.ByKind.DuplicateRecords,
		"count_discrepancies", summary.ByKind.CountDiscrepancies,
		"critical", summary.BySeverity.Critical,
		"high", summary.BySeverity.High,
		"medium", summary.BySeverity.Medium,
		"low", summary.BySeverity.Low,
	)
}

func (s *reconciliationService) logExceptionList(ctx context.Context, tr *tracker.Tracker) {
	exceptions := tr.ExceptionList()
	if len(exceptions) == 0 {
		s.logger.Info(ctx, "No exceptions found: all records reconciled")
		return
	}

	for i, exc := range exceptions {
		s.logger.Info(ctx, "Exception",
			"position", i+1,
			"severity", string(exc.Severity),
			"type", string(exc.Kind),
			"discrepancy_id", exc.ID,
			"transaction_id", exc.TransactionID,
			"description", exc.Description,
		)
	}
}

// persist saves the run record (and result, when the run produced one) and
// writes the audit artifacts. The run-log write is attempted even for
// failed runs.
func (s *reconciliationService) persist(ctx context.Context, run *Run, result *domain.ReconciliationResult) {
	record := run.Record()

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, &record); err != nil {
			s.logger.Error(ctx, "Failed to save run record",
				"error", err,
			)
		}
		if result != nil {
			if err := s.repo.SaveResult(ctx, record.RunID, result); err != nil {
				s.logger.Error(ctx, "Failed to save reconciliation result",
					"error", err,
				)
			}
		}
	}

	if s.archiver == nil {
		return
	}

	if result != nil {
		if _, err := s.archiver.WriteDiscrepancyFile(ctx, record); err != nil {
			s.logger.Error(ctx, "Failed to write discrepancy file",
				"error", err,
			)
		}
	}

	if _, err := s.archiver.WriteRunLog(ctx, record); err != nil {
		s.logger.Error(ctx, "Failed to write run log",
			"error", err,
		)
	}
}
