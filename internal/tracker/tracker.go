package tracker

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paydesk/swiftrecon/internal/domain"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

// Tracker accumulates the discrepancies of a single reconciliation run.
// It is scoped to one run and is not safe for concurrent use; parallel runs
// must each own their own tracker.
type Tracker struct {
	runID         string
	discrepancies []domain.Discrepancy
	logger        *logger.Logger
}

// New creates a tracker bound to a run ID. An 8-character identifier is
// generated when none is supplied.
func New(runID string, log *logger.Logger) *Tracker {
	if runID == "" {
		runID = uuid.NewString()[:8]
	}

	t := &Tracker{
		runID:  runID,
		logger: log,
	}

	log.Info(context.Background(), "Discrepancy tracker initialized",
		"run_id", runID,
	)

	return t
}

func (t *Tracker) RunID() string {
	return t.runID
}

func (t *Tracker) Count() int {
	return len(t.discrepancies)
}

// nextID issues the sequential discrepancy ID. Sequence numbers are
// 1-based, zero-padded to four digits, and reflect insertion order.
func (t *Tracker) nextID() string {
	return fmt.Sprintf("DISC-%s-%04d", t.runID, len(t.discrepancies)+1)
}

// RecordMissing records a transaction present in the source system but
// absent from the target system.
func (t *Tracker) RecordMissing(ctx context.Context, transactionID, sourceSystem, targetSystem string, transactionDetails map[string]any, severity domain.Severity) domain.Discrepancy {
	d := domain.Discrepancy{
		ID:            t.nextID(),
		Kind:          domain.KindMissingRecord,
		Severity:      severity,
		TransactionID: transactionID,
		Description:   fmt.Sprintf("Transaction %s missing in %s", transactionID, targetSystem),
		SourceSystem:  sourceSystem,
		TargetSystem:  targetSystem,
		Details: map[string]any{
			"transaction": copyRecord(transactionDetails),
			"expected_in": targetSystem,
			"present_in":  sourceSystem,
		},
		Timestamp: time.Now(),
	}
	t.discrepancies = append(t.discrepancies, d)

	t.logger.Warn(ctx, "Missing record",
		"discrepancy_id", d.ID,
		"transaction_id", transactionID,
		"present_in", sourceSystem,
		"missing_in", targetSystem,
		"amount", displayField(transactionDetails, "amount"),
		"currency", displayField(transactionDetails, "currency"),
	)

	return d
}

// RecordUnmatched records a transaction present in both systems whose
// compared fields disagree. A mismatch on a critical field (amount or
// currency) forces the severity to HIGH regardless of the supplied value.
func (t *Tracker) RecordUnmatched(ctx context.Context, transactionID, sourceSystem, targetSystem string, sourceDetails, targetDetails map[string]any, fieldDifferences []domain.FieldDiff, severity domain.Severity) domain.Discrepancy {
	mismatched := make([]string, 0, len(fieldDifferences))
	for _, diff := range fieldDifferences {
		mismatched = append(mismatched, diff.Field)
		if domain.IsCriticalField(diff.Field) {
			severity = domain.SeverityHigh
		}
	}

	d := domain.Discrepancy{
		ID:            t.nextID(),
		Kind:          domain.KindUnmatchedTransaction,
		Severity:      severity,
		TransactionID: transactionID,
		Description:   fmt.Sprintf("Transaction %s has %d field mismatch(es)", transactionID, len(fieldDifferences)),
		SourceSystem:  sourceSystem,
		TargetSystem:  targetSystem,
		Details: map[string]any{
			"source_transaction": copyRecord(sourceDetails),
			"target_transaction": copyRecord(targetDetails),
			"field_differences":  fieldDifferences,
			"mismatched_fields":  mismatched,
		},
		Timestamp: time.Now(),
	}
	t.discrepancies = append(t.discrepancies, d)

	t.logger.Warn(ctx, "Unmatched transaction",
		"discrepancy_id", d.ID,
		"transaction_id", transactionID,
		"mismatched_fields", strings.Join(mismatched, ", "),
		"severity", string(d.Severity),
	)

	return d
}

// RecordDuplicate records a transaction that appears occurrenceCount times
// in one system.
func (t *Tracker) RecordDuplicate(ctx context.Context, transactionID, system string, occurrenceCount int, transactionDetails map[string]any, allOccurrences []map[string]any, severity domain.Severity) domain.Discrepancy {
	occurrences := make([]map[string]any, 0, len(allOccurrences))
	for _, occ := range allOccurrences {
		occurrences = append(occurrences, copyRecord(occ))
	}

	d := domain.Discrepancy{
		ID:            t.nextID(),
		Kind:          domain.KindDuplicateRecord,
		Severity:      severity,
		TransactionID: transactionID,
		Description:   fmt.Sprintf("Transaction %s appears %d times in %s", transactionID, occurrenceCount, system),
		SourceSystem:  system,
		TargetSystem:  system,
		Details: map[string]any{
			"occurrence_count":    occurrenceCount,
			"primary_transaction": copyRecord(transactionDetails),
			"all_occurrences":     occurrences,
			"duplicate_count":     occurrenceCount - 1,
		},
		Timestamp: time.Now(),
	}
	t.discrepancies = append(t.discrepancies, d)

	t.logger.Warn(ctx, "Duplicate record",
		"discrepancy_id", d.ID,
		"transaction_id", transactionID,
		"occurrence_count", occurrenceCount,
		"system", system,
		"amount", displayField(transactionDetails, "amount"),
		"currency", displayField(transactionDetails, "currency"),
	)

	return d
}

// RecordCountDiscrepancy records a volume-level mismatch between the two
// systems. Severity escalates with the relative difference: above 10% it
// becomes HIGH, above 25% CRITICAL (both bounds exclusive).
func (t *Tracker) RecordCountDiscrepancy(ctx context.Context, sourceSystem, targetSystem string, sourceCount, targetCount int, category string, severity domain.Severity) domain.Discrepancy {
	if category == "" {
		category = "total"
	}

	difference := sourceCount - targetCount
	if difference < 0 {
		difference = -difference
	}
	denom := sourceCount
	if denom < 1 {
		denom = 1
	}
	percentage := float64(difference) / float64(denom) * 100

	if percentage > 10 {
		severity = domain.SeverityHigh
	}
	if percentage > 25 {
		severity = domain.SeverityCritical
	}

	moreIn := targetSystem
	if sourceCount > targetCount {
		moreIn = sourceSystem
	}

	d := domain.Discrepancy{
		ID:           t.nextID(),
		Kind:         domain.KindCountDiscrepancy,
		Severity:     severity,
		Description:  fmt.Sprintf("%s count mismatch: %d vs %d", titleCase(category), sourceCount, targetCount),
		SourceSystem: sourceSystem,
		TargetSystem: targetSystem,
		Details: map[string]any{
			"category":              category,
			"source_count":          sourceCount,
			"target_count":          targetCount,
			"difference":            difference,
			"percentage_difference": domain.Round2(percentage),
			"more_in":               moreIn,
		},
		Timestamp: time.Now(),
	}
	t.discrepancies = append(t.discrepancies, d)

	t.logger.Warn(ctx, "Count discrepancy",
		"discrepancy_id", d.ID,
		"category", category,
		"source_count", sourceCount,
		"target_count", targetCount,
		"difference", difference,
		"percentage_difference", domain.Round2(percentage),
	)

	return d
}

// ExceptionList returns all recorded discrepancies sorted by severity
// (CRITICAL first), then creation timestamp. The stable sort over the
// insertion-ordered slice makes ties deterministic.
func (t *Tracker) ExceptionList() []domain.Discrepancy {
	out := make([]domain.Discrepancy, len(t.discrepancies))
	copy(out, t.discrepancies)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() < out[j].Severity.Rank()
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out
}

// Summary returns the aggregate snapshot of everything recorded so far.
func (t *Tracker) Summary() domain.DiscrepancySummary {
	summary := domain.DiscrepancySummary{
		RunID:              t.runID,
		TotalDiscrepancies: len(t.discrepancies),
	}

	for _, d := range t.discrepancies {
		switch d.Kind {
		case domain.KindMissingRecord:
			summary.ByKind.MissingRecords++
		case domain.KindUnmatchedTransaction:
			summary.ByKind.UnmatchedTransactions++
		case domain.KindDuplicateRecord:
			summary.ByKind.DuplicateRecords++
		case domain.KindCountDiscrepancy:
			summary.ByKind.CountDiscrepancies++
		}

		switch d.Severity {
		case domain.SeverityCritical:
			summary.BySeverity.Critical++
		case domain.SeverityHigh:
			summary.BySeverity.High++
		case domain.SeverityMedium:
			summary.BySeverity.Medium++
		case domain.SeverityLow:
			summary.BySeverity.Low++
		}
	}

	return summary
}

func copyRecord(record map[string]any) map[string]any {
	if record == nil {
		return nil
	}
	out := make(map[string]any, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}

// displayField renders an optional field for log output, with an N/A
// placeholder when absent. Display only; never used for comparison.
func displayField(record map[string]any, key string) string {
	if record == nil {
		return "N/A"
	}
	v, ok := record[key]
	if !ok || v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%v", v)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
