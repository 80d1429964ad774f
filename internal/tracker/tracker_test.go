package tracker

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydesk/swiftrecon/internal/domain"
	"github.com/paydesk/swiftrecon/pkg/logger"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	return New("RUN-TEST", logger.NewNop())
}

func TestNew_GeneratesRunIDWhenEmpty(t *testing.T) {
	tr := New("", logger.NewNop())
	assert.Len(t, tr.RunID(), 8)
}

func TestNew_KeepsSuppliedRunID(t *testing.T) {
	tr := New("RUN-CUSTOM", logger.NewNop())
	assert.Equal(t, "RUN-CUSTOM", tr.RunID())
}

func TestTracker_SequentialIDs(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		txnID := fmt.Sprintf("TXN%06d", i+1)
		tr.RecordMissing(ctx, txnID, "Payment Platform", "Compliance System", nil, domain.SeverityHigh)
	}

	list := tr.ExceptionList()
	require.Len(t, list, 3)
	assert.Equal(t, "DISC-RUN-TEST-0001", list[0].ID)
	assert.Equal(t, "DISC-RUN-TEST-0002", list[1].ID)
	assert.Equal(t, "DISC-RUN-TEST-0003", list[2].ID)
}

func TestRecordMissing(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	details := map[string]any{"amount": "100.00", "currency": "USD"}
	d := tr.RecordMissing(ctx, "TXN000001", "Payment Platform", "Compliance System", details, domain.SeverityHigh)

	assert.Equal(t, domain.KindMissingRecord, d.Kind)
	assert.Equal(t, domain.SeverityHigh, d.Severity)
	assert.Equal(t, "TXN000001", d.TransactionID)
	assert.Equal(t, "Compliance System", d.Details["expected_in"])
	assert.Equal(t, "Payment Platform", d.Details["present_in"])
	assert.Equal(t, details, d.Details["transaction"])
	assert.Equal(t, 1, tr.Count())
}

func TestRecordMissing_CopiesDetails(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	details := map[string]any{"amount": "100.00"}
	d := tr.RecordMissing(ctx, "TXN000001", "A", "B", details, domain.SeverityHigh)

	details["amount"] = "999.99"
	stored := d.Details["transaction"].(map[string]any)
	assert.Equal(t, "100.00", stored["amount"])
}

func TestRecordUnmatched_EscalatesCriticalField(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	diffs := []domain.FieldDiff{
		{Field: "amount", SourceValue: "100.00", TargetValue: "200.00"},
	}
	d := tr.RecordUnmatched(ctx, "TXN000001", "A", "B", nil, nil, diffs, domain.SeverityLow)

	assert.Equal(t, domain.SeverityHigh, d.Severity)
	assert.Equal(t, []string{"amount"}, d.Details["mismatched_fields"])
}

func TestRecordUnmatched_KeepsSeverityForNonCriticalFields(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	diffs := []domain.FieldDiff{
		{Field: "debtor_name", SourceValue: "Acme", TargetValue: "Acme LTD"},
	}
	d := tr.RecordUnmatched(ctx, "TXN000001", "A", "B", nil, nil, diffs, domain.SeverityMedium)

	assert.Equal(t, domain.SeverityMedium, d.Severity)
}

func TestRecordUnmatched_DoesNotDowngradeCritical(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	diffs := []domain.FieldDiff{
		{Field: "currency", SourceValue: "USD", TargetValue: "EUR"},
	}
	d := tr.RecordUnmatched(ctx, "TXN000001", "A", "B", nil, nil, diffs, domain.SeverityCritical)

	// Critical fields force HIGH even when the caller supplied CRITICAL.
	assert.Equal(t, domain.SeverityHigh, d.Severity)
}

func TestRecordDuplicate(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	occurrences := []map[string]any{
		{"amount": "50.00"},
		{"amount": "50.00"},
		{"amount": "50.00"},
	}
	d := tr.RecordDuplicate(ctx, "TXN000001", "Compliance System", 3, occurrences[0], occurrences, domain.SeverityHigh)

	assert.Equal(t, domain.KindDuplicateRecord, d.Kind)
	assert.Equal(t, 3, d.Details["occurrence_count"])
	assert.Equal(t, 2, d.Details["duplicate_count"])
	assert.Equal(t, "Compliance System", d.SourceSystem)
	assert.Equal(t, "Compliance System", d.TargetSystem)
}

func TestRecordCountDiscrepancy_SeverityThresholds(t *testing.T) {
	tests := []struct {
		name        string
		sourceCount int
		targetCount int
		supplied    domain.Severity
		want        domain.Severity
	}{
		{"below 10 percent keeps supplied", 100, 95, domain.SeverityMedium, domain.SeverityMedium},
		{"exactly 10 percent keeps supplied", 100, 90, domain.SeverityMedium, domain.SeverityMedium},
		{"above 10 percent escalates to high", 100, 89, domain.SeverityMedium, domain.SeverityHigh},
		{"exactly 25 percent stays high", 100, 75, domain.SeverityMedium, domain.SeverityHigh},
		{"above 25 percent escalates to critical", 100, 74, domain.SeverityMedium, domain.SeverityCritical},
		{"low supplied still escalates", 100, 50, domain.SeverityLow, domain.SeverityCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestTracker(t)
			d := tr.RecordCountDiscrepancy(context.Background(), "A", "B", tt.sourceCount, tt.targetCount, "total_transactions", tt.supplied)
			assert.Equal(t, tt.want, d.Severity)
		})
	}
}

func TestRecordCountDiscrepancy_Details(t *testing.T) {
	tr := newTestTracker(t)
	d := tr.RecordCountDiscrepancy(context.Background(), "Payment Platform", "Compliance System", 100, 120, "total_transactions", domain.SeverityMedium)

	assert.Equal(t, 100, d.Details["source_count"])
	assert.Equal(t, 120, d.Details["target_count"])
	assert.Equal(t, 20, d.Details["difference"])
	assert.Equal(t, 20.0, d.Details["percentage_difference"])
	assert.Equal(t, "Compliance System", d.Details["more_in"])
	assert.Empty(t, d.TransactionID)
}

func TestRecordCountDiscrepancy_ZeroSourceCount(t *testing.T) {
	tr := newTestTracker(t)
	d := tr.RecordCountDiscrepancy(context.Background(), "A", "B", 0, 5, "total_transactions", domain.SeverityMedium)

	// Denominator floors at 1, so 5/1 = 500% escalates to CRITICAL.
	assert.Equal(t, domain.SeverityCritical, d.Severity)
	assert.Equal(t, 500.0, d.Details["percentage_difference"])
}

func TestExceptionList_OrderedBySeverityThenInsertion(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	tr.RecordUnmatched(ctx, "TXN000001", "A", "B", nil, nil, []domain.FieldDiff{
		{Field: "value_date", SourceValue: "2026-01-01", TargetValue: "2026-01-02"},
	}, domain.SeverityMedium)
	tr.RecordMissing(ctx, "TXN000002", "A", "B", nil, domain.SeverityHigh)
	tr.RecordCountDiscrepancy(ctx, "A", "B", 100, 50, "total_transactions", domain.SeverityMedium)
	tr.RecordMissing(ctx, "TXN000003", "A", "B", nil, domain.SeverityHigh)

	list := tr.ExceptionList()
	require.Len(t, list, 4)

	assert.Equal(t, domain.SeverityCritical, list[0].Severity)
	assert.Equal(t, domain.KindCountDiscrepancy, list[0].Kind)

	// Equal severities keep insertion order.
	assert.Equal(t, "TXN000002", list[1].TransactionID)
	assert.Equal(t, "TXN000003", list[2].TransactionID)

	assert.Equal(t, domain.SeverityMedium, list[3].Severity)
}

func TestExceptionList_CopyDoesNotExposeInternalSlice(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	tr.RecordMissing(ctx, "TXN000001", "A", "B", nil, domain.SeverityHigh)

	list := tr.ExceptionList()
	list[0].TransactionID = "mutated"

	fresh := tr.ExceptionList()
	assert.Equal(t, "TXN000001", fresh[0].TransactionID)
}

func TestSummary(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()

	tr.RecordMissing(ctx, "TXN000001", "A", "B", nil, domain.SeverityHigh)
	tr.RecordMissing(ctx, "TXN000002", "A", "B", nil, domain.SeverityHigh)
	tr.RecordDuplicate(ctx, "TXN000003", "B", 2, nil, nil, domain.SeverityHigh)
	tr.RecordUnmatched(ctx, "TXN000004", "A", "B", nil, nil, []domain.FieldDiff{
		{Field: "value_date", SourceValue: "a", TargetValue: "b"},
	}, domain.SeverityMedium)
	tr.RecordCountDiscrepancy(ctx, "A", "B", 100, 70, "total_transactions", domain.SeverityMedium)

	summary := tr.Summary()
	assert.Equal(t, "RUN-TEST", summary.RunID)
	assert.Equal(t, 5, summary.TotalDiscrepancies)
	assert.Equal(t, 2, summary.ByKind.MissingRecords)
	assert.Equal(t, 1, summary.ByKind.UnmatchedTransactions)
	assert.Equal(t, 1, summary.ByKind.DuplicateRecords)
	assert.Equal(t, 1, summary.ByKind.CountDiscrepancies)
	assert.Equal(t, 1, summary.BySeverity.Critical)
	assert.Equal(t, 3, summary.BySeverity.High)
	assert.Equal(t, 1, summary.BySeverity.Medium)
	assert.Equal(t, 0, summary.BySeverity.Low)

	// Summary is a pure read.
	again := tr.Summary()
	assert.Equal(t, summary, again)
}

func TestSummary_Empty(t *testing.T) {
	tr := newTestTracker(t)

	summary := tr.Summary()
	assert.Equal(t, 0, summary.TotalDiscrepancies)
	assert.Empty(t, tr.ExceptionList())
}
