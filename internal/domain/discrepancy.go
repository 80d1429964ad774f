package domain

import (
	"fmt"
	"time"
)

// DiscrepancyKind is the closed taxonomy of reconciliation findings.
type DiscrepancyKind string

const (
	KindMissingRecord        DiscrepancyKind = "missing_record"
	KindUnmatchedTransaction DiscrepancyKind = "unmatched_transaction"
	KindDuplicateRecord      DiscrepancyKind = "duplicate_record"
	KindCountDiscrepancy     DiscrepancyKind = "count_discrepancy"
)

// Severity is ordered: CRITICAL > HIGH > MEDIUM > LOW.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank returns the sort rank of a severity, CRITICAL first. Unknown values
// sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// ParseSeverity validates a severity value coming from an external caller,
// e.g. a query parameter.
func ParseSeverity(v string) (Severity, error) {
	s := Severity(v)
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, v)
}

// FieldDiff records one field whose values disagree between the two
// systems. Values are the string-normalized forms that were compared.
type FieldDiff struct {
	Field       string `json:"field"`
	SourceValue string `json:"source_value"`
	TargetValue string `json:"target_value"`
}

// Discrepancy is one recorded finding. It is immutable once created; the
// details payload embeds copies of the relevant records so the entry stays
// valid for audit even if the source data later changes.
type Discrepancy struct {
	ID            string          `json:"discrepancy_id"`
	Kind          DiscrepancyKind `json:"discrepancy_type"`
	Severity      Severity        `json:"severity"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Description   string          `json:"description"`
	SourceSystem  string          `json:"source_system"`
	TargetSystem  string          `json:"target_system"`
	Details       map[string]any  `json:"details"`
	Timestamp     time.Time       `json:"timestamp"`
}

// KindCounts breaks down discrepancies by kind.
type KindCounts struct {
	MissingRecords        int `json:"missing_records"`
	UnmatchedTransactions int `json:"unmatched_transactions"`
	DuplicateRecords      int `json:"duplicate_records"`
	CountDiscrepancies    int `json:"count_discrepancies"`
}

// SeverityCounts breaks down discrepancies by severity.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// DiscrepancySummary is the tracker's aggregate snapshot for one run.
type DiscrepancySummary struct {
	RunID              string         `json:"run_id"`
	TotalDiscrepancies int            `json:"total_discrepancies"`
	ByKind             KindCounts     `json:"by_type"`
	BySeverity         SeverityCounts `json:"by_severity"`
}
