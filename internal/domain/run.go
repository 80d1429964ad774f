package domain

import (
	"math"
	"time"
)

// RunStatus is the reconciliation run state machine. A run starts in
// STARTED, moves to IN_PROGRESS when a tracker is attached, and ends in
// exactly one terminal state.
type RunStatus string

const (
	RunStatusStarted                    RunStatus = "STARTED"
	RunStatusInProgress                 RunStatus = "IN_PROGRESS"
	RunStatusCompletedSuccess           RunStatus = "COMPLETED_SUCCESS"
	RunStatusCompletedWithDiscrepancies RunStatus = "COMPLETED_WITH_DISCREPANCIES"
	RunStatusFailed                     RunStatus = "FAILED"
)

// Terminal reports whether no further transition is allowed.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompletedSuccess, RunStatusCompletedWithDiscrepancies, RunStatusFailed:
		return true
	}
	return false
}

// Success reports whether the run completed, with or without
// discrepancies. Discrepancies are findings, not failures.
func (s RunStatus) Success() bool {
	return s == RunStatusCompletedSuccess || s == RunStatusCompletedWithDiscrepancies
}

// VolumeComparison compares record volumes between the two systems. The
// derived fields are computed at construction and never mutated.
type VolumeComparison struct {
	SourceSystem     string  `json:"source_system"`
	TargetSystem     string  `json:"target_system"`
	SourceTotal      int     `json:"source_total"`
	TargetTotal      int     `json:"target_total"`
	MatchedCount     int     `json:"matched_count"`
	UnmatchedCount   int     `json:"unmatched_count"`
	VolumeDifference int     `json:"volume_difference"`
	MatchRate        float64 `json:"match_rate"`
}

// NewVolumeComparison derives unmatched count, volume difference and match
// rate from the raw totals. UnmatchedCount is kept signed: a negative value
// means the caller reported more matches than source records, which is
// surfaced as an anomaly rather than clamped away.
func NewVolumeComparison(sourceSystem, targetSystem string, sourceTotal, targetTotal, matchedCount int) VolumeComparison {
	diff := sourceTotal - targetTotal
	if diff < 0 {
		diff = -diff
	}
	denom := sourceTotal
	if denom < 1 {
		denom = 1
	}
	rate := float64(matchedCount) / float64(denom) * 100
	return VolumeComparison{
		SourceSystem:     sourceSystem,
		TargetSystem:     targetSystem,
		SourceTotal:      sourceTotal,
		TargetTotal:      targetTotal,
		MatchedCount:     matchedCount,
		UnmatchedCount:   sourceTotal - matchedCount,
		VolumeDifference: diff,
		MatchRate:        Round2(rate),
	}
}

// Round2 rounds to two decimal places, used for percentages in reports.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RunRecord is the full audit record of one reconciliation run.
type RunRecord struct {
	RunID              string             `json:"run_id"`
	Status             RunStatus          `json:"status"`
	StartTimestamp     time.Time          `json:"start_timestamp"`
	EndTimestamp       *time.Time         `json:"end_timestamp"`
	DurationSeconds    *float64           `json:"duration_seconds"`
	VolumeComparison   *VolumeComparison  `json:"volume_comparison"`
	DiscrepancySummary DiscrepancySummary `json:"discrepancy_summary"`
	ExceptionList      []Discrepancy      `json:"exception_list"`
	Success            bool               `json:"success"`
	ErrorMessage       string             `json:"error_message,omitempty"`
}

// RunSummary is the headline block of a reconciliation result.
type RunSummary struct {
	RunID                       string             `json:"run_id"`
	TotalSourceTransactions     int                `json:"total_source_transactions"`
	TotalTargetTransactions     int                `json:"total_target_transactions"`
	MatchedTransactions         int                `json:"matched_transactions"`
	MissingInTarget             int                `json:"missing_in_target"`
	TransactionsWithDifferences int                `json:"transactions_with_differences"`
	DuplicateTransactions       int                `json:"duplicate_transactions"`
	ReconciliationDate          time.Time          `json:"reconciliation_date"`
	DiscrepancySummary          DiscrepancySummary `json:"discrepancy_summary"`
}

// ReconciliationResult bundles everything one run produced.
type ReconciliationResult struct {
	Summary                     RunSummary          `json:"summary"`
	MissingTransactions         []MissingFinding    `json:"missing_transactions"`
	DuplicateTransactions       []DuplicateFinding  `json:"duplicate_transactions"`
	TransactionsWithDifferences []DifferenceFinding `json:"transactions_with_differences"`
	ExceptionList               []Discrepancy       `json:"exception_list"`
}
