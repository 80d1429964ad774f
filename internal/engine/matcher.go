package engine

import (
	"fmt"

	"github.com/paydesk/swiftrecon/internal/domain"
)

// Matcher groups and compares two fully materialized transaction
// collections. Identity is equality of transaction_id; there is no fuzzy
// matching. All passes iterate in first-seen order so results are
// deterministic.
type Matcher struct {
	source []domain.Transaction
	target []domain.Transaction

	// sourceIndex keeps the first-seen record per ID. Duplicate source IDs
	// are the caller's pre-existing data and are not flagged here.
	sourceIndex map[string]domain.Transaction
	sourceIDs   []string

	// targetIndex preserves every occurrence per ID.
	targetIndex map[string][]domain.Transaction
	targetIDs   []string
}

// New indexes both collections. Records without a transaction ID fail
// validation; identity fields are never defaulted.
func New(source, target []domain.Transaction) (*Matcher, error) {
	m := &Matcher{
		source:      source,
		target:      target,
		sourceIndex: make(map[string]domain.Transaction, len(source)),
		targetIndex: make(map[string][]domain.Transaction, len(target)),
	}

	for i, txn := range source {
		if txn.TransactionID == "" {
			return nil, fmt.Errorf("source record %d: %w: empty transaction_id", i, domain.ErrInvalidRecord)
		}
		if _, seen := m.sourceIndex[txn.TransactionID]; !seen {
			m.sourceIndex[txn.TransactionID] = txn
			m.sourceIDs = append(m.sourceIDs, txn.TransactionID)
		}
	}

	for i, txn := range target {
		if txn.TransactionID == "" {
			return nil, fmt.Errorf("target record %d: %w: empty transaction_id", i, domain.ErrInvalidRecord)
		}
		if _, seen := m.targetIndex[txn.TransactionID]; !seen {
			m.targetIDs = append(m.targetIDs, txn.TransactionID)
		}
		m.targetIndex[txn.TransactionID] = append(m.targetIndex[txn.TransactionID], txn)
	}

	return m, nil
}

// FindMissing returns a finding for every source transaction whose ID does
// not appear in the target collection.
func (m *Matcher) FindMissing() []domain.MissingFinding {
	missing := make([]domain.MissingFinding, 0)

	for _, id := range m.sourceIDs {
		if _, ok := m.targetIndex[id]; ok {
			continue
		}
		txn := m.sourceIndex[id]
		missing = append(missing, domain.MissingFinding{
			TransactionID: id,
			MessageType:   txn.MessageType,
			Amount:        txn.Amount,
			Currency:      txn.Currency,
			ValueDate:     txn.ValueDate,
			SourceDetails: txn.CopyRaw(),
			Issue:         "Missing in target system",
			Severity:      domain.SeverityHigh,
		})
	}

	return missing
}

// FindDuplicates returns a finding for every target ID that occurs more
// than once and also exists in the source. Target-only duplicate IDs with
// no source counterpart are deliberately not flagged by this pass.
func (m *Matcher) FindDuplicates() []domain.DuplicateFinding {
	duplicates := make([]domain.DuplicateFinding, 0)

	for _, id := range m.targetIDs {
		occurrences := m.targetIndex[id]
		if len(occurrences) <= 1 {
			continue
		}
		sourceTxn, ok := m.sourceIndex[id]
		if !ok {
			continue
		}

		targetRaws := make([]map[string]any, 0, len(occurrences))
		for _, occ := range occurrences {
			targetRaws = append(targetRaws, occ.CopyRaw())
		}

		duplicates = append(duplicates, domain.DuplicateFinding{
			TransactionID:     id,
			MessageType:       sourceTxn.MessageType,
			Amount:            sourceTxn.Amount,
			Currency:          sourceTxn.Currency,
			ValueDate:         sourceTxn.ValueDate,
			OccurrenceCount:   len(occurrences),
			SourceDetails:     sourceTxn.CopyRaw(),
			TargetOccurrences: targetRaws,
			Issue:             fmt.Sprintf("Appears %d times in target system", len(occurrences)),
			Severity:          domain.SeverityHigh,
		})
	}

	return duplicates
}

// FindDifferences compares every source transaction against the first
// target occurrence of the same ID. Subsequent occurrences are exclusively
// the duplicate pass's concern. Severity is HIGH when a critical field
// differs, MEDIUM otherwise.
func (m *Matcher) FindDifferences() []domain.DifferenceFinding {
	differences := make([]domain.DifferenceFinding, 0)

	for _, id := range m.sourceIDs {
		occurrences, ok := m.targetIndex[id]
		if !ok {
			continue
		}
		sourceTxn := m.sourceIndex[id]
		targetTxn := occurrences[0]

		diffs := CompareFields(sourceTxn, targetTxn)
		if len(diffs) == 0 {
			continue
		}

		severity := domain.SeverityMedium
		for _, diff := range diffs {
			if domain.IsCriticalField(diff.Field) {
				severity = domain.SeverityHigh
				break
			}
		}

		differences = append(differences, domain.DifferenceFinding{
			TransactionID: id,
			MessageType:   sourceTxn.MessageType,
			Amount:        sourceTxn.Amount,
			Currency:      sourceTxn.Currency,
			ValueDate:     sourceTxn.ValueDate,
			Differences:   diffs,
			SourceDetails: sourceTxn.CopyRaw(),
			TargetDetails: targetTxn.CopyRaw(),
			Issue:         fmt.Sprintf("%d field(s) mismatch", len(diffs)),
			Severity:      severity,
		})
	}

	return differences
}

// CompareFields compares the fixed common fields plus the message-type
// specific set selected by the source record's variant. Comparison is
// string-normalized equality: numeric values were stringified at ingestion,
// so 100 and 100.0 differ on purpose.
func CompareFields(source, target domain.Transaction) []domain.FieldDiff {
	diffs := make([]domain.FieldDiff, 0)

	common := []struct {
		name   string
		source string
		target string
	}{
		{"amount", source.Amount, target.Amount},
		{"currency", source.Currency, target.Currency},
		{"value_date", source.ValueDate, target.ValueDate},
	}
	for _, field := range common {
		if field.source != field.target {
			diffs = append(diffs, domain.FieldDiff{
				Field:       field.name,
				SourceValue: field.source,
				TargetValue: field.target,
			})
		}
	}

	if source.Details == nil || target.Details == nil {
		return diffs
	}

	targetFields := make(map[string]string)
	for _, field := range target.Details.CompareFields() {
		targetFields[field.Name] = field.Value
	}

	// A type-specific field participates only when present on both sides.
	// If the two sides carry different variants, no names overlap and the
	// pass degrades to common fields only.
	for _, field := range source.Details.CompareFields() {
		if field.Value == "" {
			continue
		}
		targetValue, ok := targetFields[field.Name]
		if !ok || targetValue == "" {
			continue
		}
		if field.Value != targetValue {
			diffs = append(diffs, domain.FieldDiff{
				Field:       field.Name,
				SourceValue: field.Value,
				TargetValue: targetValue,
			})
		}
	}

	return diffs
}
