package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydesk/swiftrecon/internal/domain"
)

func pacs008(txnID, amount, currency, valueDate, debtorName string) domain.Transaction {
	return domain.Transaction{
		TransactionID: txnID,
		MessageType:   domain.MessageTypePacs008,
		Amount:        amount,
		Currency:      currency,
		ValueDate:     valueDate,
		Details: domain.CustomerCreditTransfer{
			DebtorName:      debtorName,
			DebtorAccount:   "GB1234567812345678",
			CreditorName:    "Acme Corporation",
			CreditorAccount: "GB8765432187654321",
			EndToEndID:      "E2E-" + txnID,
		},
		Raw: map[string]any{
			"transaction_id": txnID,
			"message_type":   "pacs.008",
			"amount":         amount,
			"currency":       currency,
			"value_date":     valueDate,
			"debtor_name":    debtorName,
		},
	}
}

func mt202(txnID, amount, currency, ordering string) domain.Transaction {
	return domain.Transaction{
		TransactionID: txnID,
		MessageType:   domain.MessageTypeMT202,
		Amount:        amount,
		Currency:      currency,
		ValueDate:     "2026-08-01",
		Details: domain.LegacyInstitutionTransfer{
			OrderingInstitution:    ordering,
			BeneficiaryInstitution: "HSBCGB2LXXX",
			TransactionReference:   "MT202-" + txnID,
		},
	}
}

func TestNew_RejectsEmptyTransactionID(t *testing.T) {
	source := []domain.Transaction{{TransactionID: ""}}

	_, err := New(source, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	_, err = New(nil, source)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

func TestFindMissing(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
		pacs008("TXN000002", "200.00", "EUR", "2026-08-01", "Global Trading Ltd"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	missing := m.FindMissing()
	require.Len(t, missing, 1)
	assert.Equal(t, "TXN000002", missing[0].TransactionID)
	assert.Equal(t, domain.SeverityHigh, missing[0].Severity)
	assert.Equal(t, "Missing in target system", missing[0].Issue)
	assert.Equal(t, "200.00", missing[0].Amount)
}

func TestFindMissing_NoneWhenAllPresent(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	assert.Empty(t, m.FindMissing())
}

func TestFindDuplicates(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	duplicates := m.FindDuplicates()
	require.Len(t, duplicates, 1)
	assert.Equal(t, "TXN000001", duplicates[0].TransactionID)
	assert.Equal(t, 3, duplicates[0].OccurrenceCount)
	assert.Len(t, duplicates[0].TargetOccurrences, 3)
	assert.Equal(t, domain.SeverityHigh, duplicates[0].Severity)
}

func TestFindDuplicates_TargetOnlyIDNotFlagged(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
		pacs008("TXN000099", "50.00", "USD", "2026-08-01", "Acme Corporation"),
		pacs008("TXN000099", "50.00", "USD", "2026-08-01", "Acme Corporation"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	// Duplicate IDs with no source counterpart are outside this pass.
	assert.Empty(t, m.FindDuplicates())
}

func TestFindDifferences_CriticalFieldIsHigh(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "150.00", "USD", "2026-08-01", "Acme Corporation"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	differences := m.FindDifferences()
	require.Len(t, differences, 1)
	assert.Equal(t, domain.SeverityHigh, differences[0].Severity)
	require.Len(t, differences[0].Differences, 1)
	assert.Equal(t, "amount", differences[0].Differences[0].Field)
	assert.Equal(t, "100.00", differences[0].Differences[0].SourceValue)
	assert.Equal(t, "150.00", differences[0].Differences[0].TargetValue)
}

func TestFindDifferences_NonCriticalFieldIsMedium(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation LTD"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	differences := m.FindDifferences()
	require.Len(t, differences, 1)
	assert.Equal(t, domain.SeverityMedium, differences[0].Severity)
	assert.Equal(t, "debtor_name", differences[0].Differences[0].Field)
}

func TestFindDifferences_ComparesFirstOccurrenceOnly(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
		pacs008("TXN000001", "999.99", "EUR", "2026-08-01", "Someone Else"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	// The second occurrence differs but only the first is compared; the
	// repetition itself is the duplicate pass's finding.
	assert.Empty(t, m.FindDifferences())
	assert.Len(t, m.FindDuplicates(), 1)
}

func TestFindDifferences_StringComparisonIsLiteral(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100", "USD", "2026-08-01", "Acme Corporation"),
	}
	target := []domain.Transaction{
		pacs008("TXN000001", "100.0", "USD", "2026-08-01", "Acme Corporation"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	differences := m.FindDifferences()
	require.Len(t, differences, 1)
	assert.Equal(t, "amount", differences[0].Differences[0].Field)
}

func TestCompareFields_SkipsAbsentFields(t *testing.T) {
	source := pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation")
	target := pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation")

	// Target side never captured the debtor name.
	details := target.Details.(domain.CustomerCreditTransfer)
	details.DebtorName = ""
	target.Details = details

	diffs := CompareFields(source, target)
	assert.Empty(t, diffs)
}

func TestCompareFields_CrossVariantDegradesToCommonFields(t *testing.T) {
	source := pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation")
	target := mt202("TXN000001", "100.00", "USD", "CHASUS33XXX")
	target.ValueDate = source.ValueDate

	// No type-specific names overlap, so only common fields compare.
	diffs := CompareFields(source, target)
	assert.Empty(t, diffs)
}

func TestCompareFields_NilDetailsComparesCommonOnly(t *testing.T) {
	source := domain.Transaction{
		TransactionID: "TXN000001",
		MessageType:   "UNKNOWN",
		Amount:        "100.00",
		Currency:      "USD",
		ValueDate:     "2026-08-01",
	}
	target := source
	target.Currency = "EUR"

	diffs := CompareFields(source, target)
	require.Len(t, diffs, 1)
	assert.Equal(t, "currency", diffs[0].Field)
}

func TestMatcher_PassesAreDisjoint(t *testing.T) {
	source := []domain.Transaction{
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
		pacs008("TXN000002", "200.00", "EUR", "2026-08-01", "Global Trading Ltd"),
		pacs008("TXN000003", "300.00", "GBP", "2026-08-01", "TechVentures Inc"),
		pacs008("TXN000004", "400.00", "CHF", "2026-08-01", "Worldwide Logistics"),
	}
	target := []domain.Transaction{
		// TXN000001 matches.
		pacs008("TXN000001", "100.00", "USD", "2026-08-01", "Acme Corporation"),
		// TXN000002 missing.
		// TXN000003 differs.
		pacs008("TXN000003", "333.00", "GBP", "2026-08-01", "TechVentures Inc"),
		// TXN000004 duplicated.
		pacs008("TXN000004", "400.00", "CHF", "2026-08-01", "Worldwide Logistics"),
		pacs008("TXN000004", "400.00", "CHF", "2026-08-01", "Worldwide Logistics"),
	}

	m, err := New(source, target)
	require.NoError(t, err)

	missing := m.FindMissing()
	duplicates := m.FindDuplicates()
	differences := m.FindDifferences()

	require.Len(t, missing, 1)
	require.Len(t, duplicates, 1)
	require.Len(t, differences, 1)

	seen := map[string]int{}
	for _, f := range missing {
		seen[f.TransactionID]++
	}
	for _, f := range duplicates {
		seen[f.TransactionID]++
	}
	for _, f := range differences {
		seen[f.TransactionID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "transaction %s flagged by more than one pass", id)
	}
}

func TestMatcher_EmptyCollections(t *testing.T) {
	m, err := New(nil, nil)
	require.NoError(t, err)

	assert.Empty(t, m.FindMissing())
	assert.Empty(t, m.FindDuplicates())
	assert.Empty(t, m.FindDifferences())
}
