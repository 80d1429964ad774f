package datagen

import (
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paydesk/swiftrecon/internal/ingest"
)

func TestGenerate_SourceCounts(t *testing.T) {
	gen := New(42)

	source, target := gen.Generate(10)

	assert.Len(t, source, 40)
	assert.NotEmpty(t, target)

	types := map[string]int{}
	for _, txn := range source {
		types[txn["message_type"].(string)]++
	}
	assert.Equal(t, 10, types["pacs.008"])
	assert.Equal(t, 10, types["pacs.009"])
	assert.Equal(t, 10, types["MT103"])
	assert.Equal(t, 10, types["MT202"])
}

func TestGenerate_DeterministicWithSeed(t *testing.T) {
	a, _ := New(7).Generate(5)
	b, _ := New(7).Generate(5)

	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i]["transaction_id"], b[i]["transaction_id"])
		assert.Equal(t, a[i]["amount"], b[i]["amount"])
		assert.Equal(t, a[i]["currency"], b[i]["currency"])
	}
}

func TestGenerate_AmountsAreTwoDecimalStrings(t *testing.T) {
	source, target := New(1).Generate(10)

	pattern := regexp.MustCompile(`^\d+\.\d{2}$`)
	for _, txn := range source {
		assert.Regexp(t, pattern, txn["amount"])
	}
	for _, txn := range target {
		amount, ok := txn["amount"].(string)
		require.True(t, ok)
		// Perturbed amounts may go negative; strip the sign.
		if len(amount) > 0 && amount[0] == '-' {
			amount = amount[1:]
		}
		assert.Regexp(t, pattern, amount)
	}
}

func TestGenerate_ComplianceFormatDropsPlatformOnlyFields(t *testing.T) {
	source, target := New(3).Generate(20)
	require.NotEmpty(t, target)

	sourceByID := map[string]map[string]interface{}{}
	for _, txn := range source {
		sourceByID[txn["transaction_id"].(string)] = txn
	}

	for _, txn := range target {
		_, hasRemittance := txn["remittance_info"]
		assert.False(t, hasRemittance, "compliance records must not carry remittance_info")
		_, hasInstruction := txn["instruction_id"]
		assert.False(t, hasInstruction, "compliance records must not carry instruction_id")

		_, known := sourceByID[txn["transaction_id"].(string)]
		assert.True(t, known, "every compliance record derives from a source record")
	}
}

func TestWriteFiles_RoundTripsThroughIngestion(t *testing.T) {
	dir := t.TempDir()

	sourcePath, targetPath, err := New(11).WriteFiles(dir, 5)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, SourceFileName), sourcePath)
	assert.Equal(t, filepath.Join(dir, TargetFileName), targetPath)

	source, err := ingest.LoadCollectionFile(sourcePath)
	require.NoError(t, err)
	assert.Len(t, source, 20)

	target, err := ingest.LoadCollectionFile(targetPath)
	require.NoError(t, err)
	assert.NotEmpty(t, target)
}
