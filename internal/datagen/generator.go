package datagen

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Generator produces paired payment-platform and compliance ledgers with a
// controlled mix of reconciliation scenarios, for demos and load testing.
type Generator struct {
	rng        *rand.Rand
	currencies []string
	banks      []string
	companies  []string
}

// SourceFileName and TargetFileName are the default output names for the
// two generated ledgers.
const (
	SourceFileName = "payment_platform_transactions.json"
	TargetFileName = "compliance_transactions.json"
)

func New(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		currencies: []string{
			"USD", "EUR", "GBP", "JPY", "CHF",
		},
		banks: []string{
			"CHASUS33XXX", "DEUTDEFFXXX", "HSBCGB2LXXX", "BNPAFRPPXXX",
			"UBSWCHZHXXX", "CITIUS33XXX", "BARCGB22XXX", "CRESCHZZXXX",
		},
		companies: []string{
			"Global Trading Ltd", "Acme Corporation", "TechVentures Inc",
			"International Exports SA", "Finance Solutions GmbH", "Trading Partners LLC",
			"Continental Industries", "Worldwide Logistics", "Premium Services Ltd",
		},
	}
}

// Generate builds countPerType transactions of each message type and derives
// the compliance ledger from them with a 60/15/15/10 split of matching,
// missing, differing and duplicated records.
func (g *Generator) Generate(countPerType int) (source, target []map[string]interface{}) {
	source = make([]map[string]interface{}, 0, countPerType*4)
	target = make([]map[string]interface{}, 0, countPerType*4)

	builders := []func(txnID, amount, currency string) map[string]interface{}{
		g.buildPacs008,
		g.buildPacs009,
		g.buildMT103,
		g.buildMT202,
	}

	counter := 1
	for _, build := range builders {
		for i := 0; i < countPerType; i++ {
			txnID := fmt.Sprintf("TXN%06d", counter)
			counter++

			amount := g.amount()
			currency := g.pick(g.currencies)

			txn := build(txnID, amount, currency)
			source = append(source, txn)

			switch g.scenario() {
			case "match":
				target = append(target, g.toComplianceFormat(txn))
			case "missing":
				// Left out of the compliance ledger.
			case "difference":
				target = append(target, g.withDifference(g.toComplianceFormat(txn)))
			case "duplicate":
				compliance := g.toComplianceFormat(txn)
				copies := 2 + g.rng.Intn(3)
				for j := 0; j < copies; j++ {
					target = append(target, cloneRecord(compliance))
				}
			}
		}
	}

	return source, target
}

// WriteFiles generates both ledgers and writes them under dir.
func (g *Generator) WriteFiles(dir string, countPerType int) (sourcePath, targetPath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output dir: %w", err)
	}

	source, target := g.Generate(countPerType)

	sourcePath = filepath.Join(dir, SourceFileName)
	if err := writeJSON(sourcePath, source); err != nil {
		return "", "", err
	}

	targetPath = filepath.Join(dir, TargetFileName)
	if err := writeJSON(targetPath, target); err != nil {
		return "", "", err
	}

	return sourcePath, targetPath, nil
}

func (g *Generator) buildPacs008(txnID, amount, currency string) map[string]interface{} {
	return map[string]interface{}{
		"message_type":     "pacs.008",
		"transaction_id":   txnID,
		"amount":           amount,
		"currency":         currency,
		"value_date":       g.valueDate(),
		"debtor_name":      g.pick(g.companies),
		"debtor_account":   g.account(),
		"debtor_bic":       g.pick(g.banks),
		"creditor_name":    g.pick(g.companies),
		"creditor_account": g.account(),
		"creditor_bic":     g.pick(g.banks),
		"remittance_info":  fmt.Sprintf("Invoice payment %d", 1000+g.rng.Intn(9000)),
		"instruction_id":   g.reference("INST"),
		"end_to_end_id":    g.reference("E2E"),
	}
}

func (g *Generator) buildPacs009(txnID, amount, currency string) map[string]interface{} {
	return map[string]interface{}{
		"message_type":         "pacs.009",
		"transaction_id":       txnID,
		"amount":               amount,
		"currency":             currency,
		"value_date":           g.valueDate(),
		"instructing_agent":    g.pick(g.banks),
		"instructed_agent":     g.pick(g.banks),
		"creditor_institution": g.pick(g.banks),
		"debtor_institution":   g.pick(g.banks),
		"settlement_method":    "CLRG",
		"instruction_id":       g.reference("INST"),
		"end_to_end_id":        g.reference("E2E"),
		"purpose":              "INTC",
	}
}

func (g *Generator) buildMT103(txnID, amount, currency string) map[string]interface{} {
	record := map[string]interface{}{
		"message_type":            "MT103",
		"transaction_id":          txnID,
		"transaction_reference":   g.reference("MT103"),
		"amount":                  amount,
		"currency":                currency,
		"value_date":              g.valueDate(),
		"ordering_customer":       g.pick(g.companies),
		"ordering_institution":    g.pick(g.banks),
		"beneficiary_customer":    g.pick(g.companies),
		"beneficiary_institution": g.pick(g.banks),
		"sender_to_receiver_info": fmt.Sprintf("Payment for services %d", 1000+g.rng.Intn(9000)),
		"remittance_info":         fmt.Sprintf("Invoice %d", 10000+g.rng.Intn(90000)),
	}
	if g.rng.Float64() > 0.5 {
		record["intermediary_institution"] = g.pick(g.banks)
	}
	return record
}

func (g *Generator) buildMT202(txnID, amount, currency string) map[string]interface{} {
	record := map[string]interface{}{
		"message_type":            "MT202",
		"transaction_id":          txnID,
		"transaction_reference":   g.reference("MT202"),
		"amount":                  amount,
		"currency":                currency,
		"value_date":              g.valueDate(),
		"ordering_institution":    g.pick(g.banks),
		"beneficiary_institution": g.pick(g.banks),
		"sender_correspondent":    g.pick(g.banks),
		"receiver_correspondent":  g.pick(g.banks),
		"related_reference":       g.reference("REL"),
	}
	if g.rng.Float64() > 0.6 {
		record["intermediary"] = g.pick(g.banks)
	}
	return record
}

// toComplianceFormat reduces a payment-platform record to the flat key-value
// shape the compliance system exports: the common fields plus the handful of
// type-specific fields compliance captures.
func (g *Generator) toComplianceFormat(txn map[string]interface{}) map[string]interface{} {
	compliance := map[string]interface{}{
		"transaction_id": txn["transaction_id"],
		"message_type":   txn["message_type"],
		"amount":         txn["amount"],
		"currency":       txn["currency"],
		"value_date":     txn["value_date"],
	}

	var keep []string
	switch txn["message_type"] {
	case "pacs.008":
		keep = []string{"debtor_name", "debtor_account", "creditor_name", "creditor_account", "end_to_end_id"}
	case "pacs.009":
		keep = []string{"instructing_agent", "instructed_agent", "end_to_end_id"}
	case "MT103":
		keep = []string{"ordering_customer", "beneficiary_customer", "transaction_reference"}
	case "MT202":
		keep = []string{"ordering_institution", "beneficiary_institution", "transaction_reference"}
	}

	for _, field := range keep {
		if v, ok := txn[field]; ok {
			compliance[field] = v
		}
	}

	return compliance
}

// withDifference perturbs one field of a compliance record so the pair will
// surface as an unmatched transaction.
func (g *Generator) withDifference(record map[string]interface{}) map[string]interface{} {
	switch g.rng.Intn(4) {
	case 0:
		if amt, ok := record["amount"].(string); ok {
			parsed, err := strconv.ParseFloat(amt, 64)
			if err == nil {
				delta := g.rng.Float64()*2000 - 1000
				record["amount"] = strconv.FormatFloat(parsed+delta, 'f', 2, 64)
			}
		}
	case 1:
		if cur, ok := record["currency"].(string); ok {
			for {
				candidate := g.pick(g.currencies)
				if candidate != cur {
					record["currency"] = candidate
					break
				}
			}
		}
	case 2:
		if name, ok := record["debtor_name"].(string); ok {
			record["debtor_name"] = name + " LTD"
		} else if name, ok := record["ordering_customer"].(string); ok {
			record["ordering_customer"] = name + " LTD"
		} else {
			record["value_date"] = g.valueDateDaysBack(1 + g.rng.Intn(5))
		}
	default:
		if acc, ok := record["debtor_account"].(string); ok {
			chars := []byte(acc)
			chars[g.rng.Intn(len(chars))] = byte('0' + g.rng.Intn(10))
			record["debtor_account"] = string(chars)
		} else {
			record["value_date"] = g.valueDateDaysBack(1 + g.rng.Intn(5))
		}
	}

	return record
}

func (g *Generator) scenario() string {
	// Weighted 60/15/15/10 across match/missing/difference/duplicate.
	roll := g.rng.Intn(100)
	switch {
	case roll < 60:
		return "match"
	case roll < 75:
		return "missing"
	case roll < 90:
		return "difference"
	default:
		return "duplicate"
	}
}

// amount is rendered as a fixed two-decimal string on both sides so a
// matching pair compares equal literally.
func (g *Generator) amount() string {
	value := 1000 + g.rng.Float64()*(5000000-1000)
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func (g *Generator) valueDate() string {
	return g.valueDateDaysBack(0)
}

func (g *Generator) valueDateDaysBack(days int) string {
	return time.Now().AddDate(0, 0, -days).Format("2006-01-02")
}

func (g *Generator) reference(prefix string) string {
	return fmt.Sprintf("%s%s%04d", prefix, time.Now().Format("20060102150405"), 1000+g.rng.Intn(9000))
}

func (g *Generator) account() string {
	return fmt.Sprintf("GB%08d%08d", 10000000+g.rng.Intn(90000000), 10000000+g.rng.Intn(90000000))
}

func (g *Generator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

func cloneRecord(record map[string]interface{}) map[string]interface{} {
	clone := make(map[string]interface{}, len(record))
	for k, v := range record {
		clone[k] = v
	}
	return clone
}

func writeJSON(path string, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
