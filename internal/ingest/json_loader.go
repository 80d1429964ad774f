package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paydesk/swiftrecon/internal/domain"
)

// requiredFields are the common base every record must carry. Missing
// required fields fail ingestion; they are never silently defaulted.
var requiredFields = []string{"transaction_id", "message_type", "amount", "currency", "value_date"}

// DecodeCollection parses a JSON array of transaction records. Numbers are
// decoded as json.Number so that their literal form survives into the
// string-normalized field comparison (100 and 100.0 stay distinct).
func DecodeCollection(r io.Reader) ([]domain.Transaction, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []map[string]any
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode transaction collection: %w", err)
	}

	txns := make([]domain.Transaction, 0, len(records))
	for i, record := range records {
		txn, err := FromRecord(record)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		txns = append(txns, txn)
	}

	return txns, nil
}

// LoadCollectionFile reads one ledger file from disk.
func LoadCollectionFile(path string) ([]domain.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open collection file: %w", err)
	}
	defer f.Close()

	return DecodeCollection(f)
}

// FromRecord validates one raw key-value record and builds the typed
// transaction, selecting the message-type specific detail variant.
func FromRecord(record map[string]any) (domain.Transaction, error) {
	for _, field := range requiredFields {
		if stringValue(record[field]) == "" {
			return domain.Transaction{}, fmt.Errorf("%w: missing required field %q", domain.ErrInvalidRecord, field)
		}
	}

	messageType := domain.MessageType(stringValue(record["message_type"]))

	txn := domain.Transaction{
		TransactionID: stringValue(record["transaction_id"]),
		MessageType:   messageType,
		Amount:        stringValue(record["amount"]),
		Currency:      stringValue(record["currency"]),
		ValueDate:     stringValue(record["value_date"]),
		Raw:           record,
	}
	txn.Details = detailsFor(messageType, record)

	return txn, nil
}

func detailsFor(messageType domain.MessageType, record map[string]any) domain.MessageDetails {
	switch messageType {
	case domain.MessageTypePacs008:
		return domain.CustomerCreditTransfer{
			DebtorName:      stringValue(record["debtor_name"]),
			DebtorAccount:   stringValue(record["debtor_account"]),
			CreditorName:    stringValue(record["creditor_name"]),
			CreditorAccount: stringValue(record["creditor_account"]),
			EndToEndID:      stringValue(record["end_to_end_id"]),
		}
	case domain.MessageTypePacs009:
		return domain.InstitutionCreditTransfer{
			InstructingAgent: stringValue(record["instructing_agent"]),
			InstructedAgent:  stringValue(record["instructed_agent"]),
			EndToEndID:       stringValue(record["end_to_end_id"]),
		}
	case domain.MessageTypeMT103:
		return domain.LegacyCustomerTransfer{
			OrderingCustomer:     stringValue(record["ordering_customer"]),
			BeneficiaryCustomer:  stringValue(record["beneficiary_customer"]),
			TransactionReference: stringValue(record["transaction_reference"]),
		}
	case domain.MessageTypeMT202:
		return domain.LegacyInstitutionTransfer{
			OrderingInstitution:    stringValue(record["ordering_institution"]),
			BeneficiaryInstitution: stringValue(record["beneficiary_institution"]),
			TransactionReference:   stringValue(record["transaction_reference"]),
		}
	default:
		// Unknown message types compare on common fields only.
		return nil
	}
}

// stringValue normalizes a raw JSON value to its comparison string. Nulls
// and absent keys become the empty string, meaning "not present".
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}
