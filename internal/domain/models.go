package domain

// MessageType identifies the payment message format a transaction was
// ingested from. Unknown values are allowed; they simply carry no
// type-specific comparison fields.
type MessageType string

const (
	// ISO 20022 customer credit transfer.
	MessageTypePacs008 MessageType = "pacs.008"
	// ISO 20022 financial institution credit transfer.
	MessageTypePacs009 MessageType = "pacs.009"
	// Legacy single customer credit transfer.
	MessageTypeMT103 MessageType = "MT103"
	// Legacy general financial institution transfer.
	MessageTypeMT202 MessageType = "MT202"
)

// FieldValue is one comparable field of a message-type specific payload.
type FieldValue struct {
	Name  string
	Value string
}

// MessageDetails is the tagged per-message-type payload of a transaction.
// CompareFields returns the type-specific fields in a fixed order; an empty
// value means the field was absent from the ingested record, and absent
// fields never participate in comparison.
type MessageDetails interface {
	CompareFields() []FieldValue
}

// CustomerCreditTransfer holds the pacs.008 specific fields.
type CustomerCreditTransfer struct {
	DebtorName      string `json:"debtor_name,omitempty"`
	DebtorAccount   string `json:"debtor_account,omitempty"`
	CreditorName    string `json:"creditor_name,omitempty"`
	CreditorAccount string `json:"creditor_account,omitempty"`
	EndToEndID      string `json:"end_to_end_id,omitempty"`
}

func (d CustomerCreditTransfer) CompareFields() []FieldValue {
	return []FieldValue{
		{Name: "debtor_name", Value: d.DebtorName},
		{Name: "debtor_account", Value: d.DebtorAccount},
		{Name: "creditor_name", Value: d.CreditorName},
		{Name: "creditor_account", Value: d.CreditorAccount},
		{Name: "end_to_end_id", Value: d.EndToEndID},
	}
}

// InstitutionCreditTransfer holds the pacs.009 specific fields.
type InstitutionCreditTransfer struct {
	InstructingAgent string `json:"instructing_agent,omitempty"`
	InstructedAgent  string `json:"instructed_agent,omitempty"`
	EndToEndID       string `json:"end_to_end_id,omitempty"`
}

func (d InstitutionCreditTransfer) CompareFields() []FieldValue {
	return []FieldValue{
		{Name: "instructing_agent", Value: d.InstructingAgent},
		{Name: "instructed_agent", Value: d.InstructedAgent},
		{Name: "end_to_end_id", Value: d.EndToEndID},
	}
}

// LegacyCustomerTransfer holds the MT103 specific fields.
type LegacyCustomerTransfer struct {
	OrderingCustomer     string `json:"ordering_customer,omitempty"`
	BeneficiaryCustomer  string `json:"beneficiary_customer,omitempty"`
	TransactionReference string `json:"transaction_reference,omitempty"`
}

func (d LegacyCustomerTransfer) CompareFields() []FieldValue {
	return []FieldValue{
		{Name: "ordering_customer", Value: d.OrderingCustomer},
		{Name: "beneficiary_customer", Value: d.BeneficiaryCustomer},
		{Name: "transaction_reference", Value: d.TransactionReference},
	}
}

// LegacyInstitutionTransfer holds the MT202 specific fields.
type LegacyInstitutionTransfer struct {
	OrderingInstitution    string `json:"ordering_institution,omitempty"`
	BeneficiaryInstitution string `json:"beneficiary_institution,omitempty"`
	TransactionReference   string `json:"transaction_reference,omitempty"`
}

func (d LegacyInstitutionTransfer) CompareFields() []FieldValue {
	return []FieldValue{
		{Name: "ordering_institution", Value: d.OrderingInstitution},
		{Name: "beneficiary_institution", Value: d.BeneficiaryInstitution},
		{Name: "transaction_reference", Value: d.TransactionReference},
	}
}

// Transaction is one validated payment message. Amount and ValueDate keep
// the verbatim string form of the ingested value so that comparison stays
// string-normalized ("100" and "100.0" are different values on purpose).
// Raw retains the full ingested key-value record for audit payloads; the
// engine reads it but never mutates it.
type Transaction struct {
	TransactionID string         `json:"transaction_id"`
	MessageType   MessageType    `json:"message_type"`
	Amount        string         `json:"amount"`
	Currency      string         `json:"currency"`
	ValueDate     string         `json:"value_date"`
	Details       MessageDetails `json:"-"`
	Raw           map[string]any `json:"-"`
}

// CopyRaw returns a shallow copy of the raw record, so discrepancy payloads
// stay stable even if the caller later mutates its collection.
func (t Transaction) CopyRaw() map[string]any {
	if t.Raw == nil {
		return nil
	}
	out := make(map[string]any, len(t.Raw))
	for k, v := range t.Raw {
		out[k] = v
	}
	return out
}

// criticalFields are the fields whose mismatch always escalates a
// difference to HIGH severity.
var criticalFields = map[string]struct{}{
	"amount":   {},
	"currency": {},
}

// IsCriticalField reports whether a mismatch on the named field forces HIGH
// severity.
func IsCriticalField(name string) bool {
	_, ok := criticalFields[name]
	return ok
}
