package domain

// Findings are what the matching engine emits before they are recorded as
// discrepancies. Each one embeds copies of the raw records involved.

// MissingFinding marks a source transaction with no counterpart in the
// target collection.
type MissingFinding struct {
	TransactionID string         `json:"transaction_id"`
	MessageType   MessageType    `json:"message_type"`
	Amount        string         `json:"amount"`
	Currency      string         `json:"currency"`
	ValueDate     string         `json:"value_date"`
	SourceDetails map[string]any `json:"source_details"`
	Issue         string         `json:"issue"`
	Severity      Severity       `json:"severity"`
}

// DuplicateFinding marks a transaction that appears more than once in the
// target collection.
type DuplicateFinding struct {
	TransactionID     string           `json:"transaction_id"`
	MessageType       MessageType      `json:"message_type"`
	Amount            string           `json:"amount"`
	Currency          string           `json:"currency"`
	ValueDate         string           `json:"value_date"`
	OccurrenceCount   int              `json:"occurrence_count"`
	SourceDetails     map[string]any   `json:"source_details"`
	TargetOccurrences []map[string]any `json:"target_occurrences"`
	Issue             string           `json:"issue"`
	Severity          Severity         `json:"severity"`
}

// DifferenceFinding marks a transaction present in both collections whose
// compared fields disagree.
type DifferenceFinding struct {
	TransactionID string         `json:"transaction_id"`
	MessageType   MessageType    `json:"message_type"`
	Amount        string         `json:"amount"`
	Currency      string         `json:"currency"`
	ValueDate     string         `json:"value_date"`
	Differences   []FieldDiff    `json:"differences"`
	SourceDetails map[string]any `json:"source_details"`
	TargetDetails map[string]any `json:"target_details"`
	Issue         string         `json:"issue"`
	Severity      Severity       `json:"severity"`
}
