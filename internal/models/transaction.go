package models

// Transaction is a single debit taken from one uploaded statement. IDs are
// synthetic and unique only within the ingestion run that produced them.
type Transaction struct {
	ID             string  `json:"id"`
	Date           string  `json:"date"` // Format: YYYY-MM-DD
	Merchant       string  `json:"merchant"`
	Amount         float64 `json:"amount"` // Always positive
	RawDescription string  `json:"raw_description,omitempty"`
}
