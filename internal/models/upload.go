package models

// StatementUpload is the audit record of one analyze run.
type StatementUpload struct {
	ID                    string `json:"id"`
	UserID                int64  `json:"user_id"`
	Format                string `json:"format"`
	TransactionsProcessed int    `json:"transactions_processed"`
	ParseErrorCount       int    `json:"parse_error_count"`
	Detected              int    `json:"detected"`
	CreatedAt             string `json:"created_at"`
}

// ReminderTarget pairs a due subscription with its owner's contact details
// for the upcoming-charge sweep.
type ReminderTarget struct {
	Subscription Subscription `json:"subscription"`
	Email        string       `json:"email"`
	Username     string       `json:"username"`
}
