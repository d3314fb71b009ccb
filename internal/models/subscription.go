package models

// Frequency is the classified recurrence period of a subscription.
type Frequency string

const (
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// DetectedSubscription is the detector's output for one recurring charge
// pattern found in an uploaded statement.
type DetectedSubscription struct {
	MerchantName       string    `json:"merchant_name"`
	NormalizedMerchant string    `json:"normalized_merchant"`
	Amount             float64   `json:"amount"`
	Frequency          Frequency `json:"frequency"`
	IntervalDays       int       `json:"interval_days"`
	Occurrences        int       `json:"occurrences"`
	LastChargeDate     string    `json:"last_charge_date"`
	NextExpectedCharge string    `json:"next_expected_charge"`
	TransactionIDs     []string  `json:"transaction_ids"`
	MonthlyEquivalent  float64   `json:"monthly_equivalent"`
}

// Subscription is a persisted subscription row, keyed by
// (user_id, normalized_merchant) for idempotent re-detection.
type Subscription struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"user_id"`
	MerchantName       string    `json:"merchant_name"`
	NormalizedMerchant string    `json:"normalized_merchant"`
	Amount             float64   `json:"amount"`
	Frequency          Frequency `json:"frequency"`
	IntervalDays       int       `json:"interval_days"`
	Occurrences        int       `json:"occurrences"`
	LastChargeDate     string    `json:"last_charge_date"`
	NextExpectedCharge string    `json:"next_expected_charge"`
	TransactionIDs     []string  `json:"transaction_ids"`
	MonthlyEquivalent  float64   `json:"monthly_equivalent"`
	IsFalsePositive    bool      `json:"is_false_positive"`
	CreatedAt          string    `json:"created_at"`
	UpdatedAt          string    `json:"updated_at"`
}

// AnalyzeReport is the response of a statement analysis run.
type AnalyzeReport struct {
	UploadID              string                 `json:"upload_id"`
	TransactionsProcessed int                    `json:"transactions_processed"`
	ParseErrors           []string               `json:"parse_errors"`
	Detected              int                    `json:"detected"`
	Subscriptions         []DetectedSubscription `json:"subscriptions"`
}
