package models

// Card represents a payment card registered by a user. Only the last four
// digits are ever stored; the full number never enters the system.
type Card struct {
	ID             int64  `json:"id"`
	UserID         int64  `json:"user_id"`
	LastFour       string `json:"last_four"`
	CardholderName string `json:"cardholder_name"`
	Nickname       string `json:"nickname,omitempty"`
	CreatedAt      string `json:"created_at"`
}
