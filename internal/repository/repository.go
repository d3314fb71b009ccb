package repository

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/subwatch/subwatch/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user in the database
func (r *Repository) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE email = $1`
	err := r.db.QueryRow(query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpsertSubscription inserts a detected subscription or refreshes the
// existing row for the same (user, normalized merchant). Re-running
// detection on overlapping data never creates duplicates.
func (r *Repository) UpsertSubscription(userID int64, d *models.DetectedSubscription) error {
	query := `
		INSERT INTO subscriptions (
			user_id, merchant_name, normalized_merchant, amount, frequency,
			interval_days, occurrences, last_charge_date, next_expected_charge,
			transaction_ids, monthly_equivalent, is_false_positive,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE,
			CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, normalized_merchant) DO UPDATE SET
			merchant_name = EXCLUDED.merchant_name,
			amount = EXCLUDED.amount,
			frequency = EXCLUDED.frequency,
			interval_days = EXCLUDED.interval_days,
			occurrences = EXCLUDED.occurrences,
			last_charge_date = EXCLUDED.last_charge_date,
			next_expected_charge = EXCLUDED.next_expected_charge,
			transaction_ids = EXCLUDED.transaction_ids,
			monthly_equivalent = EXCLUDED.monthly_equivalent,
			updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.Exec(query,
		userID, d.MerchantName, d.NormalizedMerchant, d.Amount, string(d.Frequency),
		d.IntervalDays, d.Occurrences, d.LastChargeDate, d.NextExpectedCharge,
		pq.Array(d.TransactionIDs), d.MonthlyEquivalent)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// ListSubscriptions retrieves a user's active subscriptions ordered by the
// next expected charge date.
func (r *Repository) ListSubscriptions(userID int64) ([]models.Subscription, error) {
	query := subscriptionSelect + `
		WHERE user_id = $1 AND is_false_positive = FALSE
		ORDER BY next_expected_charge ASC`
	return r.querySubscriptions(query, userID)
}

// ListUpcomingSubscriptions retrieves a user's active subscriptions whose
// next expected charge falls inside [from, to] (inclusive ISO dates).
func (r *Repository) ListUpcomingSubscriptions(userID int64, from, to string) ([]models.Subscription, error) {
	query := subscriptionSelect + `
		WHERE user_id = $1 AND is_false_positive = FALSE
			AND next_expected_charge >= $2 AND next_expected_charge <= $3
		ORDER BY next_expected_charge ASC`
	return r.querySubscriptions(query, userID, from, to)
}

const subscriptionSelect = `
		SELECT id, user_id, merchant_name, normalized_merchant, amount,
			frequency, interval_days, occurrences, last_charge_date,
			next_expected_charge, transaction_ids, monthly_equivalent,
			is_false_positive, created_at, updated_at
		FROM subscriptions`

func (r *Repository) querySubscriptions(query string, args ...interface{}) ([]models.Subscription, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var s models.Subscription
		err := rows.Scan(&s.ID, &s.UserID, &s.MerchantName, &s.NormalizedMerchant,
			&s.Amount, &s.Frequency, &s.IntervalDays, &s.Occurrences,
			&s.LastChargeDate, &s.NextExpectedCharge, pq.Array(&s.TransactionIDs),
			&s.MonthlyEquivalent, &s.IsFalsePositive, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// MarkSubscriptionFalsePositive flags a subscription so it no longer shows
// up in listings or reminders. Scoped to the owning user.
func (r *Repository) MarkSubscriptionFalsePositive(userID, subscriptionID int64) error {
	res, err := r.db.Exec(`
		UPDATE subscriptions SET is_false_positive = TRUE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND user_id = $2`, subscriptionID, userID)
	if err != nil {
		return fmt.Errorf("failed to flag subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription not found")
	}
	return nil
}

// DeleteSubscription removes a subscription. Scoped to the owning user.
func (r *Repository) DeleteSubscription(userID, subscriptionID int64) error {
	res, err := r.db.Exec(`
		DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, subscriptionID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("subscription not found")
	}
	return nil
}

// ListDueReminders retrieves every active subscription across all users
// whose next expected charge falls inside [from, to], with the owner's
// contact details for the reminder email.
func (r *Repository) ListDueReminders(from, to string) ([]models.ReminderTarget, error) {
	query := `
		SELECT s.id, s.user_id, s.merchant_name, s.amount, s.frequency,
			s.next_expected_charge, s.monthly_equivalent, u.email, u.username
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE s.is_false_positive = FALSE
			AND s.next_expected_charge >= $1 AND s.next_expected_charge <= $2
		ORDER BY s.next_expected_charge ASC`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	defer rows.Close()

	var targets []models.ReminderTarget
	for rows.Next() {
		var t models.ReminderTarget
		err := rows.Scan(&t.Subscription.ID, &t.Subscription.UserID,
			&t.Subscription.MerchantName, &t.Subscription.Amount,
			&t.Subscription.Frequency, &t.Subscription.NextExpectedCharge,
			&t.Subscription.MonthlyEquivalent, &t.Email, &t.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// CreateCard registers a card for a user
func (r *Repository) CreateCard(card *models.Card) error {
	query := `
		INSERT INTO cards (user_id, last_four, cardholder_name, nickname, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := r.db.QueryRow(query, card.UserID, card.LastFour, card.CardholderName, card.Nickname).
		Scan(&card.ID, &card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// ListCards retrieves a user's registered cards, newest first
func (r *Repository) ListCards(userID int64) ([]models.Card, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, last_four, cardholder_name, nickname, created_at
		FROM cards WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.LastFour, &c.CardholderName, &c.Nickname, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// DeleteCard removes a card. Scoped to the owning user.
func (r *Repository) DeleteCard(userID, cardID int64) error {
	res, err := r.db.Exec(`DELETE FROM cards WHERE id = $1 AND user_id = $2`, cardID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("card not found")
	}
	return nil
}

// CreateUpload records the audit row for one analyze run
func (r *Repository) CreateUpload(upload *models.StatementUpload) error {
	query := `
		INSERT INTO statement_uploads (
			id, user_id, format, transactions_processed, parse_error_count,
			detected, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
		RETURNING created_at`
	err := r.db.QueryRow(query, upload.ID, upload.UserID, upload.Format,
		upload.TransactionsProcessed, upload.ParseErrorCount, upload.Detected).
		Scan(&upload.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}
