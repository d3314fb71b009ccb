package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/subwatch/subwatch/internal/config"
	"github.com/subwatch/subwatch/internal/detect"
	"github.com/subwatch/subwatch/internal/middleware"
	"github.com/subwatch/subwatch/internal/models"
	"github.com/subwatch/subwatch/internal/repository"
)

// ReminderSender delivers upcoming-charge notifications.
type ReminderSender interface {
	SendUpcomingChargeReminder(to, username string, sub models.Subscription) error
}

// Service handles business logic
type Service struct {
	repo   *repository.Repository
	log    *logrus.Logger
	config *config.Config
	mailer ReminderSender
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config, mailer ReminderSender) *Service {
	return &Service{repo: repo, log: log, config: cfg, mailer: mailer}
}

// DetectorConfig builds the detector settings from the loaded
// configuration, starting from the production defaults.
func (s *Service) DetectorConfig() detect.Config {
	cfg := detect.DefaultConfig()
	cfg.SimilarityThreshold = s.config.SimilarityThreshold
	cfg.AmountTolerance = s.config.AmountTolerance
	cfg.MinOccurrences = s.config.MinOccurrences
	return cfg
}

// Register creates a new user with hashed password
func (s *Service) Register(username, email, password string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(email)
	if err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", user.ID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}

// userIDFromContext resolves the authenticated user id placed by the auth
// middleware.
func userIDFromContext(ctx context.Context) (int64, error) {
	idStr := middleware.UserIDFromContext(ctx)
	if idStr == "" {
		return 0, fmt.Errorf("user ID not found in context")
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return id, nil
}

// ListSubscriptions returns the user's active subscriptions ordered by
// next expected charge.
func (s *Service) ListSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListSubscriptions(userID)
}

// ListUpcomingSubscriptions returns the user's active subscriptions due in
// the next seven days.
func (s *Service) ListUpcomingSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	today := time.Now().Format("2006-01-02")
	end := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	return s.repo.ListUpcomingSubscriptions(userID, today, end)
}

// ExportSubscriptionsCSV renders the user's active subscriptions as a CSV
// download.
func (s *Service) ExportSubscriptionsCSV(ctx context.Context) (string, error) {
	subs, err := s.ListSubscriptions(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Merchant,Amount,Frequency,Next Charge,Monthly Equivalent\n")
	for _, sub := range subs {
		b.WriteString(fmt.Sprintf("%q,%s,%s,%s,%s\n",
			sub.MerchantName,
			strconv.FormatFloat(sub.Amount, 'f', -1, 64),
			sub.Frequency,
			sub.NextExpectedCharge,
			strconv.FormatFloat(sub.MonthlyEquivalent, 'f', -1, 64)))
	}
	return b.String(), nil
}

// MarkFalsePositive flags a detected subscription as wrong; it stops
// appearing in listings and reminders but survives re-detection upserts.
func (s *Service) MarkFalsePositive(ctx context.Context, subscriptionID int64) error {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.MarkSubscriptionFalsePositive(userID, subscriptionID); err != nil {
		return err
	}
	s.log.Infof("Subscription %d flagged as false positive by user %d", subscriptionID, userID)
	return nil
}

// DeleteSubscription removes a subscription for the authenticated user.
func (s *Service) DeleteSubscription(ctx context.Context, subscriptionID int64) error {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteSubscription(userID, subscriptionID)
}

// ListCards returns the user's registered cards.
func (s *Service) ListCards(ctx context.Context) ([]models.Card, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListCards(userID)
}

// CreateCard registers a card for the user. Only the last four digits are
// accepted; anything longer is truncated to its final four digits.
func (s *Service) CreateCard(ctx context.Context, lastFour, cardholderName, nickname string) (*models.Card, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	digits := digitsOnly(lastFour)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	if len(digits) != 4 {
		return nil, fmt.Errorf("last 4 digits must be exactly 4 digits")
	}

	name := strings.TrimSpace(cardholderName)
	if name == "" {
		return nil, fmt.Errorf("cardholder name is required")
	}

	card := &models.Card{
		UserID:         userID,
		LastFour:       digits,
		CardholderName: name,
		Nickname:       strings.TrimSpace(nickname),
	}
	if err := s.repo.CreateCard(card); err != nil {
		return nil, err
	}

	s.log.Infof("Card ****%s registered for user %d", card.LastFour, userID)
	return card, nil
}

// DeleteCard removes a card for the authenticated user.
func (s *Service) DeleteCard(ctx context.Context, cardID int64) error {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return err
	}
	return s.repo.DeleteCard(userID, cardID)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}
