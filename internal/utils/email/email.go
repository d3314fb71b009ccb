package email

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/subwatch/subwatch/internal/config"
	"github.com/subwatch/subwatch/internal/models"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendUpcomingChargeReminder notifies a user about a subscription charge
// expected in the next few days.
func (s *Sender) SendUpcomingChargeReminder(to, username string, sub models.Subscription) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Upcoming charge: %s", sub.MerchantName)

	body := fmt.Sprintf(
		"Dear %s,\n\n", username,
	)
	body += fmt.Sprintf(
		"Your %s subscription to %s is expected to charge %.2f on %s.\n"+
			"That works out to %.2f per month.\n\n"+
			"If you no longer use this subscription, now is a good time to cancel it.\n",
		sub.Frequency, sub.MerchantName, sub.Amount, sub.NextExpectedCharge, sub.MonthlyEquivalent,
	)
	body += "\nBest regards,\nSubwatch"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
