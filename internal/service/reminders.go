package service

import "time"

// SendUpcomingChargeReminders finds every active subscription due within
// the configured reminder window and emails its owner. Returns the number
// of reminders sent; individual send failures are logged and skipped so
// one bad address does not starve the rest of the sweep.
func (s *Service) SendUpcomingChargeReminders() (int, error) {
	if s.mailer == nil {
		return 0, nil
	}

	from := time.Now().Format("2006-01-02")
	to := time.Now().AddDate(0, 0, s.config.ReminderDays).Format("2006-01-02")

	targets, err := s.repo.ListDueReminders(from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, t := range targets {
		if err := s.mailer.SendUpcomingChargeReminder(t.Email, t.Username, t.Subscription); err != nil {
			s.log.Errorf("Failed to send reminder to %s for %s: %v", t.Email, t.Subscription.MerchantName, err)
			continue
		}
		sent++
	}

	s.log.Infof("Reminder sweep complete: %d due, %d sent", len(targets), sent)
	return sent, nil
}
