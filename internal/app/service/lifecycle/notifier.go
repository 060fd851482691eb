package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/tool"
	"github.com/roadfile/compliance/pkg/types"
)

// RunExpirationCheck scans each service table at the 30/10/5-day thresholds
// and emits each warning at most once per service. Matching is exact-date:
// a service is only seen on the one day its expiry equals the threshold
// date, so a skipped daily run skips that notification permanently.
func (s *Service) RunExpirationCheck(ctx context.Context) error {
	today := tool.DateOnly(s.now())

	for _, repo := range s.deps.Repos {
		s.checkThreshold(ctx, repo, today.AddDate(0, 0, 30), s.notifyThirtyDay)
		s.checkThreshold(ctx, repo, today.AddDate(0, 0, 10), s.notifyAutopayReminder)
		s.checkThreshold(ctx, repo, today.AddDate(0, 0, 5), s.notifyFiveDay)
	}
	return nil
}

type thresholdFn func(ctx context.Context, row *ServiceRow, user *models.User) error

// checkThreshold loads the rows expiring on the target date and applies the
// threshold handler row by row. One bad row is logged and skipped, never
// aborting the rest of the run.
func (s *Service) checkThreshold(ctx context.Context, repo ServiceRepository, day time.Time, fn thresholdFn) {
	rows, err := repo.FindExpiringOn(ctx, day)
	if err != nil {
		s.log.Errorw("notifier: query failed", "service_type", repo.ServiceType(), "day", day, "err", err)
		return
	}
	for _, row := range rows {
		user, err := s.deps.Users.Get(ctx, row.UserID)
		if err != nil {
			s.log.Errorw("notifier: skipping row", "service_type", row.Type, "service_id", row.ID, "err", err)
			continue
		}
		if err := fn(ctx, row, user); err != nil {
			s.log.Errorw("notifier: row failed", "service_type", row.Type, "service_id", row.ID, "err", err)
		}
	}
}

// notifyThirtyDay sends the standard 30-day warning to non-autopay users.
// Autopay users get the 10-day reminder instead.
func (s *Service) notifyThirtyDay(ctx context.Context, row *ServiceRow, user *models.User) error {
	if user.AutopayEnabled {
		return nil
	}
	msg := fmt.Sprintf("Your %s expires on %s. Renew now to stay compliant.",
		serviceDisplayName(row.Type), tool.FormatDate(*row.ExpiryDate))
	return s.recordAndSend(ctx, row, user, types.NotificationTypeExpiry30Day, expiryWarningSubject(row.Type), msg)
}

// notifyAutopayReminder sends the 10-day autopay reminder quoting the fixed
// renewal price. The reminder goes out whether or not a card is stored.
func (s *Service) notifyAutopayReminder(ctx context.Context, row *ServiceRow, user *models.User) error {
	if !user.AutopayEnabled {
		return nil
	}
	price, err := s.cfg.ServiceRenewalPrice(row.Type)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Your %s renews automatically on %s. Your card on file will be charged %s.",
		serviceDisplayName(row.Type), tool.FormatDate(*row.ExpiryDate), formatCents(price))
	return s.recordAndSend(ctx, row, user, types.NotificationTypeAutopay10Day, autopayReminderSubject(row.Type), msg)
}

// notifyFiveDay sends the urgent 5-day warning to non-autopay users.
func (s *Service) notifyFiveDay(ctx context.Context, row *ServiceRow, user *models.User) error {
	if user.AutopayEnabled {
		return nil
	}
	msg := fmt.Sprintf("Final notice: your %s expires on %s. Renew immediately to avoid a lapse.",
		serviceDisplayName(row.Type), tool.FormatDate(*row.ExpiryDate))
	return s.recordAndSend(ctx, row, user, types.NotificationTypeExpiry5Day, urgentWarningSubject(row.Type), msg)
}

// recordAndSend is the exactly-once gate: the conditional insert decides
// whether this run owns the notification; only the winner emails.
func (s *Service) recordAndSend(ctx context.Context, row *ServiceRow, user *models.User, nt types.NotificationType, subject, msg string) error {
	inserted, err := s.deps.Notes.Record(ctx, &models.Notification{
		UserID:      user.ID,
		Type:        nt,
		ServiceType: row.Type,
		ServiceID:   row.ID,
		Message:     msg,
	})
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}
	notificationsSentTotal.WithLabelValues(string(nt)).Inc()
	if err := s.deps.Mailer.Send(ctx, user.Email, subject, renderEmailBody(user, msg)); err != nil {
		s.log.Errorw("notifier: email failed", "to", user.Email, "type", nt, "err", err)
	}
	return nil
}
