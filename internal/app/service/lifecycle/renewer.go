package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/tool"
	"github.com/roadfile/compliance/pkg/types"
)

// renewalWindowDays gives a failed charge a few daily retries before the
// service expires: eligibility spans [today, today+3] and only a recorded
// autopay_processed notification stops another attempt.
const renewalWindowDays = 3

// RunAutopay charges stored cards for bundles and services expiring within
// the renewal window. Bundles go first; their member services are excluded
// from the individual pass. Row failures are logged and skipped.
func (s *Service) RunAutopay(ctx context.Context) error {
	today := tool.DateOnly(s.now())
	windowEnd := today.AddDate(0, 0, renewalWindowDays)

	bundles, err := s.deps.Bundles.FindExpiringBetween(ctx, today, windowEnd)
	if err != nil {
		return fmt.Errorf("autopay: bundle query: %w", err)
	}
	for _, b := range bundles {
		if err := s.renewBundle(ctx, b); err != nil {
			s.log.Errorw("autopay: bundle failed", "bundle_id", b.ID, "err", err)
		}
	}

	for _, repo := range s.deps.Repos {
		rows, err := repo.FindExpiringBetween(ctx, today, windowEnd)
		if err != nil {
			s.log.Errorw("autopay: service query failed", "service_type", repo.ServiceType(), "err", err)
			continue
		}
		for _, row := range rows {
			if row.BundleID != nil {
				// Renewed through the bundle, never charged individually.
				continue
			}
			if err := s.renewService(ctx, repo, row); err != nil {
				s.log.Errorw("autopay: service failed", "service_type", row.Type, "service_id", row.ID, "err", err)
			}
		}
	}
	return nil
}

func (s *Service) renewBundle(ctx context.Context, b *models.Bundle) error {
	user, err := s.deps.Users.Get(ctx, b.UserID)
	if err != nil {
		return err
	}
	if !user.AutopayEligible() {
		return nil
	}

	done, err := s.deps.Notes.Exists(ctx, types.ServiceTypeBundle, b.ID, types.NotificationTypeAutopayProcessed)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	price, err := s.cfg.BundleRenewalPrice(b.Type)
	if err != nil {
		return err
	}

	res, chargeErr := s.charge(ctx, user, price, fmt.Sprintf("Renewal: %s bundle %s", b.Type, b.ID))
	if chargeErr != nil || !res.Success {
		reason := failureReason(res, chargeErr)
		renewalsTotal.WithLabelValues("bundle", "failed").Inc()
		s.recordFailure(ctx, user, types.ServiceTypeBundle, b.ID, reason)
		return nil
	}

	newExpiry := b.ExpiryDate.AddDate(1, 0, 0)
	if err := s.deps.Bundles.Renew(ctx, b.ID, newExpiry, res.PaymentRef); err != nil {
		return err
	}

	for _, repo := range s.deps.Repos {
		if _, err := repo.RenewByBundle(ctx, b.ID, newExpiry); err != nil {
			s.log.Errorw("autopay: bundle fan-out failed", "bundle_id", b.ID, "service_type", repo.ServiceType(), "err", err)
		}
	}

	// Tariff and arbitration documents carry the expiry date, so refresh
	// them. Best-effort: the renewal and the charge stand either way.
	for _, repo := range s.deps.Repos {
		st := repo.ServiceType()
		if st != types.ServiceTypeTariff && st != types.ServiceTypeArbitration {
			continue
		}
		rows, err := repo.FindByBundle(ctx, b.ID)
		if err != nil {
			s.log.Errorw("autopay: bundle members query failed", "bundle_id", b.ID, "service_type", st, "err", err)
			continue
		}
		for _, row := range rows {
			s.regenerateDocument(ctx, repo, row, user, newExpiry)
		}
	}

	renewalsTotal.WithLabelValues("bundle", "succeeded").Inc()
	msg := fmt.Sprintf("Your %s bundle renewed successfully for %s. New expiration: %s.",
		b.Type, formatCents(price), tool.FormatDate(newExpiry))
	s.recordSuccess(ctx, user, types.ServiceTypeBundle, b.ID, msg)
	return nil
}

func (s *Service) renewService(ctx context.Context, repo ServiceRepository, row *ServiceRow) error {
	user, err := s.deps.Users.Get(ctx, row.UserID)
	if err != nil {
		return err
	}
	if !user.AutopayEligible() {
		return nil
	}

	done, err := s.deps.Notes.Exists(ctx, row.Type, row.ID, types.NotificationTypeAutopayProcessed)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	price, err := s.cfg.ServiceRenewalPrice(row.Type)
	if err != nil {
		return err
	}

	res, chargeErr := s.charge(ctx, user, price, fmt.Sprintf("Renewal: %s %s", row.Type, row.ID))
	if chargeErr != nil || !res.Success {
		reason := failureReason(res, chargeErr)
		renewalsTotal.WithLabelValues(string(row.Type), "failed").Inc()
		s.recordFailure(ctx, user, row.Type, row.ID, reason)
		return nil
	}

	// One year from the previous expiry, not from today: the anniversary
	// date survives no matter which day inside the window the charge lands.
	newExpiry := row.ExpiryDate.AddDate(1, 0, 0)
	enrolledAt := s.now()
	if err := repo.Renew(ctx, row.ID, newExpiry, enrolledAt, res.PaymentRef); err != nil {
		return err
	}

	if row.Type == types.ServiceTypeTariff || row.Type == types.ServiceTypeArbitration {
		s.regenerateDocument(ctx, repo, row, user, newExpiry)
	}

	renewalsTotal.WithLabelValues(string(row.Type), "succeeded").Inc()
	msg := fmt.Sprintf("Your %s renewed successfully for %s. New expiration: %s.",
		serviceDisplayName(row.Type), formatCents(price), tool.FormatDate(newExpiry))
	s.recordSuccess(ctx, user, row.Type, row.ID, msg)
	return nil
}

// charge runs one gateway attempt. Retries across days are new attempts:
// every call gets a fresh idempotency key.
func (s *Service) charge(ctx context.Context, user *models.User, amountCents int64, memo string) (*types.ChargeResult, error) {
	return s.deps.Gateway.Charge(ctx, &types.ChargeRequest{
		CustomerRef:    user.GatewayCustomerID,
		CardRef:        user.CardID,
		AmountCents:    amountCents,
		Memo:           memo,
		IdempotencyKey: tool.GenerateUUIDV7(),
	})
}

func failureReason(res *types.ChargeResult, err error) string {
	if err != nil {
		return err.Error()
	}
	if res != nil && res.FailureReason != "" {
		return res.FailureReason
	}
	return "charge declined"
}

func (s *Service) recordSuccess(ctx context.Context, user *models.User, st types.ServiceType, id, msg string) {
	inserted, err := s.deps.Notes.Record(ctx, &models.Notification{
		UserID:      user.ID,
		Type:        types.NotificationTypeAutopayProcessed,
		ServiceType: st,
		ServiceID:   id,
		Message:     msg,
	})
	if err != nil {
		s.log.Errorw("autopay: record success failed", "service_type", st, "service_id", id, "err", err)
		return
	}
	if !inserted {
		return
	}
	if err := s.deps.Mailer.Send(ctx, user.Email, autopaySuccessSubject(st), renderEmailBody(user, msg)); err != nil {
		s.log.Errorw("autopay: success email failed", "to", user.Email, "err", err)
	}
}

// recordFailure emails only the first failure in a billing cycle; later
// declines in the retry window still retry the charge but stay quiet.
func (s *Service) recordFailure(ctx context.Context, user *models.User, st types.ServiceType, id, reason string) {
	msg := fmt.Sprintf("We could not process your renewal payment: %s. We will retry automatically; please update your card on file.", reason)
	inserted, err := s.deps.Notes.Record(ctx, &models.Notification{
		UserID:      user.ID,
		Type:        types.NotificationTypeAutopayFailed,
		ServiceType: st,
		ServiceID:   id,
		Message:     msg,
	})
	if err != nil {
		s.log.Errorw("autopay: record failure failed", "service_type", st, "service_id", id, "err", err)
		return
	}
	if !inserted {
		return
	}
	if err := s.deps.Mailer.Send(ctx, user.Email, autopayFailureSubject(st), renderEmailBody(user, msg)); err != nil {
		s.log.Errorw("autopay: failure email failed", "to", user.Email, "err", err)
	}
}

// regenerateDocument refreshes the PDF for a renewed tariff or arbitration
// service. Failures are logged only; the renewal already happened.
func (s *Service) regenerateDocument(ctx context.Context, repo ServiceRepository, row *ServiceRow, user *models.User, newExpiry time.Time) {
	var (
		url string
		err error
	)
	enrolled := row.EnrolledDate
	switch row.Type {
	case types.ServiceTypeTariff:
		url, err = s.deps.Docs.RenderTariffDocument(ctx, user, &models.TariffOrder{
			ID:           row.ID,
			UserID:       row.UserID,
			Status:       row.Status,
			EnrolledDate: enrolled,
			ExpiryDate:   &newExpiry,
		})
	case types.ServiceTypeArbitration:
		url, err = s.deps.Docs.RenderArbitrationDocument(ctx, user, &models.ArbitrationEnrollment{
			ID:           row.ID,
			UserID:       row.UserID,
			Status:       row.Status,
			EnrolledDate: enrolled,
			ExpiryDate:   &newExpiry,
		})
	default:
		return
	}
	if err != nil {
		s.log.Errorw("autopay: document regeneration failed", "service_type", row.Type, "service_id", row.ID, "err", err)
		return
	}
	if err := repo.UpdateDocumentURL(ctx, row.ID, url); err != nil {
		s.log.Errorw("autopay: document url update failed", "service_type", row.Type, "service_id", row.ID, "err", err)
	}
}
