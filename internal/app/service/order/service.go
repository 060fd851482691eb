package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/internal/platform/docgen"
	"github.com/roadfile/compliance/internal/platform/mail"
	"github.com/roadfile/compliance/internal/platform/payments"
	"github.com/roadfile/compliance/pkg/config"
	"github.com/roadfile/compliance/pkg/logctx"
	"github.com/roadfile/compliance/pkg/tool"
	"github.com/roadfile/compliance/pkg/types"
)

// Service handles order placement: individual filings and bundles. Created
// rows start active with a one-year term; the lifecycle jobs take it from
// there.
type Service struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	db      *gorm.DB
	gateway payments.Gateway
	docs    docgen.Generator
	mailer  mail.Mailer
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, db *gorm.DB, gateway payments.Gateway, docs docgen.Generator, mailer mail.Mailer) *Service {
	return &Service{cfg: cfg, log: log, db: db, gateway: gateway, docs: docs, mailer: mailer}
}

// ErrPaymentDeclined is returned when the gateway refuses the purchase
// charge. Order placement is synchronous, unlike renewals.
var ErrPaymentDeclined = errors.New("payment declined")

// bundleMembers maps a bundle type to the services it groups.
func bundleMembers(bt types.BundleType) ([]types.ServiceType, error) {
	switch bt {
	case types.BundleTypeStarter:
		return []types.ServiceType{types.ServiceTypeArbitration, types.ServiceTypeBoc3}, nil
	case types.BundleTypeCarrier:
		return []types.ServiceType{types.ServiceTypeArbitration, types.ServiceTypeTariff}, nil
	case types.BundleTypeComplete:
		return []types.ServiceType{types.ServiceTypeArbitration, types.ServiceTypeTariff, types.ServiceTypeBoc3}, nil
	default:
		return nil, fmt.Errorf("unknown bundle type %q", bt)
	}
}

type PurchaseServiceRequest struct {
	UserID      string            `json:"user_id"`
	ServiceType types.ServiceType `json:"service_type"`
	Notes       string            `json:"notes"`
}

type PurchaseServiceResult struct {
	ServiceID   string            `json:"service_id"`
	ServiceType types.ServiceType `json:"service_type"`
	PaymentRef  string            `json:"payment_ref"`
	AmountPaid  int64             `json:"amount_paid"`
	ExpiryDate  time.Time         `json:"expiry_date"`
	DocumentURL string            `json:"document_url,omitempty"`
}

// PurchaseService charges the user's stored card and creates one filing.
func (s *Service) PurchaseService(ctx context.Context, req *PurchaseServiceRequest) (*PurchaseServiceResult, error) {
	user, err := s.loadUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	price, err := s.cfg.ServicePurchasePrice(req.ServiceType)
	if err != nil {
		return nil, err
	}

	paymentRef, err := s.chargeUser(ctx, user, price, fmt.Sprintf("Purchase: %s", req.ServiceType))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiry := now.AddDate(1, 0, 0)
	id := tool.GenerateUUIDV7()

	if err := s.createServiceRow(ctx, req.ServiceType, id, user.ID, nil, now, expiry, paymentRef, price, req.Notes); err != nil {
		return nil, err
	}

	res := &PurchaseServiceResult{
		ServiceID:   id,
		ServiceType: req.ServiceType,
		PaymentRef:  paymentRef,
		AmountPaid:  price,
		ExpiryDate:  expiry,
	}
	res.DocumentURL = s.renderPurchaseDocument(ctx, req.ServiceType, id, user, now, expiry)

	s.sendConfirmation(ctx, user, fmt.Sprintf(
		"Thank you for your order. Your %s is active through %s.",
		req.ServiceType, tool.FormatDate(expiry)))
	return res, nil
}

type PurchaseBundleRequest struct {
	UserID     string           `json:"user_id"`
	BundleType types.BundleType `json:"bundle_type"`
}

type PurchaseBundleResult struct {
	BundleID   string                  `json:"bundle_id"`
	BundleType types.BundleType        `json:"bundle_type"`
	PaymentRef string                  `json:"payment_ref"`
	AmountPaid int64                   `json:"amount_paid"`
	ExpiryDate time.Time               `json:"expiry_date"`
	Services   []PurchaseServiceResult `json:"services"`
}

// PurchaseBundle charges the combined bundle price once and creates the
// bundle plus its member filings, all sharing one expiry date.
func (s *Service) PurchaseBundle(ctx context.Context, req *PurchaseBundleRequest) (*PurchaseBundleResult, error) {
	user, err := s.loadUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	members, err := bundleMembers(req.BundleType)
	if err != nil {
		return nil, err
	}
	price, err := s.cfg.BundlePurchasePrice(req.BundleType)
	if err != nil {
		return nil, err
	}

	paymentRef, err := s.chargeUser(ctx, user, price, fmt.Sprintf("Purchase: %s bundle", req.BundleType))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiry := now.AddDate(1, 0, 0)
	bundleID := tool.GenerateUUIDV7()

	bundle := &models.Bundle{
		ID:         bundleID,
		UserID:     user.ID,
		Type:       req.BundleType,
		Status:     types.ServiceStatusActive,
		ExpiryDate: &expiry,
		PaymentID:  paymentRef,
		AmountPaid: price,
	}
	if err := s.db.WithContext(ctx).Create(bundle).Error; err != nil {
		return nil, fmt.Errorf("failed to create bundle: %w", err)
	}

	out := &PurchaseBundleResult{
		BundleID:   bundleID,
		BundleType: req.BundleType,
		PaymentRef: paymentRef,
		AmountPaid: price,
		ExpiryDate: expiry,
	}
	for _, st := range members {
		id := tool.GenerateUUIDV7()
		if err := s.createServiceRow(ctx, st, id, user.ID, &bundleID, now, expiry, paymentRef, 0, ""); err != nil {
			return nil, err
		}
		item := PurchaseServiceResult{
			ServiceID:   id,
			ServiceType: st,
			PaymentRef:  paymentRef,
			ExpiryDate:  expiry,
		}
		item.DocumentURL = s.renderPurchaseDocument(ctx, st, id, user, now, expiry)
		out.Services = append(out.Services, item)
	}

	s.sendConfirmation(ctx, user, fmt.Sprintf(
		"Thank you for your order. Your %s bundle is active through %s.",
		req.BundleType, tool.FormatDate(expiry)))
	return out, nil
}

// SaveCard stores a payment method reference on the account and enables
// autopay, making the account eligible for automatic renewal.
func (s *Service) SaveCard(ctx context.Context, userID, cardID, last4, brand, customerRef string) error {
	if cardID == "" {
		return fmt.Errorf("card_id is required")
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"card_id":             cardID,
			"card_last4":          last4,
			"card_brand":          brand,
			"gateway_customer_id": customerRef,
			"autopay_enabled":     true,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to save card: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetAutopay flips the autopay flag. Enabling it without a stored card is
// allowed but leaves the account ineligible for automatic charging.
func (s *Service) SetAutopay(ctx context.Context, userID string, enabled bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("autopay_enabled", enabled)
	if res.Error != nil {
		return fmt.Errorf("failed to update autopay: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *Service) loadUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return &u, nil
}

func (s *Service) chargeUser(ctx context.Context, user *models.User, amountCents int64, memo string) (string, error) {
	if user.CardID == "" {
		return "", fmt.Errorf("no card on file for user %s", user.ID)
	}
	res, err := s.gateway.Charge(ctx, &types.ChargeRequest{
		CustomerRef:    user.GatewayCustomerID,
		CardRef:        user.CardID,
		AmountCents:    amountCents,
		Memo:           memo,
		IdempotencyKey: tool.GenerateUUIDV7(),
	})
	if err != nil {
		return "", fmt.Errorf("charge failed: %w", err)
	}
	if !res.Success {
		return "", fmt.Errorf("%w: %s", ErrPaymentDeclined, res.FailureReason)
	}
	return res.PaymentRef, nil
}

func (s *Service) createServiceRow(ctx context.Context, st types.ServiceType, id, userID string, bundleID *string, enrolled, expiry time.Time, paymentRef string, amount int64, notes string) error {
	var err error
	switch st {
	case types.ServiceTypeArbitration:
		err = s.db.WithContext(ctx).Create(&models.ArbitrationEnrollment{
			ID: id, UserID: userID, Status: types.ServiceStatusActive,
			EnrolledDate: &enrolled, ExpiryDate: &expiry,
			PaymentID: paymentRef, AmountPaid: amount, BundleID: bundleID, Notes: notes,
		}).Error
	case types.ServiceTypeTariff:
		err = s.db.WithContext(ctx).Create(&models.TariffOrder{
			ID: id, UserID: userID, Status: types.ServiceStatusActive,
			EnrolledDate: &enrolled, ExpiryDate: &expiry,
			PaymentID: paymentRef, AmountPaid: amount, BundleID: bundleID, Notes: notes,
		}).Error
	case types.ServiceTypeBoc3:
		err = s.db.WithContext(ctx).Create(&models.Boc3Order{
			ID: id, UserID: userID, Status: types.ServiceStatusActive,
			EnrolledDate: &enrolled, ExpiryDate: &expiry,
			PaymentID: paymentRef, AmountPaid: amount, BundleID: bundleID, Notes: notes,
		}).Error
	default:
		return fmt.Errorf("unknown service type %q", st)
	}
	if err != nil {
		return fmt.Errorf("failed to create %s row: %w", st, err)
	}
	return nil
}

// renderPurchaseDocument renders the initial filing document. Best-effort:
// an empty URL comes back on failure and the order stands.
func (s *Service) renderPurchaseDocument(ctx context.Context, st types.ServiceType, id string, user *models.User, enrolled, expiry time.Time) string {
	var (
		url string
		err error
	)
	switch st {
	case types.ServiceTypeTariff:
		url, err = s.docs.RenderTariffDocument(ctx, user, &models.TariffOrder{
			ID: id, UserID: user.ID, EnrolledDate: &enrolled, ExpiryDate: &expiry,
		})
		if err == nil {
			err = s.db.WithContext(ctx).Model(&models.TariffOrder{}).Where("id = ?", id).Update("document_url", url).Error
		}
	case types.ServiceTypeArbitration:
		url, err = s.docs.RenderArbitrationDocument(ctx, user, &models.ArbitrationEnrollment{
			ID: id, UserID: user.ID, EnrolledDate: &enrolled, ExpiryDate: &expiry,
		})
		if err == nil {
			err = s.db.WithContext(ctx).Model(&models.ArbitrationEnrollment{}).Where("id = ?", id).Update("document_url", url).Error
		}
	default:
		return ""
	}
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("document render failed for %s %s: %v", st, id, err)
		return ""
	}
	return url
}

func (s *Service) sendConfirmation(ctx context.Context, user *models.User, msg string) {
	body := fmt.Sprintf("<html><body><p>Hello %s,</p><p>%s</p></body></html>", user.CompanyName, msg)
	if err := s.mailer.Send(ctx, user.Email, "Order confirmation", body); err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("confirmation email failed for %s: %v", user.Email, err)
	}
}
