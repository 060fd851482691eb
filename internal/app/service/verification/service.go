package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/types"
)

// Service answers the consumer-facing question: is this carrier currently
// enrolled in the arbitration program?
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

var ErrCarrierNotFound = errors.New("carrier not found")

type Result struct {
	CompanyName  string     `json:"company_name"`
	DOTNumber    string     `json:"dot_number"`
	MCNumber     string     `json:"mc_number"`
	Enrolled     bool       `json:"enrolled"`
	EnrolledDate *time.Time `json:"enrolled_date,omitempty"`
	ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
}

// VerifyByDOT looks up a carrier by DOT number and reports whether it holds
// an active, unexpired arbitration enrollment.
func (s *Service) VerifyByDOT(ctx context.Context, dotNumber string) (*Result, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("dot_number = ?", dotNumber).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: DOT %s", ErrCarrierNotFound, dotNumber)
		}
		return nil, fmt.Errorf("failed to look up carrier: %w", err)
	}

	out := &Result{
		CompanyName: user.CompanyName,
		DOTNumber:   user.DOTNumber,
		MCNumber:    user.MCNumber,
	}

	var enrollment models.ArbitrationEnrollment
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND status NOT IN ? AND expiry_date IS NOT NULL AND expiry_date > ?",
			user.ID, types.TerminalStatuses, time.Now()).
		Order("expiry_date desc").
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to look up enrollment: %w", err)
	}

	out.Enrolled = true
	out.EnrolledDate = enrollment.EnrolledDate
	out.ExpiryDate = enrollment.ExpiryDate
	return out, nil
}

// Module exposes the verification service via Fx.
var Module = fx.Options(
	fx.Provide(New),
)
