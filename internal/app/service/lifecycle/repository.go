package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/types"
)

// ServiceRow is the lifecycle jobs' view of one purchased filing, identical
// across the three service tables.
type ServiceRow struct {
	ID           string
	UserID       string
	Type         types.ServiceType
	Status       types.ServiceStatus
	EnrolledDate *time.Time
	ExpiryDate   *time.Time
	BundleID     *string
	DocumentURL  string
}

// ServiceRepository is implemented once per service table. Rows with a null
// expiry or a terminal status never come back from the Find methods, and
// MarkExpired never touches them.
type ServiceRepository interface {
	ServiceType() types.ServiceType
	// FindExpiringOn returns non-terminal rows whose expiry falls exactly on
	// the given day (date granularity).
	FindExpiringOn(ctx context.Context, day time.Time) ([]*ServiceRow, error)
	// FindExpiringBetween returns non-terminal rows with from <= expiry <= to
	// (inclusive date bounds).
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*ServiceRow, error)
	// FindByBundle returns non-terminal rows linked to the bundle.
	FindByBundle(ctx context.Context, bundleID string) ([]*ServiceRow, error)
	// MarkExpired flips every non-terminal row with expiry before the cutoff
	// to expired and reports how many rows changed.
	MarkExpired(ctx context.Context, before time.Time) (int64, error)
	// Renew extends one row's expiry, resets its enrolled date, and stores
	// the payment reference.
	Renew(ctx context.Context, id string, newExpiry, enrolledAt time.Time, paymentRef string) error
	// RenewByBundle propagates a bundle renewal's new expiry to every linked
	// non-terminal row.
	RenewByBundle(ctx context.Context, bundleID string, newExpiry time.Time) (int64, error)
	// UpdateDocumentURL stores a freshly rendered document reference. No-op
	// for service types without a document.
	UpdateDocumentURL(ctx context.Context, id, url string) error
}

// BundleRepository covers the bundle table's lifecycle operations.
type BundleRepository interface {
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Bundle, error)
	MarkExpired(ctx context.Context, before time.Time) (int64, error)
	Renew(ctx context.Context, id string, newExpiry time.Time, paymentRef string) error
}

// UserDirectory resolves the owning payer of a service.
type UserDirectory interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// NotificationLog is the idempotency guard consulted before every lifecycle
// action. Implemented by the notification service.
type NotificationLog interface {
	Record(ctx context.Context, n *models.Notification) (bool, error)
	Exists(ctx context.Context, st types.ServiceType, serviceID string, nt types.NotificationType) (bool, error)
}

// ErrUserNotFound surfaces a service row whose owner is missing; the row is
// skipped and logged, it never aborts the run.
var ErrUserNotFound = errors.New("user not found for service")

const notTerminal = "status NOT IN ?"

// ArbitrationRepository backs ServiceRepository with the
// arbitration_enrollment table.
type ArbitrationRepository struct{ db *gorm.DB }

func NewArbitrationRepository(db *gorm.DB) *ArbitrationRepository {
	return &ArbitrationRepository{db: db}
}

func (r *ArbitrationRepository) ServiceType() types.ServiceType { return types.ServiceTypeArbitration }

func (r *ArbitrationRepository) FindExpiringOn(ctx context.Context, day time.Time) ([]*ServiceRow, error) {
	return r.FindExpiringBetween(ctx, day, day)
}

func (r *ArbitrationRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*ServiceRow, error) {
	var rows []*models.ArbitrationEnrollment
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date < ?", from, to.AddDate(0, 0, 1)).
		Where(notTerminal, types.TerminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("arbitration: find expiring: %w", err)
	}
	out := make([]*ServiceRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, arbitrationRow(m))
	}
	return out, nil
}

func (r *ArbitrationRepository) FindByBundle(ctx context.Context, bundleID string) ([]*ServiceRow, error) {
	var rows []*models.ArbitrationEnrollment
	err := r.db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Where(notTerminal, types.TerminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("arbitration: find by bundle: %w", err)
	}
	out := make([]*ServiceRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, arbitrationRow(m))
	}
	return out, nil
}

func (r *ArbitrationRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ArbitrationEnrollment{}).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", before).
		Where(notTerminal, types.TerminalStatuses).
		Update("status", types.ServiceStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("arbitration: mark expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ArbitrationRepository) Renew(ctx context.Context, id string, newExpiry, enrolledAt time.Time, paymentRef string) error {
	err := r.db.WithContext(ctx).Model(&models.ArbitrationEnrollment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"expiry_date":   newExpiry,
			"enrolled_date": enrolledAt,
			"payment_id":    paymentRef,
		}).Error
	if err != nil {
		return fmt.Errorf("arbitration: renew %s: %w", id, err)
	}
	return nil
}

func (r *ArbitrationRepository) RenewByBundle(ctx context.Context, bundleID string, newExpiry time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.ArbitrationEnrollment{}).
		Where("bundle_id = ?", bundleID).
		Where(notTerminal, types.TerminalStatuses).
		Update("expiry_date", newExpiry)
	if res.Error != nil {
		return 0, fmt.Errorf("arbitration: renew by bundle %s: %w", bundleID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *ArbitrationRepository) UpdateDocumentURL(ctx context.Context, id, url string) error {
	err := r.db.WithContext(ctx).Model(&models.ArbitrationEnrollment{}).
		Where("id = ?", id).
		Update("document_url", url).Error
	if err != nil {
		return fmt.Errorf("arbitration: update document url %s: %w", id, err)
	}
	return nil
}

func arbitrationRow(m *models.ArbitrationEnrollment) *ServiceRow {
	return &ServiceRow{
		ID:           m.ID,
		UserID:       m.UserID,
		Type:         types.ServiceTypeArbitration,
		Status:       m.Status,
		EnrolledDate: m.EnrolledDate,
		ExpiryDate:   m.ExpiryDate,
		BundleID:     m.BundleID,
		DocumentURL:  m.DocumentURL,
	}
}

// TariffRepository backs ServiceRepository with the tariff_order table.
type TariffRepository struct{ db *gorm.DB }

func NewTariffRepository(db *gorm.DB) *TariffRepository { return &TariffRepository{db: db} }

func (r *TariffRepository) ServiceType() types.ServiceType { return types.ServiceTypeTariff }

func (r *TariffRepository) FindExpiringOn(ctx context.Context, day time.Time) ([]*ServiceRow, error) {
	return r.FindExpiringBetween(ctx, day, day)
}

func (r *TariffRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*ServiceRow, error) {
	var rows []*models.TariffOrder
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date < ?", from, to.AddDate(0, 0, 1)).
		Where(notTerminal, types.TerminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("tariff: find expiring: %w", err)
	}
	out := make([]*ServiceRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, tariffRow(m))
	}
	return out, nil
}

func (r *TariffRepository) FindByBundle(ctx context.Context, bundleID string) ([]*ServiceRow, error) {
	var rows []*models.TariffOrder
	err := r.db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Where(notTerminal, types.TerminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("tariff: find by bundle: %w", err)
	}
	out := make([]*ServiceRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, tariffRow(m))
	}
	return out, nil
}

func (r *TariffRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.TariffOrder{}).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", before).
		Where(notTerminal, types.TerminalStatuses).
		Update("status", types.ServiceStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("tariff: mark expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TariffRepository) Renew(ctx context.Context, id string, newExpiry, enrolledAt time.Time, paymentRef string) error {
	err := r.db.WithContext(ctx).Model(&models.TariffOrder{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"expiry_date":   newExpiry,
			"enrolled_date": enrolledAt,
			"payment_id":    paymentRef,
		}).Error
	if err != nil {
		return fmt.Errorf("tariff: renew %s: %w", id, err)
	}
	return nil
}

func (r *TariffRepository) RenewByBundle(ctx context.Context, bundleID string, newExpiry time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.TariffOrder{}).
		Where("bundle_id = ?", bundleID).
		Where(notTerminal, types.TerminalStatuses).
		Update("expiry_date", newExpiry)
	if res.Error != nil {
		return 0, fmt.Errorf("tariff: renew by bundle %s: %w", bundleID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TariffRepository) UpdateDocumentURL(ctx context.Context, id, url string) error {
	err := r.db.WithContext(ctx).Model(&models.TariffOrder{}).
		Where("id = ?", id).
		Update("document_url", url).Error
	if err != nil {
		return fmt.Errorf("tariff: update document url %s: %w", id, err)
	}
	return nil
}

func tariffRow(m *models.TariffOrder) *ServiceRow {
	return &ServiceRow{
		ID:           m.ID,
		UserID:       m.UserID,
		Type:         types.ServiceTypeTariff,
		Status:       m.Status,
		EnrolledDate: m.EnrolledDate,
		ExpiryDate:   m.ExpiryDate,
		BundleID:     m.BundleID,
		DocumentURL:  m.DocumentURL,
	}
}

// Boc3Repository backs ServiceRepository with the boc3_order table. BOC-3 has
// no document, so UpdateDocumentURL is a no-op.
type Boc3Repository struct{ db *gorm.DB }

func NewBoc3Repository(db *gorm.DB) *Boc3Repository { return &Boc3Repository{db: db} }

func (r *Boc3Repository) ServiceType() types.ServiceType { return types.ServiceTypeBoc3 }

func (r *Boc3Repository) FindExpiringOn(ctx context.Context, day time.Time) ([]*ServiceRow, error) {
	return r.FindExpiringBetween(ctx, day, day)
}

func (r *Boc3Repository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*ServiceRow, error) {
	var rows []*models.Boc3Order
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date < ?", from, to.AddDate(0, 0, 1)).
		Where(notTerminal, types.TerminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("boc3: find expiring: %w", err)
	}
	out := make([]*ServiceRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, boc3Row(m))
	}
	return out, nil
}

func (r *Boc3Repository) FindByBundle(ctx context.Context, bundleID string) ([]*ServiceRow, error) {
	var rows []*models.Boc3Order
	err := r.db.WithContext(ctx).
		Where("bundle_id = ?", bundleID).
		Where(notTerminal, types.TerminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("boc3: find by bundle: %w", err)
	}
	out := make([]*ServiceRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, boc3Row(m))
	}
	return out, nil
}

func (r *Boc3Repository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Boc3Order{}).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", before).
		Where(notTerminal, types.TerminalStatuses).
		Update("status", types.ServiceStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("boc3: mark expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Boc3Repository) Renew(ctx context.Context, id string, newExpiry, enrolledAt time.Time, paymentRef string) error {
	err := r.db.WithContext(ctx).Model(&models.Boc3Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"expiry_date":   newExpiry,
			"enrolled_date": enrolledAt,
			"payment_id":    paymentRef,
		}).Error
	if err != nil {
		return fmt.Errorf("boc3: renew %s: %w", id, err)
	}
	return nil
}

func (r *Boc3Repository) RenewByBundle(ctx context.Context, bundleID string, newExpiry time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Boc3Order{}).
		Where("bundle_id = ?", bundleID).
		Where(notTerminal, types.TerminalStatuses).
		Update("expiry_date", newExpiry)
	if res.Error != nil {
		return 0, fmt.Errorf("boc3: renew by bundle %s: %w", bundleID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *Boc3Repository) UpdateDocumentURL(ctx context.Context, id, url string) error {
	return nil
}

func boc3Row(m *models.Boc3Order) *ServiceRow {
	return &ServiceRow{
		ID:           m.ID,
		UserID:       m.UserID,
		Type:         types.ServiceTypeBoc3,
		Status:       m.Status,
		EnrolledDate: m.EnrolledDate,
		ExpiryDate:   m.ExpiryDate,
		BundleID:     m.BundleID,
	}
}

// GormBundleRepository backs BundleRepository with the bundle table.
type GormBundleRepository struct{ db *gorm.DB }

func NewBundleRepository(db *gorm.DB) *GormBundleRepository { return &GormBundleRepository{db: db} }

func (r *GormBundleRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*models.Bundle, error) {
	var rows []*models.Bundle
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date < ?", from, to.AddDate(0, 0, 1)).
		Where(notTerminal, types.TerminalStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("bundle: find expiring: %w", err)
	}
	return rows, nil
}

func (r *GormBundleRepository) MarkExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Bundle{}).
		Where("expiry_date IS NOT NULL AND expiry_date < ?", before).
		Where(notTerminal, types.TerminalStatuses).
		Update("status", types.ServiceStatusExpired)
	if res.Error != nil {
		return 0, fmt.Errorf("bundle: mark expired: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormBundleRepository) Renew(ctx context.Context, id string, newExpiry time.Time, paymentRef string) error {
	err := r.db.WithContext(ctx).Model(&models.Bundle{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"expiry_date": newExpiry,
			"payment_id":  paymentRef,
		}).Error
	if err != nil {
		return fmt.Errorf("bundle: renew %s: %w", id, err)
	}
	return nil
}

// GormUserDirectory resolves users from the users table.
type GormUserDirectory struct{ db *gorm.DB }

func NewUserDirectory(db *gorm.DB) *GormUserDirectory { return &GormUserDirectory{db: db} }

func (d *GormUserDirectory) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("failed to load user %s: %w", id, err)
	}
	return &u, nil
}
