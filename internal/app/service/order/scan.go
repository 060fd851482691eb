package order

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/types"
)

// ScanServicesRequest is the admin listing request: one service table,
// arbitrary field filters, offset pagination.
type ScanServicesRequest struct {
	ServiceType types.ServiceType     `json:"service_type"`
	Filters     []*types.CommonFilter `json:"filters"`
	From        int                   `json:"from"`
	Size        int                   `json:"size"`
	SortBy      string                `json:"sort_by"`
	SortOrder   string                `json:"sort_order"`
}

// ServiceItem is the admin view of one filing, identical across tables.
type ServiceItem struct {
	ID           string              `json:"id"`
	UserID       string              `json:"user_id"`
	ServiceType  types.ServiceType   `json:"service_type"`
	Status       types.ServiceStatus `json:"status"`
	EnrolledDate *time.Time          `json:"enrolled_date"`
	ExpiryDate   *time.Time          `json:"expiry_date"`
	PaymentID    string              `json:"payment_id"`
	AmountPaid   int64               `json:"amount_paid"`
	BundleID     *string             `json:"bundle_id"`
	DocumentURL  string              `json:"document_url,omitempty"`
	Notes        string              `json:"notes"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type ScanServicesResponse struct {
	Items []*ServiceItem `json:"items"`
	Total int64          `json:"total"`
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanServices implements the paginated/filterable admin listing over one
// service table.
func (s *Service) ScanServices(ctx context.Context, req *ScanServicesRequest) (*ScanServicesResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	model, err := modelFor(req.ServiceType)
	if err != nil {
		return nil, err
	}

	tx := s.db.WithContext(ctx).Model(model)
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count services: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	items, err := scanRows(q, req.ServiceType)
	if err != nil {
		return nil, err
	}
	return &ScanServicesResponse{Items: items, Total: total}, nil
}

func modelFor(st types.ServiceType) (any, error) {
	switch st {
	case types.ServiceTypeArbitration:
		return &models.ArbitrationEnrollment{}, nil
	case types.ServiceTypeTariff:
		return &models.TariffOrder{}, nil
	case types.ServiceTypeBoc3:
		return &models.Boc3Order{}, nil
	default:
		return nil, fmt.Errorf("unknown service type %q", st)
	}
}

func scanRows(q *gorm.DB, st types.ServiceType) ([]*ServiceItem, error) {
	switch st {
	case types.ServiceTypeArbitration:
		var rows []*models.ArbitrationEnrollment
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list services: %w", err)
		}
		return lo.Map(rows, func(m *models.ArbitrationEnrollment, _ int) *ServiceItem {
			return &ServiceItem{
				ID: m.ID, UserID: m.UserID, ServiceType: st, Status: m.Status,
				EnrolledDate: m.EnrolledDate, ExpiryDate: m.ExpiryDate,
				PaymentID: m.PaymentID, AmountPaid: m.AmountPaid, BundleID: m.BundleID,
				DocumentURL: m.DocumentURL, Notes: m.Notes,
				CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}
		}), nil
	case types.ServiceTypeTariff:
		var rows []*models.TariffOrder
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list services: %w", err)
		}
		return lo.Map(rows, func(m *models.TariffOrder, _ int) *ServiceItem {
			return &ServiceItem{
				ID: m.ID, UserID: m.UserID, ServiceType: st, Status: m.Status,
				EnrolledDate: m.EnrolledDate, ExpiryDate: m.ExpiryDate,
				PaymentID: m.PaymentID, AmountPaid: m.AmountPaid, BundleID: m.BundleID,
				DocumentURL: m.DocumentURL, Notes: m.Notes,
				CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}
		}), nil
	case types.ServiceTypeBoc3:
		var rows []*models.Boc3Order
		if err := q.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to list services: %w", err)
		}
		return lo.Map(rows, func(m *models.Boc3Order, _ int) *ServiceItem {
			return &ServiceItem{
				ID: m.ID, UserID: m.UserID, ServiceType: st, Status: m.Status,
				EnrolledDate: m.EnrolledDate, ExpiryDate: m.ExpiryDate,
				PaymentID: m.PaymentID, AmountPaid: m.AmountPaid, BundleID: m.BundleID,
				Notes: m.Notes, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt,
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown service type %q", st)
	}
}

// UpdateServiceStatus is the admin-only status mutation (including cancel).
// Lifecycle jobs never call this.
func (s *Service) UpdateServiceStatus(ctx context.Context, st types.ServiceType, id string, status types.ServiceStatus, notes string) error {
	model, err := modelFor(st)
	if err != nil {
		return err
	}
	updates := map[string]any{"status": status}
	if notes != "" {
		updates["notes"] = notes
	}
	res := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s %s: %w", st, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
