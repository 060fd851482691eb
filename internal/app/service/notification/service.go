package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/tool"
	"github.com/roadfile/compliance/pkg/types"
)

// ScanRequest is the admin listing request over the notification log.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Notification `json:"items"`
	Total int64                  `json:"total"`
}

// Service is the append-only notification log. The (service_type,
// service_id, type) unique index is the only duplication guard in the
// lifecycle: Record is a single conditional insert, not check-then-act.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Record inserts the notification unless its idempotency triple already
// exists. Returns true when this call won the insert; callers send the
// corresponding email only in that case.
func (s *Service) Record(ctx context.Context, n *models.Notification) (bool, error) {
	if n == nil {
		return false, fmt.Errorf("nil notification")
	}
	if n.ID == "" {
		n.ID = tool.GenerateUUIDV7()
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "service_type"},
			{Name: "service_id"},
			{Name: "type"},
		},
		DoNothing: true,
	}).Create(n)
	if res.Error != nil {
		return false, fmt.Errorf("failed to record notification: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether a notification with the given triple was recorded.
func (s *Service) Exists(ctx context.Context, st types.ServiceType, serviceID string, nt types.NotificationType) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("service_type = ? AND service_id = ? AND type = ?", st, serviceID, nt).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query notification log: %w", err)
	}
	return count > 0, nil
}

// Scan implements the paginated/filterable admin listing over the log.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Notification{})
	if len(req.Filters) > 0 {
		exprs := make([]clause.Expression, 0, len(req.Filters))
		for _, f := range req.Filters {
			exprs = append(exprs, f)
		}
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{clause.And(exprs...)}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	var rows []*models.Notification
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to scan notifications: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}

// ListByUser returns a user's notification history, newest first.
func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Notification, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []*models.Notification
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return rows, nil
}
