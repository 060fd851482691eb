package models

import (
	"time"

	"github.com/roadfile/compliance/pkg/types"
)

// Notification is an append-only lifecycle event record. The unique index on
// (service_type, service_id, type) is the idempotency guard: inserts go
// through ON CONFLICT DO NOTHING, so a lifecycle event fires at most once per
// service even under overlapping runs.
type Notification struct {
	ID          string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID      string                 `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type        types.NotificationType `gorm:"column:type;type:varchar(32);not null;uniqueIndex:uniq_service_notification,priority:3" json:"type"`
	ServiceType types.ServiceType      `gorm:"column:service_type;type:varchar(32);not null;uniqueIndex:uniq_service_notification,priority:1" json:"service_type"`
	ServiceID   string                 `gorm:"column:service_id;type:uuid;not null;uniqueIndex:uniq_service_notification,priority:2" json:"service_id"`
	Message     string                 `gorm:"column:message;type:text" json:"message"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (Notification) TableName() string { return "notification" }
