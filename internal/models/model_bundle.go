package models

import (
	"time"

	"github.com/roadfile/compliance/pkg/types"
)

// Bundle groups services sold together. It carries its own status and expiry
// and is the renewal unit: renewing a bundle renews every service whose
// bundle_id points at it, at the discounted bundle rate. Services referencing
// a bundle are excluded from individual autopay.
type Bundle struct {
	ID         string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string              `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Type       types.BundleType    `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Status     types.ServiceStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	ExpiryDate *time.Time          `gorm:"column:expiry_date;default:null;index" json:"expiry_date"`
	PaymentID  string              `gorm:"column:payment_id;type:varchar(128)" json:"payment_id"`
	AmountPaid int64               `gorm:"column:amount_paid;type:bigint;not null;default:0" json:"amount_paid"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func (Bundle) TableName() string { return "bundle" }
