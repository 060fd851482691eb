package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/roadfile/compliance/pkg/types"
)

// TariffOrder is one purchased tariff-publishing filing.
type TariffOrder struct {
	ID           string              `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID       string              `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Status       types.ServiceStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	EnrolledDate *time.Time          `gorm:"column:enrolled_date;default:null" json:"enrolled_date"`
	ExpiryDate   *time.Time          `gorm:"column:expiry_date;default:null;index" json:"expiry_date"`
	PaymentID    string              `gorm:"column:payment_id;type:varchar(128)" json:"payment_id"`
	AmountPaid   int64               `gorm:"column:amount_paid;type:bigint;not null;default:0" json:"amount_paid"`
	BundleID     *string             `gorm:"column:bundle_id;type:uuid;default:null;index" json:"bundle_id"`
	DocumentURL  string              `gorm:"column:document_url;type:varchar(512)" json:"document_url"`
	Notes        string              `gorm:"column:notes;type:text" json:"notes"`
	Extra        datatypes.JSON      `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func (TariffOrder) TableName() string { return "tariff_order" }
