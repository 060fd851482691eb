package models

import "time"

// User is a motor-carrier account. Autopay needs both the flag and a stored
// card reference; either one alone is not enough.
type User struct {
	ID           string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email        string `gorm:"column:email;type:varchar(255);not null;uniqueIndex" json:"email"`
	CompanyName  string `gorm:"column:company_name;type:varchar(255);not null" json:"company_name"`
	DOTNumber    string `gorm:"column:dot_number;type:varchar(32);index" json:"dot_number"`
	MCNumber     string `gorm:"column:mc_number;type:varchar(32)" json:"mc_number"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255)" json:"-"`
	IsAdmin      bool   `gorm:"column:is_admin;not null;default:false" json:"is_admin"`

	AutopayEnabled    bool   `gorm:"column:autopay_enabled;not null;default:false" json:"autopay_enabled"`
	CardID            string `gorm:"column:card_id;type:varchar(128)" json:"card_id"`
	CardLast4         string `gorm:"column:card_last4;type:varchar(4)" json:"card_last4"`
	CardBrand         string `gorm:"column:card_brand;type:varchar(32)" json:"card_brand"`
	GatewayCustomerID string `gorm:"column:gateway_customer_id;type:varchar(128)" json:"gateway_customer_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// AutopayEligible reports whether automated charging may touch this account.
func (u *User) AutopayEligible() bool {
	return u != nil && u.AutopayEnabled && u.CardID != ""
}
