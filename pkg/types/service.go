package types

type ServiceType string

const (
	ServiceTypeArbitration ServiceType = "arbitration"
	ServiceTypeTariff      ServiceType = "tariff"
	ServiceTypeBoc3        ServiceType = "boc3"
	ServiceTypeBundle      ServiceType = "bundle"
)

type ServiceStatus string

const (
	ServiceStatusPending   ServiceStatus = "pending"
	ServiceStatusActive    ServiceStatus = "active"
	ServiceStatusFiled     ServiceStatus = "filed"
	ServiceStatusCompleted ServiceStatus = "completed"
	ServiceStatusExpired   ServiceStatus = "expired"
	ServiceStatusCancelled ServiceStatus = "cancelled"
)

// Terminal reports whether a status is final: no lifecycle job mutates a
// service once it is expired or cancelled.
func (s ServiceStatus) Terminal() bool {
	return s == ServiceStatusExpired || s == ServiceStatusCancelled
}

// TerminalStatuses is the exclusion list used in lifecycle queries.
var TerminalStatuses = []ServiceStatus{ServiceStatusExpired, ServiceStatusCancelled}

type BundleType string

const (
	// BundleTypeStarter groups arbitration enrollment and BOC-3 filing.
	BundleTypeStarter BundleType = "starter"
	// BundleTypeCarrier groups arbitration enrollment and tariff publishing.
	BundleTypeCarrier BundleType = "carrier"
	// BundleTypeComplete groups all three filings.
	BundleTypeComplete BundleType = "complete"
)

type NotificationType string

const (
	NotificationTypeExpiry30Day      NotificationType = "expiry_30day"
	NotificationTypeExpiry5Day       NotificationType = "expiry_5day"
	NotificationTypeAutopay10Day     NotificationType = "autopay_10day"
	NotificationTypeAutopayProcessed NotificationType = "autopay_processed"
	NotificationTypeAutopayFailed    NotificationType = "autopay_failed"
)
