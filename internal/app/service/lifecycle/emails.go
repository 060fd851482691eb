package lifecycle

import (
	"fmt"

	"github.com/roadfile/compliance/internal/models"
	"github.com/roadfile/compliance/pkg/types"
)

func serviceDisplayName(st types.ServiceType) string {
	switch st {
	case types.ServiceTypeArbitration:
		return "arbitration program enrollment"
	case types.ServiceTypeTariff:
		return "tariff publication"
	case types.ServiceTypeBoc3:
		return "BOC-3 process agent filing"
	case types.ServiceTypeBundle:
		return "compliance bundle"
	default:
		return string(st)
	}
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func expiryWarningSubject(st types.ServiceType) string {
	return fmt.Sprintf("Your %s expires in 30 days", serviceDisplayName(st))
}

func urgentWarningSubject(st types.ServiceType) string {
	return fmt.Sprintf("Urgent: your %s expires in 5 days", serviceDisplayName(st))
}

func autopayReminderSubject(st types.ServiceType) string {
	return fmt.Sprintf("Upcoming automatic renewal of your %s", serviceDisplayName(st))
}

func autopaySuccessSubject(st types.ServiceType) string {
	return fmt.Sprintf("Your %s has been renewed", serviceDisplayName(st))
}

func autopayFailureSubject(st types.ServiceType) string {
	return fmt.Sprintf("Payment failed for your %s renewal", serviceDisplayName(st))
}

// renderEmailBody wraps a message in the shared email shell. Document and
// email presentation beyond this wrapper belongs to the template service.
func renderEmailBody(user *models.User, msg string) string {
	return fmt.Sprintf(
		"<html><body><p>Hello %s,</p><p>%s</p><p>&mdash; The RoadFile Compliance Team</p></body></html>",
		user.CompanyName, msg,
	)
}
