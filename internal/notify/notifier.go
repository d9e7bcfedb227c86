// Package notify is the outbound boundary to the notification
// collaborator. Calls are fire-and-forget from the core's perspective:
// a failed send is logged and retried on the next scheduled pass, it
// never blocks or rolls back a state transition.
package notify

import (
	"context"
	"log"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

// Recipient is the contact surface of a notification target.
type Recipient struct {
	Name         string
	Email        string
	Phone        string
	EmailEnabled bool
	SMSEnabled   bool
}

// AppointmentSummary is what a notification template needs to render.
type AppointmentSummary struct {
	Code        string
	CitizenName string
	CourtName   string
	Date        string // YYYY-MM-DD
	Time        string // HH:MM
	Operation   model.OperationType
}

type Notifier interface {
	SendAppointmentReminder(ctx context.Context, to Recipient, appt AppointmentSummary) error
	SendStatusChangeNotice(ctx context.Context, to Recipient, appt AppointmentSummary, newStatus model.AppointmentStatus) error
	// SendDailyCourtSummary delivers the morning digest of a court's
	// appointments for the day to the court's staff address.
	SendDailyCourtSummary(ctx context.Context, courtName, courtEmail, date string, appts []AppointmentSummary) error
}

// LogNotifier writes notifications to the process log. Used in
// development and as the fallback when no broker is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendAppointmentReminder(_ context.Context, to Recipient, appt AppointmentSummary) error {
	log.Printf("[notify] reminder to %s (%s): appointment %s at %s on %s %s",
		to.Name, to.Email, appt.Code, appt.CourtName, appt.Date, appt.Time)
	return nil
}

func (n *LogNotifier) SendStatusChangeNotice(_ context.Context, to Recipient, appt AppointmentSummary, newStatus model.AppointmentStatus) error {
	log.Printf("[notify] status change to %s (%s): appointment %s is now %s",
		to.Name, to.Email, appt.Code, newStatus)
	return nil
}

func (n *LogNotifier) SendDailyCourtSummary(_ context.Context, courtName, courtEmail, date string, appts []AppointmentSummary) error {
	log.Printf("[notify] daily summary to %s (%s): %d appointments on %s",
		courtName, courtEmail, len(appts), date)
	return nil
}
