package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit event type.
type EventType string

const (
	EventAppointmentCreated   EventType = "appointment_created"
	EventAppointmentConfirmed EventType = "appointment_confirmed"
	EventAppointmentUpdated   EventType = "appointment_updated"
	EventAppointmentCancelled EventType = "appointment_cancelled"
	EventAppointmentCompleted EventType = "appointment_completed"
	EventReminderSent         EventType = "reminder_sent"
)

// events — audit trail
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`

	UserID        *uuid.UUID `gorm:"type:uuid;index"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index"`

	Details string `gorm:"type:text"`

	User        *User        `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Appointment *Appointment `gorm:"foreignKey:AppointmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}
