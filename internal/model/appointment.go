package model

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Appointment status. pending and confirmed occupy their slot;
// cancelled and completed are terminal and free it.
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Operation requested for the appointment, mirroring the court registry
// (islem_turu) catalogue.
type OperationType string

const (
	OpFiling           OperationType = "dava_acma"
	OpHearing          OperationType = "durusma"
	OpDocumentDelivery OperationType = "evrak_teslimi"
	OpInquiry          OperationType = "bilgi_alma"
	OpFeePayment       OperationType = "harc_odeme"
	OpMediation        OperationType = "uzlasma"
	OpWitness          OperationType = "taniklik"
	OpExpertReview     OperationType = "bilirkisi"
	OpOther            OperationType = "diger"
)

// appointments
type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`

	CitizenID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CourtID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	JudgeID   *uuid.UUID `gorm:"type:uuid;index"`

	Date datatypes.Date `gorm:"column:appointment_date;type:date;not null;index"`
	// Slot start as "HH:MM"; slot width is fixed (SlotStepMinutes).
	Time string `gorm:"column:appointment_time;type:varchar(5);not null"`

	Operation OperationType     `gorm:"type:varchar(32);not null;index"`
	Status    AppointmentStatus `gorm:"type:varchar(32);not null;index"`

	// One row per live (court, judge, date, time) combination. The partial
	// unique index is the commit-time guarantee against double booking;
	// terminal rows fall outside the predicate and stop blocking the slot.
	SlotKey string `gorm:"type:varchar(128);not null;uniqueIndex:uniq_active_slot,where:status IN ('pending','confirmed')"`

	// Human-readable code, 8 chars of [A-Z0-9], immutable once assigned.
	Code string `gorm:"type:varchar(10);not null;uniqueIndex"`

	Notes        string `gorm:"type:text"`
	CancelReason string `gorm:"type:text"`

	ReminderSent bool `gorm:"not null;default:false;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Citizen *User  `gorm:"foreignKey:CitizenID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Court   *Court `gorm:"foreignKey:CourtID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Judge   *Judge `gorm:"foreignKey:JudgeID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// SlotStepMinutes is the fixed appointment slot width.
const SlotStepMinutes = 30

// DateOf truncates t to a calendar day pinned to UTC midnight, so equal
// days always compare equal regardless of the wall clock they came from.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DateTime returns the underlying UTC-midnight time of a stored date.
func DateTime(d datatypes.Date) time.Time {
	return time.Time(d)
}

// SlotKeyFor builds the occupancy key for a (court, judge, date, time)
// combination. A booking without a judge occupies the court-wide slot,
// so the judge segment collapses to "-" rather than being omitted.
func SlotKeyFor(courtID uuid.UUID, judgeID *uuid.UUID, date time.Time, hhmm string) string {
	judge := "-"
	if judgeID != nil {
		judge = judgeID.String()
	}
	return fmt.Sprintf("%s|%s|%s|%s", courtID, judge, date.Format("2006-01-02"), hhmm)
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the length of an appointment code.
const CodeLength = 8

// NewCode draws a random appointment code. Uniqueness is the caller's
// responsibility (re-check against the store and redraw on collision).
func NewCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(fmt.Sprintf("appointment code entropy: %v", err))
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
