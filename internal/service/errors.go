package service

import "errors"

// Typed failures of the booking core. The transport layer maps these to
// its own status codes; the core itself never retries them.
var (
	// The requested (court, judge?, date, time) is already held by a
	// non-terminal appointment.
	ErrSlotTaken = errors.New("slot already taken")
	// The citizen already holds the maximum number of non-terminal
	// appointments for that date.
	ErrDailyLimitExceeded = errors.New("daily appointment limit exceeded")
	// The requested time is not an offerable slot of the court's or
	// judge's working window for that date.
	ErrOutsideWorkingHours = errors.New("outside working hours")
	// The requested date/time has already elapsed.
	ErrPastDate = errors.New("appointment date is in the past")
	// The requested state change is not legal from the appointment's
	// current status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// Cancellation needs a stated reason.
	ErrReasonRequired = errors.New("cancellation reason required")

	// Citizen validation.
	ErrUserNotFound = errors.New("user not found")
	ErrUserInactive = errors.New("user is inactive")
)

// MaxDailyAppointments is the per-citizen cap of non-terminal
// appointments on one calendar date.
const MaxDailyAppointments = 2
