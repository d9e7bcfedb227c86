package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

// State machine: pending -> confirmed -> completed, and any
// non-terminal status -> cancelled. Every transition is one conditional
// update scoped to the expected prior status, so a concurrent
// conflicting transition loses deterministically instead of silently
// overwriting.

// Confirm moves a pending appointment to confirmed (staff action).
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, &actorID,
		[]model.AppointmentStatus{model.StatusPending},
		model.StatusConfirmed,
		model.EventAppointmentConfirmed,
		nil,
	)
}

// Cancel voids a non-terminal appointment. A reason is mandatory; the
// slot frees up immediately for other citizens.
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID, actorID uuid.UUID, reason string) (*model.Appointment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	return s.transition(ctx, id, &actorID,
		[]model.AppointmentStatus{model.StatusPending, model.StatusConfirmed},
		model.StatusCancelled,
		model.EventAppointmentCancelled,
		map[string]any{"cancel_reason": reason},
	)
}

// Complete closes a confirmed appointment (staff/judge action; the
// no-show pass uses the same conditional update in bulk).
func (s *BookingService) Complete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, &actorID,
		[]model.AppointmentStatus{model.StatusConfirmed},
		model.StatusCompleted,
		model.EventAppointmentCompleted,
		nil,
	)
}

func (s *BookingService) transition(
	ctx context.Context,
	id uuid.UUID,
	actorID *uuid.UUID,
	expected []model.AppointmentStatus,
	to model.AppointmentStatus,
	event model.EventType,
	extra map[string]any,
) (*model.Appointment, error) {
	affected, err := s.appts.UpdateStatusIf(ctx, id, expected, to, extra)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Distinguish "no such appointment" from "wrong status".
		if _, err := s.appts.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrInvalidTransition
	}

	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, event, actorID, &appt.ID, "status="+string(to))

	if citizen, err := s.users.GetByID(ctx, appt.CitizenID); err == nil {
		s.notifyStatus(ctx, citizen, appt, to)
	}

	return appt, nil
}
