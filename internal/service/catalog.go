package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

// Court catalogue lookups backing the slot browse flow.

// ListCourts returns the active courts, optionally narrowed by type.
func (s *BookingService) ListCourts(ctx context.Context, courtType model.CourtType) ([]model.Court, error) {
	return s.courts.ListActive(ctx, courtType)
}

// ListJudges returns the active judges of a court.
func (s *BookingService) ListJudges(ctx context.Context, courtID uuid.UUID) ([]model.Judge, error) {
	return s.courts.ListJudges(ctx, courtID)
}
