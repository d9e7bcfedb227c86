package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

// validateCitizen checks that the booking party exists and is active.
// Deactivated accounts (revoked lawyers, blocked citizens) cannot
// reserve slots even through stale sessions.
func (s *BookingService) validateCitizen(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrUserInactive
	}
	return u, nil
}
