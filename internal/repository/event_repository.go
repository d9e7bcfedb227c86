package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

type EventRepository interface {
	// Append one audit event.
	Create(ctx context.Context, ev *model.Event) error
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, ev *model.Event) error {
	return r.db.WithContext(ctx).Create(ev).Error
}
