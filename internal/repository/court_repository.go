package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

type CourtRepository interface {
	// Get one court by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Court, error)
	// Active courts, optionally narrowed by type.
	ListActive(ctx context.Context, courtType model.CourtType) ([]model.Court, error)
	// Judges assigned to a court.
	ListJudges(ctx context.Context, courtID uuid.UUID) ([]model.Judge, error)
	// Get one judge by ID.
	GetJudge(ctx context.Context, id uuid.UUID) (*model.Judge, error)
}

type GormCourtRepository struct {
	db *gorm.DB
}

func NewGormCourtRepository(db *gorm.DB) *GormCourtRepository {
	return &GormCourtRepository{db: db}
}

func (r *GormCourtRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Court, error) {
	var c model.Court
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCourtRepository) ListActive(ctx context.Context, courtType model.CourtType) ([]model.Court, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if courtType != "" {
		q = q.Where("type = ?", courtType)
	}
	var out []model.Court
	if err := q.Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCourtRepository) ListJudges(ctx context.Context, courtID uuid.UUID) ([]model.Judge, error) {
	var out []model.Judge
	err := r.db.WithContext(ctx).
		Where("court_id = ? AND active = ?", courtID, true).
		Order("registry_no ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormCourtRepository) GetJudge(ctx context.Context, id uuid.UUID) (*model.Judge, error) {
	var j model.Judge
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}
