package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/saliheu/mahkeme-randevu/internal/model"
)

type JobLogRepository interface {
	// Append one run record.
	Create(ctx context.Context, entry *model.JobLog) error
	// Runs of a job since the given time, newest first.
	ListRecent(ctx context.Context, jobName string, since time.Time) ([]model.JobLog, error)
}

type GormJobLogRepository struct {
	db *gorm.DB
}

func NewGormJobLogRepository(db *gorm.DB) *GormJobLogRepository {
	return &GormJobLogRepository{db: db}
}

func (r *GormJobLogRepository) Create(ctx context.Context, entry *model.JobLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *GormJobLogRepository) ListRecent(ctx context.Context, jobName string, since time.Time) ([]model.JobLog, error) {
	var out []model.JobLog
	err := r.db.WithContext(ctx).
		Where("job_name = ? AND created_at >= ?", jobName, since).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
