package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resalign/internal/models"
)

type JobDescriptionRepository interface {
	Create(ctx context.Context, jd *models.JobDescription) error
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.JobDescription, error)
}

type jobDescriptionRepository struct {
	db *gorm.DB
}

func NewJobDescriptionRepository(db *gorm.DB) JobDescriptionRepository {
	return &jobDescriptionRepository{db: db}
}

func (r *jobDescriptionRepository) Create(ctx context.Context, jd *models.JobDescription) error {
	if err := r.db.WithContext(ctx).Create(jd).Error; err != nil {
		return fmt.Errorf("failed to create job description: %w", err)
	}
	return nil
}

func (r *jobDescriptionRepository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.JobDescription, error) {
	var jd models.JobDescription
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&jd).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("job description %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find job description: %w", err)
	}
	return &jd, nil
}
