package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/resalign/internal/models"
)

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	FindByTriple(ctx context.Context, userID string, resumeID, jdID uuid.UUID) ([]models.Analysis, error)
	FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Analysis, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, report datatypes.JSON, completedAt time.Time) error
	MarkError(ctx context.Context, id uuid.UUID, errorMsg string) error
	MarkStaleRunning(ctx context.Context, startedBefore time.Time, errorMsg string) (int64, error)
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}
	return nil
}

// FindByTriple returns every analysis for the triple, newest first.
func (r *analysisRepository) FindByTriple(ctx context.Context, userID string, resumeID, jdID uuid.UUID) ([]models.Analysis, error) {
	var analyses []models.Analysis
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND resume_id = ? AND jd_id = ?", userID, resumeID, jdID).
		Order("created_at DESC").
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find analyses: %w", err)
	}
	return analyses, nil
}

func (r *analysisRepository) FindByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&analysis).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("analysis %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find analysis: %w", err)
	}
	return &analysis, nil
}

// MarkCompleted stores the report and completion time in one update. Only a
// running analysis can complete.
func (r *analysisRepository) MarkCompleted(ctx context.Context, id uuid.UUID, report datatypes.JSON, completedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ? AND status = ?", id, models.StatusRunning).
		Updates(map[string]interface{}{
			"status":       models.StatusCompleted,
			"report":       report,
			"completed_at": completedAt,
			"updated_at":   completedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to save report: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("analysis %s: %w", id, ErrNotRunning)
	}

	return nil
}

func (r *analysisRepository) MarkError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	result := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("id = ? AND status = ?", id, models.StatusRunning).
		Updates(map[string]interface{}{
			"status":        models.StatusError,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update error: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("analysis %s: %w", id, ErrNotRunning)
	}

	return nil
}

// MarkStaleRunning fails analyses that have been running since before the
// cutoff, which only happens when the process died mid-pipeline.
func (r *analysisRepository) MarkStaleRunning(ctx context.Context, startedBefore time.Time, errorMsg string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Analysis{}).
		Where("status = ? AND created_at < ?", models.StatusRunning, startedBefore).
		Updates(map[string]interface{}{
			"status":        models.StatusError,
			"error_message": errorMsg,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to sweep stale analyses: %w", result.Error)
	}

	return result.RowsAffected, nil
}
