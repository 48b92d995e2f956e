package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnalysisStatus string

const (
	StatusRunning   AnalysisStatus = "running"
	StatusCompleted AnalysisStatus = "completed"
	StatusError     AnalysisStatus = "error"
)

type FitClassification string

const (
	GoodFit    FitClassification = "GOOD_FIT"
	PartialFit FitClassification = "PARTIAL_FIT"
	NotFit     FitClassification = "NOT_FIT"
)

type LearningResource struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	ResourceType   string `json:"resource_type"`
	URL            string `json:"url"`
	EstimatedHours int    `json:"estimated_hours"`
}

// Report is the persisted outcome of a completed analysis.
type Report struct {
	OverallScore      float64            `json:"overall_score"`
	FitClassification FitClassification  `json:"fit_classification"`
	FitRationale      string             `json:"fit_rationale"`
	CategoryScores    map[string]float64 `json:"category_scores"`
	Recommendations   []string           `json:"recommendations"`
	LearningResources []LearningResource `json:"learning_resources"`
}

type Analysis struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       string         `gorm:"type:text;not null;index:idx_analysis_triple" json:"user_id"`
	ResumeID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_analysis_triple" json:"resume_id"`
	JDID         uuid.UUID      `gorm:"column:jd_id;type:uuid;not null;index:idx_analysis_triple" json:"jd_id"`
	Status       AnalysisStatus `gorm:"type:text;not null;default:'running';index" json:"status"`
	Report       datatypes.JSON `gorm:"type:jsonb" json:"report,omitempty"`
	ErrorMessage *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`

	Resume         Resume         `gorm:"foreignKey:ResumeID" json:"-"`
	JobDescription JobDescription `gorm:"foreignKey:JDID" json:"-"`
}

func (Analysis) TableName() string {
	return "analyses"
}

// HasReport reports whether the record carries a non-empty stored report.
func (a *Analysis) HasReport() bool {
	s := string(a.Report)
	return len(a.Report) > 0 && s != "null" && s != "{}"
}
