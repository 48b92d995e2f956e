package services

import (
	"context"

	"alfredoptarigan/resalign/internal/matching"
	"alfredoptarigan/resalign/internal/models"
)

// EnrichmentInput carries everything the text-generation steps may draw on.
// Rationale is empty while the rationale itself is being generated.
type EnrichmentInput struct {
	Resume         *models.StructuredResume
	JobDescription *models.StructuredJobDescription
	ResumeText     string
	Scores         matching.ScoreSet
	Matches        matching.Matches
	Classification models.FitClassification
	Rationale      string
}

type RationaleGenerator interface {
	GenerateRationale(ctx context.Context, in EnrichmentInput) (string, error)
}

type RecommendationGenerator interface {
	GenerateRecommendations(ctx context.Context, in EnrichmentInput) ([]string, error)
}

type LearningResourceGenerator interface {
	GenerateResources(ctx context.Context, in EnrichmentInput) ([]models.LearningResource, error)
}

// DocumentConverter turns an original résumé file into plain text.
type DocumentConverter interface {
	Convert(data []byte) (string, error)
}
