package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/matching"
	"alfredoptarigan/resalign/internal/models"
)

// Fallback generators wrap a model-backed generator and substitute fixed,
// classification-specific content when it fails. They are opt-in; without them
// a failed step leaves its report field empty.

type fallbackRationale struct {
	next RationaleGenerator
	log  *zap.Logger
}

func WithRationaleFallback(next RationaleGenerator, log *zap.Logger) RationaleGenerator {
	return &fallbackRationale{next: next, log: logger.OrNop(log)}
}

func (f *fallbackRationale) GenerateRationale(ctx context.Context, in EnrichmentInput) (string, error) {
	rationale, err := f.next.GenerateRationale(ctx, in)
	if err == nil && rationale != "" {
		return rationale, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	f.log.Warn("using fallback rationale", zap.Error(err))
	return FallbackRationale(in.Scores.Overall, in.Classification), nil
}

type fallbackRecommendations struct {
	next RecommendationGenerator
	log  *zap.Logger
}

func WithRecommendationFallback(next RecommendationGenerator, log *zap.Logger) RecommendationGenerator {
	return &fallbackRecommendations{next: next, log: logger.OrNop(log)}
}

func (f *fallbackRecommendations) GenerateRecommendations(ctx context.Context, in EnrichmentInput) ([]string, error) {
	recs, err := f.next.GenerateRecommendations(ctx, in)
	if err == nil && len(recs) > 0 {
		return recs, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	f.log.Warn("using fallback recommendations", zap.Error(err))
	return FallbackRecommendations(in.Classification), nil
}

type fallbackResources struct {
	next LearningResourceGenerator
	log  *zap.Logger
}

func WithResourceFallback(next LearningResourceGenerator, log *zap.Logger) LearningResourceGenerator {
	return &fallbackResources{next: next, log: logger.OrNop(log)}
}

func (f *fallbackResources) GenerateResources(ctx context.Context, in EnrichmentInput) ([]models.LearningResource, error) {
	resources, err := f.next.GenerateResources(ctx, in)
	if err == nil && len(resources) > 0 {
		return resources, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	f.log.Warn("using fallback learning resources", zap.Error(err))
	return FallbackResources(in.Scores), nil
}

func FallbackRationale(overall float64, classification models.FitClassification) string {
	switch classification {
	case models.GoodFit:
		return fmt.Sprintf("The candidate aligns strongly with the role, with an overall score of %.1f/100. "+
			"The profile covers the highest weighted areas well, particularly technical skills and experience, "+
			"and suggests the candidate could contribute with minimal onboarding.", overall)
	case models.PartialFit:
		return fmt.Sprintf("The candidate aligns moderately with the role, with an overall score of %.1f/100. "+
			"There is a solid foundation in several areas alongside gaps in others. "+
			"Those gaps look addressable through targeted development or on-the-job learning.", overall)
	default:
		return fmt.Sprintf("The candidate shows limited alignment with the role, with an overall score of %.1f/100. "+
			"Significant gaps exist in critical areas and would need substantial development. "+
			"Roles closer to the candidate's current strengths may be a better match.", overall)
	}
}

func FallbackRecommendations(classification models.FitClassification) []string {
	switch classification {
	case models.GoodFit:
		return []string{
			"You should quantify your achievements with specific metrics so your impact is tangible to hiring managers.",
			"Start your bullet points with strong action verbs such as Implemented, Optimized or Led.",
			"Make sure your skills section prominently lists the key technologies named in the job description.",
		}
	case models.PartialFit:
		return []string{
			"You should add examples that directly address the required skills in the job description.",
			"Reorder your sections so your most relevant experience and projects come first.",
			"Reframe your bullet points around measurable outcomes such as numbers, percentages or scale.",
			"List relevant certifications or courses you have completed that match the job requirements.",
		}
	default:
		return []string{
			"You should build projects or gain experience in the key technologies this role requires.",
			"Pursue certifications in the critical skills named in the job description.",
			"Reframe your existing experience to emphasize skills that transfer to this position.",
			"Add relevant coursework or personal projects that align with the job requirements.",
		}
	}
}

// FallbackResources suggests generic resources aimed at the weakest category.
func FallbackResources(scores matching.ScoreSet) []models.LearningResource {
	var out []models.LearningResource
	lowest, score := scores.Lowest()

	if lowest == matching.SkillsMatch || score < matching.PartialFitThreshold {
		out = append(out,
			models.LearningResource{
				Title:          "Technical Skills Development",
				Description:    "You should build the technical skills this role requires through online courses and hands-on projects.",
				Category:       "technical_skills",
				ResourceType:   "course",
				URL:            "https://www.coursera.org/",
				EstimatedHours: 40,
			},
			models.LearningResource{
				Title:          "Industry Certification Path",
				Description:    "You should pursue a relevant industry certification to demonstrate your expertise.",
				Category:       "certifications",
				ResourceType:   "certification",
				URL:            "https://www.udemy.com/",
				EstimatedHours: 30,
			},
		)
	}

	if lowest == matching.SoftSkillsAndCulture {
		out = append(out, models.LearningResource{
			Title:          "Professional Communication and Leadership",
			Description:    "You should develop communication, teamwork and leadership through structured courses.",
			Category:       "soft_skills",
			ResourceType:   "course",
			URL:            "https://www.linkedin.com/learning/",
			EstimatedHours: 20,
		})
	}

	if len(out) == 0 {
		out = append(out, models.LearningResource{
			Title:          "Skill Enhancement for Career Growth",
			Description:    "You should use online learning platforms to keep developing skills aligned with your goals.",
			Category:       "technical_skills",
			ResourceType:   "course",
			URL:            "https://www.edx.org/",
			EstimatedHours: 30,
		})
	}

	return out
}
