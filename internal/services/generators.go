package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/matching"
	"alfredoptarigan/resalign/internal/models"
)

const (
	maxRecommendations   = 8
	maxLearningResources = 5
	catalogSearchLimit   = 5
	gapScoreThreshold    = 70.0
)

type geminiRationaleGenerator struct {
	gemini  GeminiService
	prompts *PromptBuilder
}

func NewRationaleGenerator(gemini GeminiService) RationaleGenerator {
	return &geminiRationaleGenerator{gemini: gemini, prompts: NewPromptBuilder()}
}

// GenerateRationale implements RationaleGenerator.
func (g *geminiRationaleGenerator) GenerateRationale(ctx context.Context, in EnrichmentInput) (string, error) {
	resp, err := g.gemini.GenerateTextWithRetry(ctx, g.prompts.BuildRationalePrompt(in))
	if err != nil {
		return "", fmt.Errorf("rationale generation failed: %w", err)
	}

	rationale := strings.TrimSpace(resp)
	if rationale == "" {
		return "", errNoContent
	}
	return rationale, nil
}

type geminiRecommendationGenerator struct {
	gemini  GeminiService
	prompts *PromptBuilder
}

func NewRecommendationGenerator(gemini GeminiService) RecommendationGenerator {
	return &geminiRecommendationGenerator{gemini: gemini, prompts: NewPromptBuilder()}
}

// GenerateRecommendations implements RecommendationGenerator.
func (g *geminiRecommendationGenerator) GenerateRecommendations(ctx context.Context, in EnrichmentInput) ([]string, error) {
	resp, err := g.gemini.GenerateTextWithRetry(ctx, g.prompts.BuildRecommendationPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("recommendation generation failed: %w", err)
	}

	recs, err := ParseRecommendations(resp)
	if err != nil {
		return nil, err
	}
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs, nil
}

type geminiResourceGenerator struct {
	gemini  GeminiService
	catalog ResourceCatalog
	prompts *PromptBuilder
	log     *zap.Logger
}

// NewLearningResourceGenerator builds the resource generator. catalog may be
// nil, in which case no curated entries are offered to the model.
func NewLearningResourceGenerator(gemini GeminiService, catalog ResourceCatalog, log *zap.Logger) LearningResourceGenerator {
	return &geminiResourceGenerator{
		gemini:  gemini,
		catalog: catalog,
		prompts: NewPromptBuilder(),
		log:     logger.OrNop(log).Named("resources"),
	}
}

// GenerateResources implements LearningResourceGenerator.
func (g *geminiResourceGenerator) GenerateResources(ctx context.Context, in EnrichmentInput) ([]models.LearningResource, error) {
	gaps := IdentifySkillGaps(in)
	catalogContext := g.catalogContext(ctx, in.JobDescription.JobTitle, gaps)

	resp, err := g.gemini.GenerateTextWithRetry(ctx, g.prompts.BuildLearningResourcePrompt(in, gaps, catalogContext))
	if err != nil {
		return nil, fmt.Errorf("learning resource generation failed: %w", err)
	}

	resources, err := ParseLearningResources(resp)
	if err != nil {
		return nil, err
	}
	if len(resources) > maxLearningResources {
		resources = resources[:maxLearningResources]
	}
	return resources, nil
}

// catalogContext looks up curated entries for the gaps. Lookup failures only
// cost the model some context.
func (g *geminiResourceGenerator) catalogContext(ctx context.Context, jobTitle string, gaps []string) string {
	if g.catalog == nil {
		return FormatCatalogContext(nil)
	}

	embedding, err := g.gemini.GenerateEmbedding(ctx, g.prompts.BuildCatalogQuery(jobTitle, gaps))
	if err != nil {
		g.log.Warn("catalog query embedding failed", zap.Error(err))
		return FormatCatalogContext(nil)
	}

	entries, err := g.catalog.Search(ctx, embedding, "", catalogSearchLimit)
	if err != nil {
		g.log.Warn("catalog search failed", zap.Error(err))
		return FormatCatalogContext(nil)
	}

	g.log.Debug("catalog entries retrieved", zap.Int("count", len(entries)))
	return FormatCatalogContext(entries)
}

// IdentifySkillGaps lists what the candidate most needs to work on, derived
// from category scores and match details.
func IdentifySkillGaps(in EnrichmentInput) []string {
	var gaps []string

	for _, c := range matching.Categories {
		if score := in.Scores.Categories[c]; score < gapScoreThreshold {
			gaps = append(gaps, fmt.Sprintf("Low score in %s (%.1f/100)", strings.ReplaceAll(string(c), "_", " "), score))
		}
	}

	if missing := in.Matches[matching.SkillsMatch].MissingRequired; len(missing) > 0 {
		gaps = append(gaps, "Missing required technical skills: "+strings.Join(firstN(missing, 5), ", "))
	}

	if d := in.Matches[matching.ExperienceAlignment].Experience; d != nil && !d.MeetsMinimum {
		gaps = append(gaps, fmt.Sprintf("Experience gap: %.1f years vs. %d years required", d.YearsExperience, d.YearsRequired))
	}

	if d := in.Matches[matching.EducationAndCertifications].Education; d != nil && d.CertificationsMatched == 0 && hasPreferredQualifications(in.JobDescription) {
		gaps = append(gaps, "No relevant certifications (recommended for this role)")
	}

	if len(gaps) == 0 {
		return []string{"General skill enhancement recommended"}
	}
	return gaps
}

func hasPreferredQualifications(jd *models.StructuredJobDescription) bool {
	p := jd.PreferredQualifications
	return len(p.Skills) > 0 || p.Education != "" || p.Experience != ""
}
