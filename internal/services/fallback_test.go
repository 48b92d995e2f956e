package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resalign/internal/matching"
	"alfredoptarigan/resalign/internal/models"
)

func TestRationaleFallback(t *testing.T) {
	failing := rationaleFunc(func(context.Context, EnrichmentInput) (string, error) {
		return "", errors.New("model down")
	})
	in := EnrichmentInput{Classification: models.PartialFit, Scores: matching.ScoreSet{Overall: 65.5}}

	got, err := WithRationaleFallback(failing, nil).GenerateRationale(context.Background(), in)

	require.NoError(t, err)
	assert.Contains(t, got, "65.5/100")
	assert.Contains(t, got, "moderately")
}

func TestRationaleFallbackKeepsModelOutput(t *testing.T) {
	ok := rationaleFunc(func(context.Context, EnrichmentInput) (string, error) {
		return "model text", nil
	})

	got, err := WithRationaleFallback(ok, nil).GenerateRationale(context.Background(), EnrichmentInput{})

	require.NoError(t, err)
	assert.Equal(t, "model text", got)
}

func TestFallbackRespectsCancellation(t *testing.T) {
	failing := recommendationsFunc(func(ctx context.Context, _ EnrichmentInput) ([]string, error) {
		return nil, ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithRecommendationFallback(failing, nil).GenerateRecommendations(ctx, EnrichmentInput{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFallbackRecommendations(t *testing.T) {
	assert.Len(t, FallbackRecommendations(models.GoodFit), 3)
	assert.Len(t, FallbackRecommendations(models.PartialFit), 4)
	assert.Len(t, FallbackRecommendations(models.NotFit), 4)

	empty := recommendationsFunc(func(context.Context, EnrichmentInput) ([]string, error) {
		return nil, nil
	})
	got, err := WithRecommendationFallback(empty, nil).GenerateRecommendations(context.Background(), EnrichmentInput{Classification: models.GoodFit})
	require.NoError(t, err)
	assert.Equal(t, FallbackRecommendations(models.GoodFit), got)
}

func scoreSet(skills, experience, education, achievements, soft float64) matching.ScoreSet {
	return matching.NewScoreSet(map[matching.Category]float64{
		matching.SkillsMatch:                skills,
		matching.ExperienceAlignment:        experience,
		matching.EducationAndCertifications: education,
		matching.AchievementsAndOutcomes:    achievements,
		matching.SoftSkillsAndCulture:       soft,
	})
}

func TestFallbackResources(t *testing.T) {
	tests := []struct {
		name   string
		scores matching.ScoreSet
		titles []string
	}{
		{
			name:   "weak skills",
			scores: scoreSet(40, 90, 90, 90, 90),
			titles: []string{"Technical Skills Development", "Industry Certification Path"},
		},
		{
			name:   "weak soft skills",
			scores: scoreSet(90, 90, 90, 90, 70),
			titles: []string{"Professional Communication and Leadership"},
		},
		{
			name:   "very weak soft skills",
			scores: scoreSet(90, 90, 90, 90, 20),
			titles: []string{"Technical Skills Development", "Industry Certification Path", "Professional Communication and Leadership"},
		},
		{
			name:   "no weak spot",
			scores: scoreSet(90, 90, 85, 90, 90),
			titles: []string{"Skill Enhancement for Career Growth"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var titles []string
			for _, r := range FallbackResources(tt.scores) {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.titles, titles)
		})
	}
}
