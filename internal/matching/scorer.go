package matching

import (
	"fmt"
	"math"

	"alfredoptarigan/resalign/internal/models"
)

const (
	GoodFitThreshold    = 80.0
	PartialFitThreshold = 60.0
)

// Weights is the fixed contribution of each category to the overall score.
var Weights = map[Category]float64{
	SkillsMatch:                0.35,
	ExperienceAlignment:        0.25,
	EducationAndCertifications: 0.20,
	AchievementsAndOutcomes:    0.10,
	SoftSkillsAndCulture:       0.10,
}

func init() {
	if err := validateWeights(Weights); err != nil {
		panic(err)
	}
}

// WeightSum adds the weights in category order.
func WeightSum(weights map[Category]float64) float64 {
	var sum float64
	for _, c := range Categories {
		sum += weights[c]
	}
	return sum
}

func validateWeights(weights map[Category]float64) error {
	if len(weights) != len(Categories) {
		return fmt.Errorf("weight table has %d entries, want %d", len(weights), len(Categories))
	}
	for _, c := range Categories {
		if _, ok := weights[c]; !ok {
			return fmt.Errorf("missing weight for category %s", c)
		}
	}
	if sum := WeightSum(weights); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("category weights sum to %v, want 1.0", sum)
	}
	return nil
}

// ScoreSet holds one score per category. Overall is derived from Categories
// and is only ever set by NewScoreSet.
type ScoreSet struct {
	Categories map[Category]float64
	Overall    float64
}

func NewScoreSet(categories map[Category]float64) ScoreSet {
	scores := make(map[Category]float64, len(categories))
	var overall float64
	for _, c := range Categories {
		scores[c] = categories[c]
		overall += categories[c] * Weights[c]
	}
	return ScoreSet{Categories: scores, Overall: overall}
}

// CategoryScores returns the per-category scores keyed by category name,
// without the overall score.
func (s ScoreSet) CategoryScores() map[string]float64 {
	out := make(map[string]float64, len(s.Categories))
	for c, v := range s.Categories {
		out[string(c)] = v
	}
	return out
}

// Lowest returns the category with the lowest score, ties broken by category order.
func (s ScoreSet) Lowest() (Category, float64) {
	lowest, score := Categories[0], math.Inf(1)
	for _, c := range Categories {
		if v := s.Categories[c]; v < score {
			lowest, score = c, v
		}
	}
	return lowest, score
}

// CalculateScores runs the matcher once and converts each match percentage
// into a category score.
func CalculateScores(resume *models.StructuredResume, jd *models.StructuredJobDescription) (ScoreSet, Matches) {
	matches := CalculateMatches(resume, jd)
	categories := make(map[Category]float64, len(matches))
	for c, d := range matches {
		categories[c] = d.MatchPercentage
	}
	return NewScoreSet(categories), matches
}

func Classify(score float64) models.FitClassification {
	switch {
	case score >= GoodFitThreshold:
		return models.GoodFit
	case score >= PartialFitThreshold:
		return models.PartialFit
	default:
		return models.NotFit
	}
}
