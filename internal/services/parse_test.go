package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced array", "```json\n[\"a\", \"b\"]\n```", `["a", "b"]`},
		{"object with prose", `Here you go: {"a": 1} thanks`, `{"a": 1}`},
		{"array of objects", `[{"title": "x"}]`, `[{"title": "x"}]`},
		{"no json", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.in))
		})
	}
}

func TestParseRecommendations(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "string array",
			in:   "```json\n[\"Add metrics to your bullets.\", \"Move skills to the top.\"]\n```",
			want: []string{"Add metrics to your bullets.", "Move skills to the top."},
		},
		{
			name: "object array",
			in:   `[{"recommendation": "Use action verbs."}, {"text": "Trim the summary."}]`,
			want: []string{"Use action verbs.", "Trim the summary."},
		},
		{
			name: "wrapped",
			in:   `{"recommendations": ["Add a projects section."]}`,
			want: []string{"Add a projects section."},
		},
		{
			name: "numbered list",
			in:   "Suggestions:\n1. Quantify results.\n2) Add Kubernetes.\n- Remove photo.",
			want: []string{"Quantify results.", "Add Kubernetes.", "Remove photo."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecommendations(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRecommendationsEmpty(t *testing.T) {
	_, err := ParseRecommendations("I cannot help with that.")
	assert.ErrorIs(t, err, errNoContent)

	_, err = ParseRecommendations("[]")
	assert.ErrorIs(t, err, errNoContent)
}

func TestParseLearningResources(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		got, err := ParseLearningResources(`[{"title": "Go in Action", "category": "technical_skills", "resource_type": "book", "url": "https://example.com", "estimated_hours": 12}]`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Go in Action", got[0].Title)
		assert.Equal(t, 12, got[0].EstimatedHours)
	})

	for _, key := range []string{"resources", "learning_resources", "items", "data"} {
		t.Run("wrapped in "+key, func(t *testing.T) {
			got, err := ParseLearningResources(`{"` + key + `": [{"title": "CKA"}]}`)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "CKA", got[0].Title)
		})
	}

	t.Run("drops untitled and clamps hours", func(t *testing.T) {
		got, err := ParseLearningResources(`[{"title": " "}, {"title": "SQL", "estimated_hours": -3}]`)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 0, got[0].EstimatedHours)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseLearningResources("no resources today")
		assert.Error(t, err)
	})
}
