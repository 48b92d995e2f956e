package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"alfredoptarigan/resalign/internal/models"
)

var errNoContent = errors.New("model response contained no usable content")

// extractJSON strips markdown fences and returns the outermost JSON value,
// whichever of object or array opens first.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	objOK := startObj != -1 && endObj > startObj
	arrOK := startArr != -1 && endArr > startArr

	switch {
	case arrOK && (!objOK || startArr < startObj):
		return strings.TrimSpace(text[startArr : endArr+1])
	case objOK:
		return strings.TrimSpace(text[startObj : endObj+1])
	}

	return strings.TrimSpace(text)
}

// listMarker matches "1." "2)" "-" "*" or "•" at the start of a line.
var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)

// ParseRecommendations accepts a JSON array of strings or of objects, an
// object wrapping such an array, or a plain numbered or bulleted list.
func ParseRecommendations(response string) ([]string, error) {
	raw := extractJSON(response)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		var wrapper map[string]json.RawMessage
		if json.Unmarshal([]byte(raw), &wrapper) == nil {
			if inner, ok := wrapper["recommendations"]; ok {
				_ = json.Unmarshal(inner, &items)
			}
		}
	}

	var out []string
	for _, item := range items {
		if s := recommendationText(item); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	for _, line := range strings.Split(response, "\n") {
		if !listMarker.MatchString(line) {
			continue
		}
		if s := strings.TrimSpace(listMarker.ReplaceAllString(line, "")); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, errNoContent
	}

	return out, nil
}

func recommendationText(item json.RawMessage) string {
	var s string
	if json.Unmarshal(item, &s) == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Recommendation string `json:"recommendation"`
		Text           string `json:"text"`
	}
	if json.Unmarshal(item, &obj) == nil {
		if obj.Recommendation != "" {
			return strings.TrimSpace(obj.Recommendation)
		}
		return strings.TrimSpace(obj.Text)
	}

	return ""
}

var resourceWrapperKeys = []string{"resources", "learning_resources", "recommendations", "items", "data"}

// ParseLearningResources accepts a JSON array of resources or an object that
// wraps one under a well-known key. Entries without a title are dropped.
func ParseLearningResources(response string) ([]models.LearningResource, error) {
	raw := []byte(extractJSON(response))

	var resources []models.LearningResource
	if err := json.Unmarshal(raw, &resources); err != nil {
		var wrapper map[string]json.RawMessage
		if werr := json.Unmarshal(raw, &wrapper); werr != nil {
			return nil, fmt.Errorf("failed to unmarshal learning resources: %w", err)
		}
		for _, key := range resourceWrapperKeys {
			inner, ok := wrapper[key]
			if !ok {
				continue
			}
			if json.Unmarshal(inner, &resources) == nil {
				break
			}
		}
	}

	out := make([]models.LearningResource, 0, len(resources))
	for _, r := range resources {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			continue
		}
		if r.EstimatedHours < 0 {
			r.EstimatedHours = 0
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, errNoContent
	}

	return out, nil
}
