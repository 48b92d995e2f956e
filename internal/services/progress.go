package services

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"alfredoptarigan/resalign/internal/models"
)

type EventType string

const (
	EventProgress EventType = "progress"
	EventComplete EventType = "complete"
	EventError    EventType = "error"
)

type Stage string

const (
	StageStartingAnalysis          Stage = "starting_analysis"
	StageCalculatingScores         Stage = "calculating_scores"
	StageAssessingJobFit           Stage = "assessing_job_fit"
	StageGeneratingRecommendations Stage = "generating_recommendations"
	StageSaving                    Stage = "saving"
)

// Stages lists the progress stages in emission order.
var Stages = []Stage{
	StageStartingAnalysis,
	StageCalculatingScores,
	StageAssessingJobFit,
	StageGeneratingRecommendations,
	StageSaving,
}

var stageProgress = map[Stage]struct {
	percent int
	message string
}{
	StageStartingAnalysis:          {30, "Starting Analysis"},
	StageCalculatingScores:         {60, "Calculating Scores"},
	StageAssessingJobFit:           {65, "Assessing Job Fit"},
	StageGeneratingRecommendations: {80, "Generating Personalized Recommendations"},
	StageSaving:                    {90, "Saving Results"},
}

const (
	completeMessage = "Analysis complete!"
	failureMessage  = "Analysis failed. Please try again."
	doneSentinel    = "[DONE]"
)

type ProgressData struct {
	Stage    Stage  `json:"stage"`
	Progress int    `json:"progress"`
	Message  string `json:"message"`
}

type CompleteData struct {
	AnalysisID        string                    `json:"analysis_id"`
	OverallScore      float64                   `json:"overall_score"`
	FitClassification models.FitClassification  `json:"fit_classification"`
	FitRationale      string                    `json:"fit_rationale"`
	CategoryScores    map[string]float64        `json:"category_scores"`
	Recommendations   []string                  `json:"recommendations"`
	LearningResources []models.LearningResource `json:"learning_resources"`
	Progress          int                       `json:"progress"`
	Message           string                    `json:"message"`
}

type ErrorData struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Event is one message of an analysis progress stream. Data holds a
// ProgressData, CompleteData or ErrorData matching Event.
type Event struct {
	Event EventType   `json:"event"`
	Data  interface{} `json:"data"`
}

func (e Event) Terminal() bool {
	return e.Event == EventComplete || e.Event == EventError
}

func ProgressEvent(stage Stage) Event {
	p := stageProgress[stage]
	return Event{
		Event: EventProgress,
		Data:  ProgressData{Stage: stage, Progress: p.percent, Message: p.message},
	}
}

func CompleteEvent(analysisID uuid.UUID, report *models.Report) Event {
	recs := report.Recommendations
	if recs == nil {
		recs = []string{}
	}
	resources := report.LearningResources
	if resources == nil {
		resources = []models.LearningResource{}
	}
	scores := report.CategoryScores
	if scores == nil {
		scores = map[string]float64{}
	}
	return Event{
		Event: EventComplete,
		Data: CompleteData{
			AnalysisID:        analysisID.String(),
			OverallScore:      report.OverallScore,
			FitClassification: report.FitClassification,
			FitRationale:      report.FitRationale,
			CategoryScores:    scores,
			Recommendations:   recs,
			LearningResources: resources,
			Progress:          100,
			Message:           completeMessage,
		},
	}
}

func ErrorEvent(err error) Event {
	return Event{
		Event: EventError,
		Data:  ErrorData{Error: err.Error(), Message: failureMessage},
	}
}

// Emitter receives pipeline events in order.
type Emitter interface {
	Emit(Event)
}

type EmitterFunc func(Event)

func (f EmitterFunc) Emit(e Event) { f(e) }

// EventBuffer is the channel capacity that holds every event a single run
// can produce, so a run never blocks on a slow or departed reader.
const EventBuffer = 8

// WriteSSE frames each event as a server-sent "data:" message and ends the
// stream with the [DONE] sentinel once events is closed. It stops at the
// first write error, which usually means the client went away.
func WriteSSE(w *bufio.Writer, events <-chan Event) error {
	for ev := range events {
		payload, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", ev.Event, err)
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", doneSentinel); err != nil {
		return err
	}
	return w.Flush()
}
