package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/resalign/internal/logger"
	"alfredoptarigan/resalign/internal/matching"
	"alfredoptarigan/resalign/internal/models"
	"alfredoptarigan/resalign/internal/repositories"
)

type AnalysisRequest struct {
	UserID   string
	ResumeID uuid.UUID
	JDID     uuid.UUID
}

func (r AnalysisRequest) lockKey() string {
	return fmt.Sprintf("analysis:%s:%s:%s", r.UserID, r.ResumeID, r.JDID)
}

// AnalysisService runs the résumé/job-description analysis pipeline.
type AnalysisService interface {
	// Run drives one analysis to a terminal event. Every event, including
	// the final complete or error event, goes to emit.
	Run(ctx context.Context, req AnalysisRequest, emit Emitter)
}

type AnalysisDependencies struct {
	Analyses        repositories.AnalysisRepository
	Resumes         repositories.ResumeRepository
	JobDescriptions repositories.JobDescriptionRepository
	Rationale       RationaleGenerator
	Recommendations RecommendationGenerator
	Resources       LearningResourceGenerator
	Documents       DocumentStore
	Converter       DocumentConverter
	Locker          RunLocker
	Logger          *zap.Logger
}

type AnalysisOptions struct {
	// EnrichmentTimeout bounds each text-generation call.
	EnrichmentTimeout time.Duration
	// StoreTimeout bounds each record store and document store call, and
	// the conversion of the original résumé.
	StoreTimeout time.Duration
}

type analysisService struct {
	deps AnalysisDependencies
	opts AnalysisOptions
	log  *zap.Logger
	now  func() time.Time
}

func NewAnalysisService(deps AnalysisDependencies, opts AnalysisOptions) AnalysisService {
	if opts.EnrichmentTimeout <= 0 {
		opts.EnrichmentTimeout = 60 * time.Second
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 10 * time.Second
	}
	if deps.Locker == nil {
		deps.Locker = NewLocalLocker()
	}
	return &analysisService{
		deps: deps,
		opts: opts,
		log:  logger.OrNop(deps.Logger),
		now:  time.Now,
	}
}

func (s *analysisService) Run(ctx context.Context, req AnalysisRequest, emit Emitter) {
	log := s.log.With(
		zap.String("user_id", req.UserID),
		zap.String("resume_id", req.ResumeID.String()),
		zap.String("jd_id", req.JDID.String()),
	)

	release, err := s.deps.Locker.Acquire(ctx, req.lockKey())
	if err != nil {
		s.fail(ctx, log, uuid.Nil, err, emit)
		return
	}
	defer release()

	cached, err := s.findCompleted(ctx, req)
	if err != nil {
		s.fail(ctx, log, uuid.Nil, err, emit)
		return
	}
	if cached != nil {
		var report models.Report
		if err := json.Unmarshal(cached.Report, &report); err == nil {
			log.Info("returning cached analysis", zap.String("analysis_id", cached.ID.String()))
			emit.Emit(CompleteEvent(cached.ID, &report))
			return
		}
		log.Warn("cached report unreadable, running a fresh analysis", zap.String("analysis_id", cached.ID.String()))
	}

	emit.Emit(ProgressEvent(StageStartingAnalysis))
	now := s.now()
	analysis := &models.Analysis{
		ID:        uuid.New(),
		UserID:    req.UserID,
		ResumeID:  req.ResumeID,
		JDID:      req.JDID,
		Status:    models.StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := withTimeout(ctx, s.opts.StoreTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deps.Analyses.Create(ctx, analysis)
	}); err != nil {
		s.fail(ctx, log, uuid.Nil, err, emit)
		return
	}
	log = log.With(zap.String("analysis_id", analysis.ID.String()))

	input, err := s.loadInputs(ctx, log, req)
	if err != nil {
		s.fail(ctx, log, analysis.ID, err, emit)
		return
	}

	emit.Emit(ProgressEvent(StageCalculatingScores))
	input.Scores, input.Matches = matching.CalculateScores(input.Resume, input.JobDescription)
	input.Classification = matching.Classify(input.Scores.Overall)
	log.Info("scores calculated",
		zap.Float64("overall_score", input.Scores.Overall),
		zap.String("fit_classification", string(input.Classification)),
	)

	emit.Emit(ProgressEvent(StageAssessingJobFit))
	input.Rationale = s.generateRationale(ctx, log, input)

	emit.Emit(ProgressEvent(StageGeneratingRecommendations))
	recommendations, resources := s.enrich(ctx, log, input)

	emit.Emit(ProgressEvent(StageSaving))
	report := &models.Report{
		OverallScore:      input.Scores.Overall,
		FitClassification: input.Classification,
		FitRationale:      input.Rationale,
		CategoryScores:    input.Scores.CategoryScores(),
		Recommendations:   recommendations,
		LearningResources: resources,
	}
	payload, err := json.Marshal(report)
	if err != nil {
		s.fail(ctx, log, analysis.ID, fmt.Errorf("failed to encode report: %w", err), emit)
		return
	}
	if _, err := withTimeout(ctx, s.opts.StoreTimeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.deps.Analyses.MarkCompleted(ctx, analysis.ID, payload, s.now())
	}); err != nil {
		s.fail(ctx, log, analysis.ID, err, emit)
		return
	}

	log.Info("analysis completed")
	emit.Emit(CompleteEvent(analysis.ID, report))
}

// findCompleted returns the newest completed analysis with a stored report, or nil.
func (s *analysisService) findCompleted(ctx context.Context, req AnalysisRequest) (*models.Analysis, error) {
	analyses, err := withTimeout(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]models.Analysis, error) {
		return s.deps.Analyses.FindByTriple(ctx, req.UserID, req.ResumeID, req.JDID)
	})
	if err != nil {
		return nil, err
	}
	for i := range analyses {
		if analyses[i].Status == models.StatusCompleted && analyses[i].HasReport() {
			return &analyses[i], nil
		}
	}
	return nil, nil
}

func (s *analysisService) loadInputs(ctx context.Context, log *zap.Logger, req AnalysisRequest) (EnrichmentInput, error) {
	resume, err := withTimeout(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*models.Resume, error) {
		return s.deps.Resumes.FindByIDForUser(ctx, req.ResumeID, req.UserID)
	})
	if err != nil {
		return EnrichmentInput{}, err
	}
	jd, err := withTimeout(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*models.JobDescription, error) {
		return s.deps.JobDescriptions.FindByIDForUser(ctx, req.JDID, req.UserID)
	})
	if err != nil {
		return EnrichmentInput{}, err
	}

	in := EnrichmentInput{
		Resume:         &models.StructuredResume{},
		JobDescription: &models.StructuredJobDescription{},
	}
	if err := json.Unmarshal(resume.ExtractedData, in.Resume); err != nil {
		return EnrichmentInput{}, fmt.Errorf("failed to decode resume %s: %w", resume.ID, err)
	}
	if err := json.Unmarshal(jd.ExtractedData, in.JobDescription); err != nil {
		return EnrichmentInput{}, fmt.Errorf("failed to decode job description %s: %w", jd.ID, err)
	}
	in.ResumeText = s.resumeText(ctx, log, resume)
	return in, nil
}

// resumeText fetches and converts the original upload. Any failure yields
// an empty body.
func (s *analysisService) resumeText(ctx context.Context, log *zap.Logger, resume *models.Resume) string {
	if resume.StoragePath == "" || s.deps.Documents == nil || s.deps.Converter == nil {
		return ""
	}

	data, err := withTimeout(ctx, s.opts.StoreTimeout, func(ctx context.Context) ([]byte, error) {
		return s.deps.Documents.Download(ctx, resume.StoragePath)
	})
	if err != nil {
		log.Warn("original resume unavailable", zap.String("path", resume.StoragePath), zap.Error(err))
		return ""
	}

	text, err := withTimeout(ctx, s.opts.StoreTimeout, func(context.Context) (string, error) {
		return s.deps.Converter.Convert(data)
	})
	if err != nil {
		log.Warn("resume conversion failed", zap.Error(err))
		return ""
	}
	return text
}

func (s *analysisService) generateRationale(ctx context.Context, log *zap.Logger, in EnrichmentInput) string {
	if s.deps.Rationale == nil {
		return ""
	}
	rationale, err := withTimeout(ctx, s.opts.EnrichmentTimeout, func(ctx context.Context) (string, error) {
		return s.deps.Rationale.GenerateRationale(ctx, in)
	})
	if err != nil {
		log.Warn("rationale generation failed", zap.Error(err))
		return ""
	}
	return strings.TrimSpace(rationale)
}

// enrich runs recommendation and learning-resource generation side by side.
// A failure in one leaves the other running and yields an empty list.
func (s *analysisService) enrich(ctx context.Context, log *zap.Logger, in EnrichmentInput) ([]string, []models.LearningResource) {
	recommendations := []string{}
	resources := []models.LearningResource{}

	var g errgroup.Group
	if s.deps.Recommendations != nil {
		g.Go(func() error {
			out, err := withTimeout(ctx, s.opts.EnrichmentTimeout, func(ctx context.Context) ([]string, error) {
				return s.deps.Recommendations.GenerateRecommendations(ctx, in)
			})
			if err != nil {
				log.Warn("recommendation generation failed", zap.Error(err))
				return nil
			}
			if out != nil {
				recommendations = out
			}
			return nil
		})
	}
	if s.deps.Resources != nil {
		g.Go(func() error {
			out, err := withTimeout(ctx, s.opts.EnrichmentTimeout, func(ctx context.Context) ([]models.LearningResource, error) {
				return s.deps.Resources.GenerateResources(ctx, in)
			})
			if err != nil {
				log.Warn("learning resource generation failed", zap.Error(err))
				return nil
			}
			if out != nil {
				resources = out
			}
			return nil
		})
	}
	_ = g.Wait()

	return recommendations, resources
}

// fail records the error on the analysis when one exists and emits the
// terminal error event. The record update uses a context that outlives a
// cancelled request.
func (s *analysisService) fail(ctx context.Context, log *zap.Logger, analysisID uuid.UUID, err error, emit Emitter) {
	log.Error("analysis failed", zap.Error(err))

	if analysisID != uuid.Nil {
		_, markErr := withTimeout(context.WithoutCancel(ctx), s.opts.StoreTimeout, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.deps.Analyses.MarkError(ctx, analysisID, err.Error())
		})
		if markErr != nil {
			log.Warn("could not record analysis failure", zap.Error(markErr))
		}
	}

	emit.Emit(ErrorEvent(err))
}

// withTimeout runs fn under a deadline. A call that outlives the deadline is
// abandoned and reported as an error, and a panic inside fn becomes an error.
func withTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		val, err := fn(ctx)
		done <- result{val: val, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("call abandoned after %s: %w", timeout, ctx.Err())
	}
}
