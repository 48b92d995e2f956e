package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"alfredoptarigan/resalign/internal/models"
	"alfredoptarigan/resalign/internal/repositories"
)

type fakeAnalyses struct {
	mu          sync.Mutex
	records     map[uuid.UUID]*models.Analysis
	createErr   error
	findErr     error
	completeErr error

	creates     int
	markErrors  int
	staleSweeps int
	staleCutoff time.Time
}

func newFakeAnalyses() *fakeAnalyses {
	return &fakeAnalyses{records: make(map[uuid.UUID]*models.Analysis)}
}

func (f *fakeAnalyses) Create(_ context.Context, a *models.Analysis) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	cp := *a
	f.records[a.ID] = &cp
	return nil
}

func (f *fakeAnalyses) FindByTriple(_ context.Context, userID string, resumeID, jdID uuid.UUID) ([]models.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []models.Analysis
	for _, a := range f.records {
		if a.UserID == userID && a.ResumeID == resumeID && a.JDID == jdID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeAnalyses) FindByIDForUser(_ context.Context, id uuid.UUID, userID string) (*models.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.records[id]
	if !ok || a.UserID != userID {
		return nil, fmt.Errorf("analysis %s: %w", id, repositories.ErrNotFound)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnalyses) MarkCompleted(_ context.Context, id uuid.UUID, report datatypes.JSON, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.completeErr != nil {
		return f.completeErr
	}
	a, ok := f.records[id]
	if !ok || a.Status != models.StatusRunning {
		return repositories.ErrNotRunning
	}
	a.Status = models.StatusCompleted
	a.Report = report
	a.CompletedAt = &completedAt
	return nil
}

func (f *fakeAnalyses) MarkError(_ context.Context, id uuid.UUID, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markErrors++
	a, ok := f.records[id]
	if !ok || a.Status != models.StatusRunning {
		return repositories.ErrNotRunning
	}
	a.Status = models.StatusError
	a.ErrorMessage = &errorMsg
	return nil
}

func (f *fakeAnalyses) MarkStaleRunning(_ context.Context, startedBefore time.Time, errorMsg string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.staleSweeps++
	f.staleCutoff = startedBefore
	var n int64
	for _, a := range f.records {
		if a.Status == models.StatusRunning && a.CreatedAt.Before(startedBefore) {
			a.Status = models.StatusError
			msg := errorMsg
			a.ErrorMessage = &msg
			n++
		}
	}
	return n, nil
}

func (f *fakeAnalyses) get(id uuid.UUID) models.Analysis {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.records[id]
}

func (f *fakeAnalyses) sweeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.staleSweeps
}

type fakeResumes struct {
	rows map[uuid.UUID]*models.Resume
	err  error
}

func (f *fakeResumes) Create(_ context.Context, r *models.Resume) error {
	f.rows[r.ID] = r
	return nil
}

func (f *fakeResumes) FindByIDForUser(_ context.Context, id uuid.UUID, userID string) (*models.Resume, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return nil, fmt.Errorf("resume %s: %w", id, repositories.ErrNotFound)
	}
	return r, nil
}

type fakeJobDescriptions struct {
	rows map[uuid.UUID]*models.JobDescription
}

func (f *fakeJobDescriptions) Create(_ context.Context, jd *models.JobDescription) error {
	f.rows[jd.ID] = jd
	return nil
}

func (f *fakeJobDescriptions) FindByIDForUser(_ context.Context, id uuid.UUID, userID string) (*models.JobDescription, error) {
	jd, ok := f.rows[id]
	if !ok || jd.UserID != userID {
		return nil, fmt.Errorf("job description %s: %w", id, repositories.ErrNotFound)
	}
	return jd, nil
}

type rationaleFunc func(ctx context.Context, in EnrichmentInput) (string, error)

func (f rationaleFunc) GenerateRationale(ctx context.Context, in EnrichmentInput) (string, error) {
	return f(ctx, in)
}

type recommendationsFunc func(ctx context.Context, in EnrichmentInput) ([]string, error)

func (f recommendationsFunc) GenerateRecommendations(ctx context.Context, in EnrichmentInput) ([]string, error) {
	return f(ctx, in)
}

type resourcesFunc func(ctx context.Context, in EnrichmentInput) ([]models.LearningResource, error)

func (f resourcesFunc) GenerateResources(ctx context.Context, in EnrichmentInput) ([]models.LearningResource, error) {
	return f(ctx, in)
}

type fakeStore struct {
	files map[string][]byte
}

func (f *fakeStore) Save(context.Context, *multipart.FileHeader, string) (string, error) {
	return "", errors.New("not supported")
}

func (f *fakeStore) Download(_ context.Context, path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func (f *fakeStore) Delete(_ context.Context, path string) error {
	delete(f.files, path)
	return nil
}

type converterFunc func(data []byte) (string, error)

func (f converterFunc) Convert(data []byte) (string, error) { return f(data) }

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(b)
}
