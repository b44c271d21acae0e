package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newJobFixture(jobs ...*model.Job) (*JobUsecase, *fakeJobRepo, *fakeAppRepo, *fakeReportRepo, *fakeGemini) {
	jobRepo := newFakeJobRepo(jobs...)
	appRepo := newFakeAppRepo(jobRepo)
	reports := newFakeReportRepo()
	gemini := &fakeGemini{embedding: []float32{0.1, 0.2, 0.3}}
	return NewJobUsecase(jobRepo, appRepo, reports, gemini, nil), jobRepo, appRepo, reports, gemini
}

func TestCreateJob(t *testing.T) {
	uc, repo, _, _, gemini := newJobFixture()

	_, err := uc.Create(context.Background(), dto.CreateJobRequest{Title: "Backend Engineer"})
	require.ErrorIs(t, err, ErrValidation)
	var ferr *util.FormError
	require.True(t, errors.As(err, &ferr))
	assert.Contains(t, ferr.Errors, "company")
	assert.NotContains(t, ferr.Errors, "title")

	job, err := uc.Create(context.Background(), dto.CreateJobRequest{
		Title:       " Backend Engineer ",
		Company:     "Acme",
		Description: "Build APIs in Go.",
		Skills:      []string{"Go", " ", "SQL "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, []string{"Go", "SQL"}, []string(job.Skills))
	require.NotNil(t, job.Embedding)
	assert.Len(t, job.Embedding.Slice(), 3)
	assert.Contains(t, repo.jobs, job.ID)

	gemini.embedErr = errors.New("quota exceeded")
	job, err = uc.Create(context.Background(), dto.CreateJobRequest{Title: "Designer", Company: "Acme", Description: "Figma"})
	require.NoError(t, err)
	assert.Nil(t, job.Embedding)
}

func TestSearchJobs(t *testing.T) {
	uc, _, _, _, gemini := newJobFixture()
	ctx := context.Background()

	_, err := uc.Search(ctx, "   ", 5)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = uc.Create(ctx, dto.CreateJobRequest{Title: "Backend Engineer", Company: "Acme", Description: "Go"})
	require.NoError(t, err)
	jobs, err := uc.Search(ctx, "golang backend", 0)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)

	gemini.embedErr = errors.New("unavailable")
	_, err = uc.Search(ctx, "golang backend", 5)
	assert.Error(t, err)
}

func TestBackfillEmbeddings(t *testing.T) {
	missing := &model.Job{ID: uuid.New(), Title: "Backend Engineer", Company: "Acme", Description: "Go"}
	noDescription := &model.Job{ID: uuid.New(), Title: "Designer", Company: "Acme"}
	uc, repo, _, _, _ := newJobFixture(missing, noDescription)

	result, err := uc.BackfillEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Embedded)
	assert.Zero(t, result.Failed)
	assert.NotNil(t, repo.jobs[missing.ID].Embedding)
	assert.Nil(t, repo.jobs[noDescription.ID].Embedding)
}

func TestGetJobMalformedID(t *testing.T) {
	uc, _, _, _, _ := newJobFixture()
	_, err := uc.Get(context.Background(), "42")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = uc.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExportCandidates(t *testing.T) {
	job := acmeJob()
	uc, _, apps, reports, _ := newJobFixture(job)
	ada := &model.Application{ID: uuid.New(), JobID: job.ID, CandidateName: "Ada", CandidateEmail: "ada@example.com", Status: model.ApplicationStatusCompletedInterview}
	apps.apps[ada.ID] = ada
	reports.reports[ada.ID] = model.InterviewReport{ApplicationID: ada.ID, Status: model.ReportStatusCompleted, OverallScore: 88}

	got, data, err := uc.ExportCandidates(context.Background(), job.ID.String())
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Candidates")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ada", rows[1][1])
	assert.Equal(t, "88.00", rows[1][4])
}
