package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/export"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/repository"
	"github.com/hiremind/hiremind-api/internal/response"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 5
	backfillBatchSize  = 50
)

type JobUsecase struct {
	jobRepo    repository.JobRepositoryInterface
	appRepo    repository.ApplicationRepositoryInterface
	reportRepo repository.InterviewReportRepositoryInterface
	gemini     service.GeminiServiceInterface
	log        *zap.Logger
}

func NewJobUsecase(jobRepo repository.JobRepositoryInterface, appRepo repository.ApplicationRepositoryInterface, reportRepo repository.InterviewReportRepositoryInterface, gemini service.GeminiServiceInterface, log *zap.Logger) *JobUsecase {
	return &JobUsecase{jobRepo: jobRepo, appRepo: appRepo, reportRepo: reportRepo, gemini: gemini, log: logger.OrNop(log)}
}

// Create stores the job; the description embedding is best-effort.
func (uc *JobUsecase) Create(ctx context.Context, req dto.CreateJobRequest) (*model.Job, error) {
	if ferr := requireFields(map[string]string{"title": req.Title, "company": req.Company}); ferr != nil {
		return nil, ferr
	}

	skills := make(pq.StringArray, 0, len(req.Skills))
	for _, s := range req.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	job := &model.Job{
		Title:       strings.TrimSpace(req.Title),
		Company:     strings.TrimSpace(req.Company),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
		Skills:      skills,
	}

	if job.Description != "" {
		emb, err := uc.gemini.GenerateEmbedding(ctx, embeddingText(job))
		if err != nil {
			uc.log.Warn("job embedding failed", zap.String("title", job.Title), zap.Error(err))
		} else {
			v := pgvector.NewVector(emb)
			job.Embedding = &v
		}
	}

	if err := uc.jobRepo.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

func (uc *JobUsecase) List(ctx context.Context, page, limit int) ([]model.Job, *response.Pagination, error) {
	req := response.NewPageRequest(page, limit)
	jobs, total, err := uc.jobRepo.GetJobs(ctx, req.Offset(), req.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, response.NewPagination(req, total, len(jobs)), nil
}

func (uc *JobUsecase) Get(ctx context.Context, jobID string) (*model.Job, error) {
	id, err := parseID("job", jobID)
	if err != nil {
		return nil, err
	}
	job, err := uc.jobRepo.FindJobByID(ctx, id)
	if err != nil {
		return nil, notFound("job", err)
	}
	return job, nil
}

// Search returns the jobs nearest to query by description embedding.
func (uc *JobUsecase) Search(ctx context.Context, query string, limit int) ([]model.Job, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("query is required")
	}
	if limit <= 0 || limit > response.MaxPageSize {
		limit = defaultSearchLimit
	}

	emb, err := uc.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	jobs, err := uc.jobRepo.SearchJobs(ctx, pgvector.NewVector(emb), limit)
	if err != nil {
		return nil, fmt.Errorf("search jobs: %w", err)
	}
	return jobs, nil
}

// ExportCandidates renders the job's applications as an xlsx workbook.
func (uc *JobUsecase) ExportCandidates(ctx context.Context, jobID string) (*model.Job, []byte, error) {
	job, err := uc.Get(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	apps, err := uc.appRepo.ListByJob(ctx, job.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list applications: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	reports, err := uc.reportRepo.FindByApplicationIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load interview reports: %w", err)
	}

	data, err := export.CandidatesWorkbook(*job, export.NewCandidateRows(apps, reports), time.Now())
	if err != nil {
		return nil, nil, fmt.Errorf("export candidates: %w", err)
	}
	return job, data, nil
}

// BackfillEmbeddings embeds jobs created while the embedding call was
// failing. Jobs that fail again are skipped and counted.
func (uc *JobUsecase) BackfillEmbeddings(ctx context.Context) (*dto.BackfillResult, error) {
	jobs, err := uc.jobRepo.FindJobsWithoutEmbedding(ctx, backfillBatchSize)
	if err != nil {
		return nil, fmt.Errorf("find jobs without embedding: %w", err)
	}

	result := &dto.BackfillResult{}
	for i := range jobs {
		job := &jobs[i]
		emb, err := uc.gemini.GenerateEmbedding(ctx, embeddingText(job))
		if err != nil {
			result.Failed++
			uc.log.Warn("job embedding failed", zap.String(logger.FieldJobID, job.ID.String()), zap.Error(err))
			continue
		}
		v := pgvector.NewVector(emb)
		job.Embedding = &v
		if err := uc.jobRepo.UpdateJob(ctx, job); err != nil {
			return result, fmt.Errorf("update job %s: %w", job.ID, err)
		}
		result.Embedded++
	}

	uc.log.Info("job embeddings backfilled", zap.Int("embedded", result.Embedded), zap.Int("failed", result.Failed))
	return result, nil
}

func embeddingText(job *model.Job) string {
	parts := []string{job.Title, job.Description}
	if len(job.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(job.Skills, ", "))
	}
	return strings.Join(parts, "\n\n")
}
