package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type JobRepositoryInterface interface {
	SearchJobs(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.Job, error)
	CreateJob(ctx context.Context, job *model.Job) error
	UpdateJob(ctx context.Context, job *model.Job) error
	FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	GetJobs(ctx context.Context, offset, limit int) ([]model.Job, int64, error)
	FindJobsWithoutEmbedding(ctx context.Context, limit int) ([]model.Job, error)
}

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

func (r *JobRepository) SearchJobs(ctx context.Context, embedding pgvector.Vector, topK int) ([]model.Job, error) {
	var jobs []model.Job

	// cosine distance, jobs without an embedding are skipped
	err := r.db.WithContext(ctx).Raw(`
        SELECT *
        FROM jobs
        WHERE embedding IS NOT NULL
        ORDER BY embedding <=> ?
        LIMIT ?
    `, embedding, topK).Scan(&jobs).Error

	return jobs, err
}

func (r *JobRepository) CreateJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) UpdateJob(ctx context.Context, job *model.Job) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *JobRepository) FindJobByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	var j model.Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (r *JobRepository) GetJobs(ctx context.Context, offset, limit int) ([]model.Job, int64, error) {
	var (
		jobs  []model.Job
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Job{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&jobs).Error
	return jobs, total, err
}

func (r *JobRepository) FindJobsWithoutEmbedding(ctx context.Context, limit int) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).
		Where("embedding IS NULL").
		Where("description <> ''").
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error
	return jobs, err
}
