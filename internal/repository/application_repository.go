package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"gorm.io/gorm"
)

// InterviewFilter selects applications for the interviews board.
type InterviewFilter struct {
	Statuses       []string
	CandidateEmail string // empty means every candidate
	Offset         int
	Limit          int
}

type ApplicationRepositoryInterface interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	FindByJobAndStatus(ctx context.Context, jobID uuid.UUID, status string) ([]model.Application, error)
	UpdateStatusByIDs(ctx context.Context, ids []uuid.UUID, status string) (int64, error)
	ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error)
	ListInterviews(ctx context.Context, filter InterviewFilter) ([]model.Application, int64, error)
	SetInterviewStart(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdateInterviewScore(ctx context.Context, id uuid.UUID, score float64) error
}

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	if err := r.db.WithContext(ctx).Preload("Job").First(&app, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&model.Application{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) FindByJobAndStatus(ctx context.Context, jobID uuid.UUID, status string) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("job_id = ? AND status = ?", jobID, status).
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) UpdateStatusByIDs(ctx context.Context, ids []uuid.UUID, status string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListInterviews(ctx context.Context, filter InterviewFilter) ([]model.Application, int64, error) {
	var (
		apps  []model.Application
		total int64
	)
	if err := r.interviews(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.interviews(ctx, filter).
		Preload("Job").
		Order("created_at DESC").
		Order("id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepository) interviews(ctx context.Context, filter InterviewFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Application{}).Where("status IN ?", filter.Statuses)
	if filter.CandidateEmail != "" {
		q = q.Where("candidate_email = ?", filter.CandidateEmail)
	}
	return q
}

func (r *ApplicationRepository) SetInterviewStart(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ?", id).
		Update("interview_start_date", at).Error
}

func (r *ApplicationRepository) UpdateInterviewScore(ctx context.Context, id uuid.UUID, score float64) error {
	return r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ?", id).
		Update("interview_score", score).Error
}
