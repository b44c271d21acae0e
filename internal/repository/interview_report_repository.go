package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InterviewReportRepositoryInterface interface {
	Upsert(ctx context.Context, report *model.InterviewReport) error
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.InterviewReport, error)
	FindByApplicationIDs(ctx context.Context, applicationIDs []uuid.UUID) ([]model.InterviewReport, error)
}

type InterviewReportRepository struct {
	db *gorm.DB
}

func NewInterviewReportRepository(db *gorm.DB) *InterviewReportRepository {
	return &InterviewReportRepository{db}
}

// Upsert keeps one report per application.
func (r *InterviewReportRepository) Upsert(ctx context.Context, report *model.InterviewReport) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "application_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "overall_score", "feedback", "transcript", "updated_at"}),
	}).Create(report).Error
}

func (r *InterviewReportRepository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.InterviewReport, error) {
	var report model.InterviewReport
	if err := r.db.WithContext(ctx).First(&report, "application_id = ?", applicationID).Error; err != nil {
		return nil, translate(err)
	}
	return &report, nil
}

func (r *InterviewReportRepository) FindByApplicationIDs(ctx context.Context, applicationIDs []uuid.UUID) ([]model.InterviewReport, error) {
	if len(applicationIDs) == 0 {
		return nil, nil
	}
	var reports []model.InterviewReport
	err := r.db.WithContext(ctx).Where("application_id IN ?", applicationIDs).Find(&reports).Error
	return reports, err
}
