package usecase

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/auth"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/repository"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/hiremind/hiremind-api/internal/util"
	"go.uber.org/zap"
)

type ApplicationUsecase struct {
	appRepo  repository.ApplicationRepositoryInterface
	jobRepo  repository.JobRepositoryInterface
	notifier service.NotifierInterface
	events   service.EventPublisherInterface
	storage  service.StorageServiceInterface
	log      *zap.Logger
}

type ApplicationUsecaseOption func(*ApplicationUsecase)

// WithEventPublisher publishes status changes to the broker.
func WithEventPublisher(p service.EventPublisherInterface) ApplicationUsecaseOption {
	return func(uc *ApplicationUsecase) { uc.events = p }
}

// WithResumeStorage keeps the uploaded resume file in object storage.
func WithResumeStorage(s service.StorageServiceInterface) ApplicationUsecaseOption {
	return func(uc *ApplicationUsecase) { uc.storage = s }
}

func NewApplicationUsecase(appRepo repository.ApplicationRepositoryInterface, jobRepo repository.JobRepositoryInterface, notifier service.NotifierInterface, log *zap.Logger, opts ...ApplicationUsecaseOption) *ApplicationUsecase {
	uc := &ApplicationUsecase{
		appRepo:  appRepo,
		jobRepo:  jobRepo,
		notifier: notifier,
		log:      logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *ApplicationUsecase) Submit(ctx context.Context, identity auth.Identity, req dto.SubmitApplicationRequest) (*model.Application, error) {
	name := strings.TrimSpace(req.CandidateName)
	if name == "" {
		name = identity.Name
	}
	email := strings.ToLower(strings.TrimSpace(req.CandidateEmail))
	if email == "" || !identity.IsRecruiter() {
		email = identity.Email
	}
	if name == "" || email == "" {
		return nil, validationError("candidate name and email are required")
	}

	jobID, err := parseID("job", req.JobID)
	if err != nil {
		return nil, err
	}
	if _, err := uc.jobRepo.FindJobByID(ctx, jobID); err != nil {
		return nil, notFound("job", err)
	}

	app := &model.Application{
		JobID:          jobID,
		CandidateName:  name,
		CandidateEmail: email,
		Status:         model.ApplicationStatusPending,
	}

	if len(req.Resume) > 0 {
		if len(req.Resume) > util.MaxResumeSize {
			return nil, validationError("resume file size is too large (max 5MB)")
		}
		mime, err := util.ResumeMime(req.ResumeFilename)
		if err != nil {
			return nil, validationError("%v", err)
		}
		text, err := util.ExtractResumeText(mime, req.Resume)
		if err != nil {
			return nil, validationError("failed to extract resume text: %v", err)
		}
		app.ResumeText = text

		if uc.storage != nil {
			key, err := uc.storage.Upload(ctx, "resumes", req.ResumeFilename, mime, req.Resume)
			if err != nil {
				uc.log.Warn("resume upload failed", zap.String(logger.FieldJobID, jobID.String()), zap.Error(err))
			} else {
				app.ResumeObjectKey = key
			}
		}
	}

	if err := uc.appRepo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	return app, nil
}

func (uc *ApplicationUsecase) ListByJob(ctx context.Context, jobID string) ([]model.Application, error) {
	id, err := parseID("job", jobID)
	if err != nil {
		return nil, err
	}
	apps, err := uc.appRepo.ListByJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// UpdateStatus overwrites the status and emits at most one notice.
func (uc *ApplicationUsecase) UpdateStatus(ctx context.Context, applicationID, status string) (*dto.UpdateStatusResult, error) {
	status = strings.TrimSpace(status)
	if strings.TrimSpace(applicationID) == "" || status == "" {
		return nil, validationError("application id and status are required")
	}

	id, err := parseID("application", applicationID)
	if err != nil {
		return nil, err
	}
	app, err := uc.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("application", err)
	}

	kind, notify := service.NoticeForStatus(status)
	if notify && (app.Job == nil || strings.TrimSpace(app.Job.Title) == "" || strings.TrimSpace(app.Job.Company) == "") {
		return nil, fmt.Errorf("application %s: %w", id, ErrIncompleteJob)
	}

	if err := uc.appRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, notFound("application", err)
	}
	app.Status = status

	fields := logger.ApplicationFields(id.String(), app.JobID.String(), status)
	log := logger.WithFields(uc.log, fields...)
	log.Info("application status updated")

	result := &dto.UpdateStatusResult{Application: app}
	if notify {
		err := uc.notifier.Notify(ctx, service.Notice{Kind: kind, Application: *app, Job: *app.Job})
		if err != nil {
			log.Error("status notice failed", zap.Error(err))
		} else {
			result.Notified = true
		}
	}

	uc.publish(ctx, app, "status updated")

	if reloaded, err := uc.appRepo.FindByID(ctx, id); err == nil {
		result.Application = reloaded
	}
	return result, nil
}

// ApproveAll moves every Approved application of a job to Interviewing and
// sends each one an interview invitation.
func (uc *ApplicationUsecase) ApproveAll(ctx context.Context, jobID string) (*dto.ApproveAllResult, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, validationError("job id is required")
	}
	id, err := parseID("job", jobID)
	if err != nil {
		return nil, err
	}
	job, err := uc.jobRepo.FindJobByID(ctx, id)
	if err != nil {
		return nil, notFound("job", err)
	}

	apps, err := uc.appRepo.FindByJobAndStatus(ctx, id, model.ApplicationStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("find approved applications: %w", err)
	}
	result := &dto.ApproveAllResult{}
	if len(apps) == 0 {
		return result, nil
	}
	if strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return nil, fmt.Errorf("job %s: %w", id, ErrIncompleteJob)
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	updated, err := uc.appRepo.UpdateStatusByIDs(ctx, ids, model.ApplicationStatusInterviewing)
	if err != nil {
		return nil, fmt.Errorf("update application statuses: %w", err)
	}
	result.Updated = updated

	// not atomic with the update: a failed notice is logged, never rolled back
	for i := range apps {
		app := apps[i]
		app.Status = model.ApplicationStatusInterviewing
		err := uc.notifier.Notify(ctx, service.Notice{Kind: service.NoticeApproved, Application: app, Job: *job})
		if err != nil {
			result.NotifyFailure++
			uc.log.Error("interview invitation failed",
				append(logger.ApplicationFields(app.ID.String(), id.String(), app.Status), zap.Error(err))...)
		} else {
			result.Notified++
		}
		uc.publish(ctx, &app, "moved to interviewing")
	}

	uc.log.Info("approved applications moved to interviewing",
		zap.String(logger.FieldJobID, id.String()),
		zap.Int64("updated", result.Updated),
		zap.Int("notified", result.Notified),
	)
	return result, nil
}

func (uc *ApplicationUsecase) InterviewContext(ctx context.Context, identity auth.Identity, applicationID string) (*dto.InterviewContextDTO, error) {
	app, err := uc.ownedApplication(ctx, identity, applicationID)
	if err != nil {
		return nil, err
	}

	out := &dto.InterviewContextDTO{
		ApplicationID:  app.ID,
		CandidateName:  app.CandidateName,
		CandidateEmail: app.CandidateEmail,
		Status:         app.Status,
		Resume:         app.ResumeText,
		StartedAt:      app.InterviewStartDate,
	}
	if app.Job != nil {
		out.JobRole = app.Job.Title
		out.Company = app.Job.Company
		out.JobDescription = app.Job.Description
		out.Skills = app.Job.Skills
	}
	return out, nil
}

func (uc *ApplicationUsecase) StartInterview(ctx context.Context, identity auth.Identity, applicationID string) (*model.Application, error) {
	app, err := uc.ownedApplication(ctx, identity, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationStatusInterviewing {
		return nil, validationError("application is %s, not %s", app.Status, model.ApplicationStatusInterviewing)
	}

	now := time.Now()
	if err := uc.appRepo.SetInterviewStart(ctx, app.ID, now); err != nil {
		return nil, fmt.Errorf("record interview start: %w", err)
	}
	app.InterviewStartDate = &now
	return app, nil
}

func (uc *ApplicationUsecase) CompleteInterview(ctx context.Context, identity auth.Identity, applicationID string) (*model.Application, error) {
	app, err := uc.ownedApplication(ctx, identity, applicationID)
	if err != nil {
		return nil, err
	}
	if app.Status == model.ApplicationStatusCompletedInterview {
		return app, nil
	}

	if err := uc.appRepo.UpdateStatus(ctx, app.ID, model.ApplicationStatusCompletedInterview); err != nil {
		return nil, notFound("application", err)
	}
	app.Status = model.ApplicationStatusCompletedInterview
	uc.publish(ctx, app, "interview completed")
	return app, nil
}

// Resume fetches the stored resume file of an application.
func (uc *ApplicationUsecase) Resume(ctx context.Context, identity auth.Identity, applicationID string) (*dto.ResumeFile, error) {
	app, err := uc.ownedApplication(ctx, identity, applicationID)
	if err != nil {
		return nil, err
	}
	if uc.storage == nil || app.ResumeObjectKey == "" {
		return nil, fmt.Errorf("resume of application %s: %w", app.ID, ErrNotFound)
	}

	data, err := uc.storage.Download(ctx, app.ResumeObjectKey)
	if err != nil {
		return nil, fmt.Errorf("download resume: %w", err)
	}

	ext := path.Ext(app.ResumeObjectKey)
	contentType, err := util.ResumeMime(app.ResumeObjectKey)
	if err != nil {
		contentType = "application/octet-stream"
	}
	return &dto.ResumeFile{
		Filename:    app.CandidateName + ext,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (uc *ApplicationUsecase) ownedApplication(ctx context.Context, identity auth.Identity, applicationID string) (*model.Application, error) {
	id, err := parseID("application", applicationID)
	if err != nil {
		return nil, err
	}
	app, err := uc.appRepo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound("application", err)
	}
	if !identity.Owns(app.CandidateEmail) {
		return nil, fmt.Errorf("application %s: %w", id, ErrForbidden)
	}
	return app, nil
}

func (uc *ApplicationUsecase) publish(ctx context.Context, app *model.Application, message string) {
	if uc.events == nil {
		return
	}
	err := uc.events.PublishStatusEvent(ctx, service.StatusEvent{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		Status:        app.Status,
		Message:       message,
		Timestamp:     time.Now(),
	})
	if err != nil {
		uc.log.Warn("failed to publish status event", zap.String(logger.FieldApplicationID, app.ID.String()), zap.Error(err))
	}
}
