package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/auth"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/repository"
	"github.com/hiremind/hiremind-api/internal/response"
	"github.com/hiremind/hiremind-api/internal/service"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxAudioSize = 25 * 1024 * 1024

type InterviewUsecase struct {
	appRepo    repository.ApplicationRepositoryInterface
	reportRepo repository.InterviewReportRepositoryInterface
	gemini     service.GeminiServiceInterface
	queue      service.AnalysisQueueInterface
	storage    service.StorageServiceInterface
	log        *zap.Logger
}

type InterviewUsecaseOption func(*InterviewUsecase)

// WithAnalysisQueue defers transcript analysis to the worker pool.
func WithAnalysisQueue(q service.AnalysisQueueInterface) InterviewUsecaseOption {
	return func(uc *InterviewUsecase) { uc.queue = q }
}

// WithRecordingStorage keeps answer recordings in object storage.
func WithRecordingStorage(s service.StorageServiceInterface) InterviewUsecaseOption {
	return func(uc *InterviewUsecase) { uc.storage = s }
}

func NewInterviewUsecase(appRepo repository.ApplicationRepositoryInterface, reportRepo repository.InterviewReportRepositoryInterface, gemini service.GeminiServiceInterface, log *zap.Logger, opts ...InterviewUsecaseOption) *InterviewUsecase {
	uc := &InterviewUsecase{
		appRepo:    appRepo,
		reportRepo: reportRepo,
		gemini:     gemini,
		log:        logger.OrNop(log),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func (uc *InterviewUsecase) NextQuestion(ctx context.Context, identity auth.Identity, req dto.NextQuestionRequest) (string, error) {
	app, err := uc.ownedApplication(ctx, identity, req.ApplicationID)
	if err != nil {
		return "", err
	}

	role, company, description := "the open position", "our company", ""
	if app.Job != nil {
		role = orPlaceholder(app.Job.Title, role)
		company = orPlaceholder(app.Job.Company, company)
		description = app.Job.Description
	}

	prompt := fmt.Sprintf(questionPrompt,
		role,
		company,
		orPlaceholder(description, "(not provided)"),
		app.CandidateName,
		orPlaceholder(app.ResumeText, "(not provided)"),
		formatConversation(req.ConversationHistory),
	)

	text, err := uc.gemini.GenerateJSON(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate question: %w", err)
	}
	question := strings.TrimSpace(gjson.Get(text, "question").String())
	if question == "" {
		uc.log.Warn("question missing from model response", zap.String("body", logger.TruncateForLog(text, 300)))
		return "", fmt.Errorf("generate question: empty question in response")
	}
	return question, nil
}

func (uc *InterviewUsecase) Transcribe(ctx context.Context, filename, mimeType string, audio []byte) (*dto.TranscribeResponse, error) {
	if len(audio) == 0 {
		return nil, validationError("audio is empty")
	}
	if len(audio) > maxAudioSize {
		return nil, validationError("audio is too large (max 25MB)")
	}
	mimeType = strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = "audio/webm"
	}

	out := &dto.TranscribeResponse{}
	if uc.storage != nil {
		key, err := uc.storage.Upload(ctx, "recordings", filename, mimeType, audio)
		if err != nil {
			uc.log.Warn("recording upload failed", zap.Error(err))
		} else {
			out.ObjectKey = key
		}
	}

	text, err := uc.gemini.TranscribeAudio(ctx, audio, mimeType)
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}
	out.Transcription = text
	return out, nil
}

// Analyze records a pending report and either queues the analysis or runs it inline.
func (uc *InterviewUsecase) Analyze(ctx context.Context, identity auth.Identity, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if len(req.Conversation) == 0 {
		return nil, validationError("conversation is required")
	}
	app, err := uc.ownedApplication(ctx, identity, req.ApplicationID)
	if err != nil {
		return nil, err
	}

	jobRole := strings.TrimSpace(req.JobRole)
	if jobRole == "" && app.Job != nil {
		jobRole = app.Job.Title
	}

	transcript, err := json.Marshal(req.Conversation)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}
	pending := &model.InterviewReport{
		ApplicationID: app.ID,
		Status:        model.ReportStatusPending,
		Feedback:      "{}",
		Transcript:    string(transcript),
	}
	if err := uc.reportRepo.Upsert(ctx, pending); err != nil {
		return nil, fmt.Errorf("save pending report: %w", err)
	}

	msg := service.AnalysisMessage{ApplicationID: app.ID, JobRole: jobRole, Conversation: req.Conversation}
	if uc.queue != nil {
		err := uc.queue.EnqueueAnalysis(ctx, msg)
		if err == nil {
			return &dto.AnalyzeResponse{Queued: true}, nil
		}
		uc.log.Warn("analysis enqueue failed, running inline", zap.String(logger.FieldApplicationID, app.ID.String()), zap.Error(err))
	}

	report, err := uc.RunAnalysis(ctx, msg)
	if err != nil {
		return nil, err
	}
	out := dto.NewInterviewReportDTO(report)
	return &dto.AnalyzeResponse{Report: &out}, nil
}

// RunAnalysis scores a transcript, stores the completed report and the
// application's interview score.
func (uc *InterviewUsecase) RunAnalysis(ctx context.Context, msg service.AnalysisMessage) (*model.InterviewReport, error) {
	prompt := fmt.Sprintf(analysisPrompt, orPlaceholder(msg.JobRole, "the open position"), formatConversation(msg.Conversation))

	text, err := uc.gemini.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze transcript: %w", err)
	}

	feedback, err := parseFeedback(text)
	if err != nil {
		uc.log.Warn("unparseable analysis", zap.String("body", logger.TruncateForLog(text, 300)))
		return nil, fmt.Errorf("analyze transcript: %w", err)
	}

	feedbackJSON, err := json.Marshal(feedback)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}
	transcript, err := json.Marshal(msg.Conversation)
	if err != nil {
		return nil, fmt.Errorf("marshal transcript: %w", err)
	}

	report := &model.InterviewReport{
		ApplicationID: msg.ApplicationID,
		Status:        model.ReportStatusCompleted,
		OverallScore:  feedback.OverallScore,
		Feedback:      string(feedbackJSON),
		Transcript:    string(transcript),
	}
	if err := uc.reportRepo.Upsert(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}
	if err := uc.appRepo.UpdateInterviewScore(ctx, msg.ApplicationID, feedback.OverallScore); err != nil {
		return nil, fmt.Errorf("update interview score: %w", err)
	}

	uc.log.Info("interview analysed",
		zap.String(logger.FieldApplicationID, msg.ApplicationID.String()),
		zap.Float64("score", feedback.OverallScore),
	)
	return report, nil
}

// MarkAnalysisFailed flags the report once the analysis has been given up on.
func (uc *InterviewUsecase) MarkAnalysisFailed(ctx context.Context, msg service.AnalysisMessage) error {
	transcript, _ := json.Marshal(msg.Conversation)
	return uc.reportRepo.Upsert(ctx, &model.InterviewReport{
		ApplicationID: msg.ApplicationID,
		Status:        model.ReportStatusFailed,
		Feedback:      "{}",
		Transcript:    string(transcript),
	})
}

func (uc *InterviewUsecase) Report(ctx context.Context, identity auth.Identity, applicationID string) (*dto.InterviewReportDTO, error) {
	app, err := uc.ownedApplication(ctx, identity, applicationID)
	if err != nil {
		return nil, err
	}
	report, err := uc.reportRepo.FindByApplicationID(ctx, app.ID)
	if err != nil {
		return nil, notFound("interview report", err)
	}
	out := dto.NewInterviewReportDTO(report)
	return &out, nil
}

// ListInterviews returns one page of interview-stage applications grouped
// by job, each group's candidates ordered by score descending.
func (uc *InterviewUsecase) ListInterviews(ctx context.Context, identity auth.Identity, page, limit int) ([]dto.InterviewJobGroupDTO, *response.Pagination, error) {
	req := response.NewPageRequest(page, limit)
	filter := repository.InterviewFilter{
		Statuses: model.InterviewStatuses,
		Offset:   req.Offset(),
		Limit:    req.Limit,
	}
	if !identity.IsRecruiter() {
		if identity.Email == "" {
			return nil, nil, validationError("identity email is required")
		}
		filter.CandidateEmail = identity.Email
	}

	apps, total, err := uc.appRepo.ListInterviews(ctx, filter)
	if err != nil {
		return nil, nil, fmt.Errorf("list interviews: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(apps))
	for _, app := range apps {
		ids = append(ids, app.ID)
	}
	reports, err := uc.reportRepo.FindByApplicationIDs(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("load interview reports: %w", err)
	}
	byApp := make(map[uuid.UUID]model.InterviewReport, len(reports))
	for _, r := range reports {
		byApp[r.ApplicationID] = r
	}

	return GroupInterviews(apps, byApp), response.NewPagination(req, total, len(apps)), nil
}

// GroupInterviews groups applications by job in first-seen order. A completed
// report's score takes precedence over the application's stored score.
func GroupInterviews(apps []model.Application, reports map[uuid.UUID]model.InterviewReport) []dto.InterviewJobGroupDTO {
	groups := []dto.InterviewJobGroupDTO{}
	index := map[uuid.UUID]int{}

	for _, app := range apps {
		if app.Job == nil {
			continue
		}
		candidate := dto.InterviewCandidateDTO{
			ApplicationID:      app.ID,
			CandidateName:      app.CandidateName,
			CandidateEmail:     app.CandidateEmail,
			Status:             app.Status,
			InterviewScore:     app.InterviewScore,
			InterviewStartDate: app.InterviewStartDate,
			AppliedAt:          app.CreatedAt,
		}
		if r, ok := reports[app.ID]; ok {
			candidate.ReportStatus = r.Status
			if r.Status == model.ReportStatusCompleted {
				candidate.InterviewScore = r.OverallScore
				candidate.HasCompletedInterview = true
			}
		}

		i, ok := index[app.JobID]
		if !ok {
			i = len(groups)
			index[app.JobID] = i
			groups = append(groups, dto.InterviewJobGroupDTO{
				JobID:    app.Job.ID,
				JobTitle: app.Job.Title,
				Company:  app.Job.Company,
			})
		}
		groups[i].Candidates = append(groups[i].Candidates, candidate)
	}

	for i := range groups {
		sort.SliceStable(groups[i].Candidates, func(a, b int) bool {
			return groups[i].Candidates[a].InterviewScore > groups[i].Candidates[b].InterviewScore
		})
	}
	return groups
}

func (uc *InterviewUsecase) ownedApplication(ctx context.Context, identity auth.Identity, applicationID string) (*model.Application, error) {
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

func parseFeedback(text string) (*model.InterviewFeedback, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	score := gjson.Get(text, "overallScore")
	if !score.Exists() {
		return nil, fmt.Errorf("overallScore missing from response")
	}

	feedback := &model.InterviewFeedback{
		OverallScore:   clampScore(score.Float()),
		Summary:        gjson.Get(text, "summary").String(),
		Strengths:      []string{},
		Improvements:   []string{},
		CategoryScores: map[string]float64{},
	}
	for _, s := range gjson.Get(text, "strengths").Array() {
		feedback.Strengths = append(feedback.Strengths, s.String())
	}
	for _, s := range gjson.Get(text, "improvements").Array() {
		feedback.Improvements = append(feedback.Improvements, s.String())
	}
	gjson.Get(text, "categoryScores").ForEach(func(key, value gjson.Result) bool {
		feedback.CategoryScores[key.String()] = clampScore(value.Float())
		return true
	})
	return feedback, nil
}

func clampScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
