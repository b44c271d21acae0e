package handler

import (
	"context"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/hiremind/hiremind-api/internal/auth"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/middleware"
	"github.com/hiremind/hiremind-api/internal/response"
	"github.com/hiremind/hiremind-api/internal/util"
	"go.uber.org/zap"
)

type InterviewUsecaseInterface interface {
	NextQuestion(ctx context.Context, identity auth.Identity, req dto.NextQuestionRequest) (string, error)
	Transcribe(ctx context.Context, filename, mimeType string, audio []byte) (*dto.TranscribeResponse, error)
	Analyze(ctx context.Context, identity auth.Identity, req dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
	Report(ctx context.Context, identity auth.Identity, applicationID string) (*dto.InterviewReportDTO, error)
	ListInterviews(ctx context.Context, identity auth.Identity, page, limit int) ([]dto.InterviewJobGroupDTO, *response.Pagination, error)
}

type InterviewHandler struct {
	uc  InterviewUsecaseInterface
	log *zap.Logger
}

func NewInterviewHandler(uc InterviewUsecaseInterface, log *zap.Logger) *InterviewHandler {
	return &InterviewHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *InterviewHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/interviews", h.ListInterviews)

	interview := router.Group("/interview")
	interview.Post("/", middleware.RateLimiter(20, time.Minute), h.NextQuestion)
	interview.Post("/transcribe", middleware.RateLimiter(20, time.Minute), h.Transcribe)
	interview.Post("/analyze", middleware.RateLimiter(5, time.Minute), h.Analyze)
	interview.Get("/report/:applicationId", h.Report)
}

func (h *InterviewHandler) NextQuestion(c *fiber.Ctx) error {
	var req dto.NextQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	question, err := h.uc.NextQuestion(c.UserContext(), currentIdentity(c), req)
	if err != nil {
		return respondError(c, h.log, "Failed to generate interview question", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success generate question",
		Data:    dto.NextQuestionResponse{Question: question},
	})
}

func (h *InterviewHandler) Transcribe(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return badRequest(c, "audio file is required", err)
	}
	f, err := file.Open()
	if err != nil {
		return badRequest(c, "cannot read audio file", err)
	}
	defer f.Close()
	audio, err := io.ReadAll(f)
	if err != nil {
		return badRequest(c, "cannot read audio file", err)
	}

	out, err := h.uc.Transcribe(c.UserContext(), file.Filename, file.Header.Get(fiber.HeaderContentType), audio)
	if err != nil {
		return respondError(c, h.log, "Failed to transcribe audio", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success transcribe audio",
		Data:    out,
	})
}

func (h *InterviewHandler) Analyze(c *fiber.Ctx) error {
	var req dto.AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	out, err := h.uc.Analyze(c.UserContext(), currentIdentity(c), req)
	if err != nil {
		return respondError(c, h.log, "Failed to analyze interview", err)
	}

	if out.Queued {
		return util.SuccessResponse(c, util.SuccessResponseFormat{
			Code:    fiber.StatusAccepted,
			Message: "Interview analysis queued",
			Data:    out,
		})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success analyze interview",
		Data:    out,
	})
}

func (h *InterviewHandler) Report(c *fiber.Ctx) error {
	report, err := h.uc.Report(c.UserContext(), currentIdentity(c), c.Params("applicationId"))
	if err != nil {
		return respondError(c, h.log, "Failed to get interview report", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get interview report",
		Data:    report,
	})
}

func (h *InterviewHandler) ListInterviews(c *fiber.Ctx) error {
	groups, pagination, err := h.uc.ListInterviews(c.UserContext(), currentIdentity(c), c.QueryInt("page", 1), c.QueryInt("limit", response.DefaultPageSize))
	if err != nil {
		return respondError(c, h.log, "Failed to list interviews", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get interviews",
		Data:       groups,
		Pagination: pagination,
	})
}
