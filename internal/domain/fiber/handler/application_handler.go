package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/hiremind/hiremind-api/internal/auth"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/middleware"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/util"
	"go.uber.org/zap"
)

type ApplicationUsecaseInterface interface {
	Submit(ctx context.Context, identity auth.Identity, req dto.SubmitApplicationRequest) (*model.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]model.Application, error)
	UpdateStatus(ctx context.Context, applicationID, status string) (*dto.UpdateStatusResult, error)
	ApproveAll(ctx context.Context, jobID string) (*dto.ApproveAllResult, error)
	InterviewContext(ctx context.Context, identity auth.Identity, applicationID string) (*dto.InterviewContextDTO, error)
	StartInterview(ctx context.Context, identity auth.Identity, applicationID string) (*model.Application, error)
	CompleteInterview(ctx context.Context, identity auth.Identity, applicationID string) (*model.Application, error)
	Resume(ctx context.Context, identity auth.Identity, applicationID string) (*dto.ResumeFile, error)
}

type ApplicationHandler struct {
	uc  ApplicationUsecaseInterface
	log *zap.Logger
}

func NewApplicationHandler(uc ApplicationUsecaseInterface, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *ApplicationHandler) RegisterRoutes(router fiber.Router) {
	recruiter := middleware.RequireRole(auth.RoleRecruiter)

	apps := router.Group("/applications")
	apps.Post("/", h.Submit)
	apps.Get("/job/:jobId", recruiter, h.ListByJob)
	apps.Post("/approve-all", recruiter, h.ApproveAll)
	apps.Post("/update-status", recruiter, h.UpdateStatus)
	apps.Get("/interview-context/:applicationId", h.InterviewContext)
	apps.Post("/start-interview", h.StartInterview)
	apps.Post("/complete-interview", h.CompleteInterview)
	apps.Get("/:applicationId/resume", h.Resume)
}

func (h *ApplicationHandler) Submit(c *fiber.Ctx) error {
	req := dto.SubmitApplicationRequest{
		JobID:          c.FormValue("jobId"),
		CandidateName:  c.FormValue("candidateName"),
		CandidateEmail: c.FormValue("candidateEmail"),
	}

	if file, err := c.FormFile("resume"); err == nil {
		if file.Size > util.MaxResumeSize {
			return badRequest(c, "resume file size is too large (max 5MB)", nil)
		}
		f, err := file.Open()
		if err != nil {
			return badRequest(c, "cannot read resume file", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return badRequest(c, "cannot read resume file", err)
		}
		req.ResumeFilename = file.Filename
		req.Resume = data
	}

	app, err := h.uc.Submit(c.UserContext(), currentIdentity(c), req)
	if err != nil {
		return respondError(c, h.log, "Failed to submit application", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Application submitted",
		Data:    app,
	})
}

func (h *ApplicationHandler) ListByJob(c *fiber.Ctx) error {
	apps, err := h.uc.ListByJob(c.UserContext(), c.Params("jobId"))
	if err != nil {
		return respondError(c, h.log, "Failed to list applications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get applications",
		Data:    apps,
	})
}

func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	result, err := h.uc.UpdateStatus(c.UserContext(), req.ApplicationID, req.Status)
	if err != nil {
		return respondError(c, h.log, "Failed to update application status", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: fmt.Sprintf("Application status updated to %s", result.Application.Status),
		Data:    result,
	})
}

func (h *ApplicationHandler) ApproveAll(c *fiber.Ctx) error {
	var req dto.ApproveAllRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	result, err := h.uc.ApproveAll(c.UserContext(), req.JobID)
	if err != nil {
		return respondError(c, h.log, "Failed to approve applications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: fmt.Sprintf("%d application(s) moved to Interviewing", result.Updated),
		Data:    result,
	})
}

func (h *ApplicationHandler) InterviewContext(c *fiber.Ctx) error {
	out, err := h.uc.InterviewContext(c.UserContext(), currentIdentity(c), c.Params("applicationId"))
	if err != nil {
		return respondError(c, h.log, "Failed to load interview context", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get interview context",
		Data:    out,
	})
}

func (h *ApplicationHandler) StartInterview(c *fiber.Ctx) error {
	var req dto.ApplicationIDRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	app, err := h.uc.StartInterview(c.UserContext(), currentIdentity(c), req.ApplicationID)
	if err != nil {
		return respondError(c, h.log, "Failed to start interview", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Interview started",
		Data:    app,
	})
}

func (h *ApplicationHandler) CompleteInterview(c *fiber.Ctx) error {
	var req dto.ApplicationIDRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	app, err := h.uc.CompleteInterview(c.UserContext(), currentIdentity(c), req.ApplicationID)
	if err != nil {
		return respondError(c, h.log, "Failed to complete interview", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Interview completed",
		Data:    app,
	})
}

func (h *ApplicationHandler) Resume(c *fiber.Ctx) error {
	file, err := h.uc.Resume(c.UserContext(), currentIdentity(c), c.Params("applicationId"))
	if err != nil {
		return respondError(c, h.log, "Failed to download resume", err)
	}
	c.Attachment(file.Filename)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Data)
}
