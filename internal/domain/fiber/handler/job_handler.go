package handler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hiremind/hiremind-api/internal/auth"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/middleware"
	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/response"
	"github.com/hiremind/hiremind-api/internal/util"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

type JobUsecaseInterface interface {
	Create(ctx context.Context, req dto.CreateJobRequest) (*model.Job, error)
	List(ctx context.Context, page, limit int) ([]model.Job, *response.Pagination, error)
	Get(ctx context.Context, jobID string) (*model.Job, error)
	Search(ctx context.Context, query string, limit int) ([]model.Job, error)
	ExportCandidates(ctx context.Context, jobID string) (*model.Job, []byte, error)
	BackfillEmbeddings(ctx context.Context) (*dto.BackfillResult, error)
}

type JobHandler struct {
	uc  JobUsecaseInterface
	log *zap.Logger
}

func NewJobHandler(uc JobUsecaseInterface, log *zap.Logger) *JobHandler {
	return &JobHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *JobHandler) RegisterRoutes(router fiber.Router) {
	jobs := router.Group("/jobs")
	jobs.Get("/", h.List)
	jobs.Get("/search", h.Search)
	jobs.Post("/", middleware.RequireRole(auth.RoleRecruiter), h.Create)
	jobs.Post("/embeddings/backfill", middleware.RequireRole(auth.RoleRecruiter), h.BackfillEmbeddings)
	jobs.Get("/:id/candidates/export", middleware.RequireRole(auth.RoleRecruiter), h.ExportCandidates)
	jobs.Get("/:id", h.Get)
}

func (h *JobHandler) List(c *fiber.Ctx) error {
	jobs, pagination, err := h.uc.List(c.UserContext(), c.QueryInt("page", 1), c.QueryInt("limit", response.DefaultPageSize))
	if err != nil {
		return respondError(c, h.log, "Failed to list jobs", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get jobs",
		Data:       jobs,
		Pagination: pagination,
	})
}

func (h *JobHandler) Search(c *fiber.Ctx) error {
	jobs, err := h.uc.Search(c.UserContext(), c.Query("q"), c.QueryInt("limit"))
	if err != nil {
		return respondError(c, h.log, "Failed to search jobs", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success search jobs",
		Data:    jobs,
	})
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	job, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Failed to get job", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get job",
		Data:    job,
	})
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	job, err := h.uc.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.log, "Failed to create job", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success create job",
		Data:    job,
	})
}

func (h *JobHandler) ExportCandidates(c *fiber.Ctx) error {
	job, data, err := h.uc.ExportCandidates(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Failed to export candidates", err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, exportFilename(job)))
	return c.Send(data)
}

func (h *JobHandler) BackfillEmbeddings(c *fiber.Ctx) error {
	result, err := h.uc.BackfillEmbeddings(c.UserContext())
	if err != nil {
		return respondError(c, h.log, "Failed to backfill job embeddings", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success backfill job embeddings",
		Data:    result,
	})
}

func exportFilename(job *model.Job) string {
	slug := strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(job.Title), "-"), "-")
	if slug == "" {
		slug = job.ID.String()
	}
	return "candidates-" + slug + ".xlsx"
}
