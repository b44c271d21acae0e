package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/hiremind/hiremind-api/internal/dto"
	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/response"
	"github.com/hiremind/hiremind-api/internal/usecase"
	"github.com/hiremind/hiremind-api/internal/util"
	"go.uber.org/zap"
)

type NotificationUsecaseInterface interface {
	List(ctx context.Context, recipient string, page, limit int) (*usecase.NotificationPage, error)
	MarkAllRead(ctx context.Context, recipient string) (int64, error)
	ClearAll(ctx context.Context, recipient string) (int64, error)
}

// NotificationHandler serves the caller's own feed; the recipient is always
// the authenticated email.
type NotificationHandler struct {
	uc  NotificationUsecaseInterface
	log *zap.Logger
}

func NewNotificationHandler(uc NotificationUsecaseInterface, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{uc: uc, log: logger.OrNop(log)}
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notifications := router.Group("/notifications")
	notifications.Get("/", h.List)
	notifications.Post("/", h.MarkAllRead)
	notifications.Delete("/", h.ClearAll)
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	page, err := h.uc.List(c.UserContext(), currentIdentity(c).Email, c.QueryInt("page", 1), c.QueryInt("limit", response.DefaultPageSize))
	if err != nil {
		return respondError(c, h.log, "Failed to list notifications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    "Success get notifications",
		Data:       page.Items,
		Pagination: page.Pagination,
		Meta:       dto.NotificationMeta{UnreadCount: page.UnreadCount},
	})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	n, err := h.uc.MarkAllRead(c.UserContext(), currentIdentity(c).Email)
	if err != nil {
		return respondError(c, h.log, "Failed to mark notifications as read", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "All notifications marked as read",
		Data:    dto.BulkNotificationResult{Affected: n},
	})
}

func (h *NotificationHandler) ClearAll(c *fiber.Ctx) error {
	n, err := h.uc.ClearAll(c.UserContext(), currentIdentity(c).Email)
	if err != nil {
		return respondError(c, h.log, "Failed to clear notifications", err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "All notifications cleared",
		Data:    dto.BulkNotificationResult{Affected: n},
	})
}
