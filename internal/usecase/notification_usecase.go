package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/hiremind/hiremind-api/internal/model"
	"github.com/hiremind/hiremind-api/internal/repository"
	"github.com/hiremind/hiremind-api/internal/response"
)

// NotificationPage is one page of a recipient's feed.
type NotificationPage struct {
	Items       []model.Notification
	Pagination  *response.Pagination
	UnreadCount int64
}

type NotificationUsecase struct {
	repo repository.NotificationRepositoryInterface
}

func NewNotificationUsecase(repo repository.NotificationRepositoryInterface) *NotificationUsecase {
	return &NotificationUsecase{repo: repo}
}

func (uc *NotificationUsecase) List(ctx context.Context, recipient string, page, limit int) (*NotificationPage, error) {
	recipient, err := requireRecipient(recipient)
	if err != nil {
		return nil, err
	}

	req := response.NewPageRequest(page, limit)
	items, total, err := uc.repo.ListByRecipient(ctx, recipient, req.Offset(), req.Limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := uc.repo.CountUnread(ctx, recipient)
	if err != nil {
		return nil, fmt.Errorf("count unread notifications: %w", err)
	}

	return &NotificationPage{
		Items:       items,
		Pagination:  response.NewPagination(req, total, len(items)),
		UnreadCount: unread,
	}, nil
}

func (uc *NotificationUsecase) MarkAllRead(ctx context.Context, recipient string) (int64, error) {
	recipient, err := requireRecipient(recipient)
	if err != nil {
		return 0, err
	}
	n, err := uc.repo.MarkAllRead(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}

func (uc *NotificationUsecase) ClearAll(ctx context.Context, recipient string) (int64, error) {
	recipient, err := requireRecipient(recipient)
	if err != nil {
		return 0, err
	}
	n, err := uc.repo.DeleteAll(ctx, recipient)
	if err != nil {
		return 0, fmt.Errorf("clear notifications: %w", err)
	}
	return n, nil
}

func requireRecipient(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", validationError("recipient is required")
	}
	return email, nil
}
