package repository

import (
	"context"
	"strings"

	"github.com/hiremind/hiremind-api/internal/model"
	"gorm.io/gorm"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, email string, offset, limit int) ([]model.Notification, int64, error)
	CountUnread(ctx context.Context, email string) (int64, error)
	MarkAllRead(ctx context.Context, email string) (int64, error)
	DeleteAll(ctx context.Context, email string) (int64, error)
}

// NotificationRepository scopes every read and bulk mutation by recipient.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, email string, offset, limit int) ([]model.Notification, int64, error) {
	email, err := recipient(email)
	if err != nil {
		return nil, 0, err
	}

	var (
		items []model.Notification
		total int64
	)
	if err := r.byRecipient(ctx, email).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err = r.byRecipient(ctx, email).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	return items, total, err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, email string) (int64, error) {
	email, err := recipient(email)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.byRecipient(ctx, email).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, email string) (int64, error) {
	email, err := recipient(email)
	if err != nil {
		return 0, err
	}
	res := r.byRecipient(ctx, email).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) DeleteAll(ctx context.Context, email string) (int64, error) {
	email, err := recipient(email)
	if err != nil {
		return 0, err
	}
	res := r.byRecipient(ctx, email).Delete(&model.Notification{})
	return res.RowsAffected, res.Error
}

// byRecipient starts a new statement on every call; a chain is not reused
// once Count has run on it.
func (r *NotificationRepository) byRecipient(ctx context.Context, email string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("candidate_email = ?", email)
}

func recipient(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", ErrRecipientRequired
	}
	return email, nil
}
