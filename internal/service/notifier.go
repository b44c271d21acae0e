package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hiremind/hiremind-api/internal/logger"
	"github.com/hiremind/hiremind-api/internal/model"
	"go.uber.org/zap"
)

type NoticeKind string

const (
	NoticeApproved NoticeKind = "approved"
	NoticeSelected NoticeKind = "selected"
	NoticeRejected NoticeKind = "rejected"
)

// ErrIncompleteJob means the job lacks the title or company a notice needs.
var ErrIncompleteJob = errors.New("job title and company are required")

// Notice is one status-change side effect addressed to a candidate.
type Notice struct {
	Kind        NoticeKind
	Application model.Application
	Job         model.Job
}

func (n Notice) Validate() error {
	if strings.TrimSpace(n.Application.CandidateEmail) == "" {
		return fmt.Errorf("notice recipient is empty")
	}
	if strings.TrimSpace(n.Job.Title) == "" || strings.TrimSpace(n.Job.Company) == "" {
		return ErrIncompleteJob
	}
	return nil
}

// Message is the in-app text of the notice.
func (n Notice) Message() string {
	switch n.Kind {
	case NoticeSelected:
		return fmt.Sprintf("Congratulations! You have been selected for the role of %s at %s.", n.Job.Title, n.Job.Company)
	case NoticeRejected:
		return fmt.Sprintf("Thank you for your interest in the %s role. We have decided not to move forward with your application at this time.", n.Job.Title)
	default:
		return fmt.Sprintf("Your application for \"%s\" has moved to the Interviewing stage!", n.Job.Title)
	}
}

// NoticeForStatus maps a single status update to its side effect, if any.
func NoticeForStatus(status string) (NoticeKind, bool) {
	switch status {
	case model.ApplicationStatusSelected:
		return NoticeSelected, true
	case model.ApplicationStatusRejected:
		return NoticeRejected, true
	default:
		return "", false
	}
}

type NotifierInterface interface {
	Notify(ctx context.Context, notice Notice) error
}

type notificationCreator interface {
	Create(ctx context.Context, n *model.Notification) error
}

// NotificationNotifier records notices in the candidate's in-app feed.
type NotificationNotifier struct {
	repo notificationCreator
	log  *zap.Logger
}

func NewNotificationNotifier(repo notificationCreator, log *zap.Logger) *NotificationNotifier {
	return &NotificationNotifier{repo: repo, log: logger.OrNop(log)}
}

func (n *NotificationNotifier) Notify(ctx context.Context, notice Notice) error {
	if err := notice.Validate(); err != nil {
		return err
	}

	appID := notice.Application.ID
	row := &model.Notification{
		CandidateEmail: notice.Application.CandidateEmail,
		Message:        notice.Message(),
		ApplicationID:  &appID,
	}
	if err := n.repo.Create(ctx, row); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	n.log.Debug("notification created",
		zap.String(logger.FieldRecipient, row.CandidateEmail),
		zap.String(logger.FieldApplicationID, appID.String()),
		zap.String("kind", string(notice.Kind)),
	)
	return nil
}

// EmailNotifier sends notices as transactional email.
type EmailNotifier struct {
	sender EmailSenderInterface
	log    *zap.Logger
}

func NewEmailNotifier(sender EmailSenderInterface, log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{sender: sender, log: logger.OrNop(log)}
}

func (n *EmailNotifier) Notify(ctx context.Context, notice Notice) error {
	if err := notice.Validate(); err != nil {
		return err
	}

	subject, html, err := RenderEmail(EmailTemplateData{
		CandidateName: notice.Application.CandidateName,
		JobTitle:      notice.Job.Title,
		CompanyName:   notice.Job.Company,
		Status:        string(notice.Kind),
	})
	if err != nil {
		return err
	}

	result := n.sender.Send(ctx, Email{
		To:      notice.Application.CandidateEmail,
		Subject: subject,
		HTML:    html,
	})
	if !result.Success {
		return fmt.Errorf("send email: %s", result.Error)
	}

	n.log.Info("email sent",
		zap.String(logger.FieldRecipient, notice.Application.CandidateEmail),
		zap.String("email_id", result.ID),
		zap.String("kind", string(notice.Kind)),
	)
	return nil
}
