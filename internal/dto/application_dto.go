package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
)

type UpdateStatusRequest struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
}

type ApproveAllRequest struct {
	JobID string `json:"jobId"`
}

type ApplicationIDRequest struct {
	ApplicationID string `json:"applicationId"`
}

type SubmitApplicationRequest struct {
	JobID          string
	CandidateName  string
	CandidateEmail string
	ResumeFilename string
	Resume         []byte
}

// ResumeFile is a stored resume on its way back to the client.
type ResumeFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ApproveAllResult struct {
	Updated       int64 `json:"updated"`
	Notified      int   `json:"notified"`
	NotifyFailure int   `json:"notify_failures"`
}

type UpdateStatusResult struct {
	Application *model.Application `json:"application"`
	Notified    bool               `json:"notified"`
}

type InterviewContextDTO struct {
	ApplicationID  uuid.UUID  `json:"application_id"`
	CandidateName  string     `json:"candidate_name"`
	CandidateEmail string     `json:"candidate_email"`
	Status         string     `json:"status"`
	JobRole        string     `json:"job_role"`
	Company        string     `json:"company"`
	JobDescription string     `json:"job_description"`
	Skills         []string   `json:"skills"`
	Resume         string     `json:"resume"`
	StartedAt      *time.Time `json:"interview_start_date,omitempty"`
}
