package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
)

type NextQuestionRequest struct {
	ApplicationID       string                    `json:"applicationId"`
	ConversationHistory []model.ConversationEntry `json:"conversationHistory"`
}

type NextQuestionResponse struct {
	Question string `json:"question"`
}

type TranscribeResponse struct {
	Transcription string `json:"transcription"`
	ObjectKey     string `json:"object_key,omitempty"`
}

type AnalyzeRequest struct {
	ApplicationID string                    `json:"applicationId"`
	JobRole       string                    `json:"jobRole"`
	Conversation  []model.ConversationEntry `json:"conversation"`
}

type AnalyzeResponse struct {
	Queued bool                `json:"queued"`
	Report *InterviewReportDTO `json:"report,omitempty"`
}

type InterviewCandidateDTO struct {
	ApplicationID         uuid.UUID  `json:"application_id"`
	CandidateName         string     `json:"candidate_name"`
	CandidateEmail        string     `json:"candidate_email"`
	Status                string     `json:"status"`
	InterviewScore        float64    `json:"interview_score"`
	ReportStatus          string     `json:"report_status,omitempty"`
	HasCompletedInterview bool       `json:"has_completed_interview"`
	InterviewStartDate    *time.Time `json:"interview_start_date,omitempty"`
	AppliedAt             time.Time  `json:"applied_at"`
}

type InterviewJobGroupDTO struct {
	JobID      uuid.UUID               `json:"job_id"`
	JobTitle   string                  `json:"job_title"`
	Company    string                  `json:"company"`
	Candidates []InterviewCandidateDTO `json:"candidates"`
}
