package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hiremind/hiremind-api/internal/model"
)

type InterviewReportDTO struct {
	ID            uuid.UUID                 `json:"id"`
	ApplicationID uuid.UUID                 `json:"application_id"`
	Status        string                    `json:"status"` // pending, completed, failed
	OverallScore  float64                   `json:"overall_score"`
	Feedback      *model.InterviewFeedback  `json:"feedback,omitempty"`
	Transcript    []model.ConversationEntry `json:"transcript,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

// NewInterviewReportDTO decodes the jsonb columns; malformed payloads are left empty.
func NewInterviewReportDTO(r *model.InterviewReport) InterviewReportDTO {
	out := InterviewReportDTO{
		ID:            r.ID,
		ApplicationID: r.ApplicationID,
		Status:        r.Status,
		OverallScore:  r.OverallScore,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	var feedback model.InterviewFeedback
	if r.Feedback != "" && json.Unmarshal([]byte(r.Feedback), &feedback) == nil {
		out.Feedback = &feedback
	}
	if r.Transcript != "" {
		_ = json.Unmarshal([]byte(r.Transcript), &out.Transcript)
	}
	return out
}
