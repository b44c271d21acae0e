package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReportStatusPending   = "pending"
	ReportStatusCompleted = "completed"
	ReportStatusFailed    = "failed"
)

type InterviewReport struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"application_id"`
	Status        string    `gorm:"type:varchar(50)" json:"status"` // pending, completed, failed
	OverallScore  float64   `gorm:"type:float" json:"overall_score"`
	Feedback      string    `gorm:"type:jsonb;default:'{}'" json:"feedback"`
	Transcript    string    `gorm:"type:jsonb;default:'[]'" json:"transcript"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r *InterviewReport) TableName() string {
	return "interview_reports"
}

// ConversationEntry is one turn of an interview transcript.
type ConversationEntry struct {
	Role string `json:"role"` // "user" or "ai"
	Text string `json:"text"`
}

// InterviewFeedback is the structured analysis stored in InterviewReport.Feedback.
type InterviewFeedback struct {
	OverallScore   float64            `json:"overallScore"`
	Summary        string             `json:"summary"`
	Strengths      []string           `json:"strengths"`
	Improvements   []string           `json:"improvements"`
	CategoryScores map[string]float64 `json:"categoryScores"`
}
