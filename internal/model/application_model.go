package model

import (
	"time"

	"github.com/google/uuid"
)

// Known application statuses. The status column itself is free text.
const (
	ApplicationStatusPending            = "Pending"
	ApplicationStatusApproved           = "Approved"
	ApplicationStatusInterviewing       = "Interviewing"
	ApplicationStatusCompletedInterview = "Completed-Interview"
	ApplicationStatusSelected           = "Selected"
	ApplicationStatusRejected           = "Rejected"
)

// InterviewStatuses are the statuses listed on the interviews board.
var InterviewStatuses = []string{
	ApplicationStatusInterviewing,
	ApplicationStatusCompletedInterview,
	ApplicationStatusSelected,
	ApplicationStatusRejected,
}

type Application struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	JobID              uuid.UUID  `gorm:"type:uuid;not null;index" json:"job_id"`
	Job                *Job       `gorm:"foreignKey:JobID" json:"job,omitempty"`
	CandidateName      string     `gorm:"type:varchar(200);not null" json:"candidate_name"`
	CandidateEmail     string     `gorm:"type:varchar(320);not null;index" json:"candidate_email"`
	Status             string     `gorm:"type:varchar(50);index" json:"status"`
	ResumeText         string     `gorm:"type:text" json:"-"`
	ResumeObjectKey    string     `gorm:"type:varchar(500)" json:"resume_object_key,omitempty"`
	InterviewStartDate *time.Time `json:"interview_start_date,omitempty"`
	InterviewScore     float64    `gorm:"type:float" json:"interview_score"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (a *Application) TableName() string {
	return "applications"
}
