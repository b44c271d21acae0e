package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CandidateEmail string     `gorm:"type:varchar(320);not null;index:idx_notifications_recipient_created,priority:1" json:"candidate_email"`
	Message        string     `gorm:"type:text;not null" json:"message"`
	IsRead         bool       `gorm:"default:false;index" json:"is_read"`
	ApplicationID  *uuid.UUID `gorm:"type:uuid" json:"application_id,omitempty"`
	CreatedAt      time.Time  `gorm:"index:idx_notifications_recipient_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (n *Notification) TableName() string {
	return "notifications"
}
