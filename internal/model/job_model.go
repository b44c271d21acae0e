package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type Job struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title       string           `gorm:"type:varchar(200);not null" json:"title"`
	Company     string           `gorm:"type:varchar(200);not null" json:"company"`
	Location    string           `gorm:"type:varchar(200)" json:"location"`
	Description string           `gorm:"type:text" json:"description"`
	Skills      pq.StringArray   `gorm:"type:text[]" json:"skills"`
	Embedding   *pgvector.Vector `gorm:"type:vector(3072)" json:"-"` // nil until the description is embedded
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}
