package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type JobPosting struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID        `gorm:"type:uuid;index" json:"session_id"`
	OwnerID   uuid.UUID        `gorm:"type:uuid;index" json:"owner_id"`
	Title     string           `json:"title"`
	Content   string           `gorm:"type:text" json:"content"`
	ObjectKey string           `json:"object_key"`
	Embedding *pgvector.Vector `gorm:"type:vector(3072)" json:"-"` // nil until embedded
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (j *JobPosting) TableName() string {
	return "job_postings"
}
