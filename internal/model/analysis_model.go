package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AnalysisKindCandidatePreparation = "candidate_preparation"
	AnalysisKindInterviewerQuestions = "interviewer_questions"
)

type Analysis struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID     uuid.UUID `gorm:"type:uuid;index" json:"session_id"`
	OwnerType     UserType  `gorm:"type:varchar(20)" json:"owner_type"`
	OwnerID       uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Kind          string    `gorm:"type:varchar(50)" json:"kind"`
	PromptKey     string    `gorm:"type:varchar(100)" json:"prompt_key"`
	PromptVersion int       `json:"prompt_version"`
	Language      string    `gorm:"type:varchar(10)" json:"language"`
	Provider      string    `gorm:"type:varchar(50)" json:"provider"`
	Model         string    `gorm:"type:varchar(100)" json:"model"`
	Status        string    `gorm:"type:varchar(50)" json:"status"` // e.g. "completed", "failed"
	Result        string    `gorm:"type:jsonb" json:"result"`
	Score         float64   `gorm:"type:float" json:"score"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	Cost          float64   `gorm:"type:numeric(12,6)" json:"cost"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (a *Analysis) TableName() string {
	return "analyses"
}
