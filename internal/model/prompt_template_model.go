package model

import (
	"time"

	"github.com/google/uuid"
)

// PromptTemplate is one version in an append-only chain per (key, language).
type PromptTemplate struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Key             string     `gorm:"type:varchar(100);uniqueIndex:idx_prompt_key_lang_version" json:"key"`
	Language        string     `gorm:"type:varchar(10);uniqueIndex:idx_prompt_key_lang_version" json:"language"`
	Version         int        `gorm:"not null;uniqueIndex:idx_prompt_key_lang_version" json:"version"`
	Content         string     `gorm:"type:text" json:"content"`
	ParentVersionID *uuid.UUID `gorm:"type:uuid" json:"parent_version_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (p *PromptTemplate) TableName() string {
	return "prompt_templates"
}
