package dto

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

type PromptListQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Key      string `query:"key"`
	Language string `query:"language"`
}

// Normalize applies paging defaults and caps.
func (q *PromptListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}

type CreatePromptRequest struct {
	Key      string `json:"key"`
	Language string `json:"language"`
	Content  string `json:"content"`
}

func (r *CreatePromptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Language, validation.Required, validation.Match(languagePattern).Error("must be a language code such as en or pt-BR")),
		validation.Field(&r.Content, validation.Required),
	)
}

type UpdatePromptRequest struct {
	Content string `json:"content"`
}

func (r *UpdatePromptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Content, validation.Required),
	)
}
