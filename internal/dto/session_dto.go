package dto

import (
	"encoding/json"
	"time"

	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/google/uuid"
)

type AnalysisResponse struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	Status    string          `json:"status"`
	Score     float64         `json:"score"`
	Result    json.RawMessage `json:"result"`
	Provider  string          `json:"provider"`
	Model     string          `json:"model"`
	Language  string          `json:"language"`
	Cost      float64         `json:"cost"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewAnalysisResponse(a *model.Analysis) *AnalysisResponse {
	if a == nil {
		return nil
	}
	return &AnalysisResponse{
		ID:        a.ID,
		Kind:      a.Kind,
		Status:    a.Status,
		Score:     a.Score,
		Result:    json.RawMessage(a.Result),
		Provider:  a.Provider,
		Model:     a.Model,
		Language:  a.Language,
		Cost:      a.Cost,
		CreatedAt: a.CreatedAt,
	}
}

type SessionResponse struct {
	SessionID     uuid.UUID         `json:"session_id"`
	UserType      model.UserType    `json:"user_type"`
	CandidateID   *uuid.UUID        `json:"candidate_id,omitempty"`
	InterviewerID *uuid.UUID        `json:"interviewer_id,omitempty"`
	CurrentStep   int               `json:"current_step"`
	TotalSteps    int               `json:"total_steps"`
	Status        string            `json:"status"`
	Data          model.StepData    `json:"data"`
	Analysis      *AnalysisResponse `json:"analysis,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
}

func NewSessionResponse(s *model.Session, totalSteps int) *SessionResponse {
	res := &SessionResponse{
		SessionID:   s.ID,
		UserType:    s.UserType,
		CurrentStep: s.CurrentStep,
		TotalSteps:  totalSteps,
		Status:      s.Status,
		Data:        s.Data,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		CompletedAt: s.CompletedAt,
	}
	owner := s.OwnerID
	switch s.UserType {
	case model.UserTypeCandidate:
		res.CandidateID = &owner
	case model.UserTypeInterviewer:
		res.InterviewerID = &owner
	}
	return res
}

type SuggestionsResponse struct {
	SessionID    uuid.UUID       `json:"session_id"`
	Score        float64         `json:"score"`
	Suggestions  json.RawMessage `json:"suggestions"`
	SimilarRoles []SimilarRole   `json:"similar_roles"`
	Provider     string          `json:"provider"`
	Model        string          `json:"model"`
	GeneratedAt  time.Time       `json:"generated_at"`
}

type SimilarRole struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}
