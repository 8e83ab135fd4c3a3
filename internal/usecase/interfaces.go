package usecase

import (
	"context"

	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/repository"
	"github.com/fadilmartias/hireprep/internal/service"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Repositories return repository.ErrNotFound for missing rows.

type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) error
	Save(ctx context.Context, s *model.Session) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
}

type CandidateRepository interface {
	Create(ctx context.Context, c *model.Candidate) error
}

type InterviewerRepository interface {
	Create(ctx context.Context, i *model.Interviewer) error
}

type AnalysisRepository interface {
	Create(ctx context.Context, a *model.Analysis) error
	FindLatestBySession(ctx context.Context, sessionID uuid.UUID, kind string) (*model.Analysis, error)
	ListUnpriced(ctx context.Context, after uuid.UUID, limit int) ([]model.Analysis, error)
	UpdateCost(ctx context.Context, id uuid.UUID, cost float64) error
}

type JobPostingRepository interface {
	Create(ctx context.Context, job *model.JobPosting) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.JobPosting, error)
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error
	SearchSimilar(ctx context.Context, embedding pgvector.Vector, excludeSession uuid.UUID, topK int) ([]model.JobPosting, error)
}

type PromptTemplateRepository interface {
	Create(ctx context.Context, p *model.PromptTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PromptTemplate, error)
	FindLatest(ctx context.Context, key, language string) (*model.PromptTemplate, error)
	ListVersions(ctx context.Context, key, language string) ([]model.PromptTemplate, error)
	ListLatest(ctx context.Context, filter repository.PromptFilter, offset, limit int) ([]model.PromptTemplate, int64, error)
	DeleteChain(ctx context.Context, key, language string) (int64, error)
}

// AIClient is satisfied by *service.AIManager.
type AIClient interface {
	Generate(ctx context.Context, req service.AIRequest) (*service.AIResponse, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// FileStore is satisfied by *service.StorageService. An empty key means nothing was stored.
type FileStore interface {
	Upload(ctx context.Context, bucket, ownerID, filename, contentType string, data []byte) (string, error)
}

type SessionEventPublisher interface {
	PublishSessionUpdate(sessionID string, update map[string]any) error
}
