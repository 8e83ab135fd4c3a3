package repository

import (
	"context"

	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type JobPostingRepository struct {
	db *gorm.DB
}

func NewJobPostingRepository(db *gorm.DB) *JobPostingRepository {
	return &JobPostingRepository{db}
}

func (r *JobPostingRepository) Create(ctx context.Context, job *model.JobPosting) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobPostingRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.JobPosting, error) {
	var j model.JobPosting
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &j, nil
}

func (r *JobPostingRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding pgvector.Vector) error {
	return r.db.WithContext(ctx).Model(&model.JobPosting{}).Where("id = ?", id).Update("embedding", embedding).Error
}

// SearchSimilar returns the topK postings nearest to embedding, skipping those of excludeSession.
func (r *JobPostingRepository) SearchSimilar(ctx context.Context, embedding pgvector.Vector, excludeSession uuid.UUID, topK int) ([]model.JobPosting, error) {
	var jobs []model.JobPosting

	// <=> is cosine distance
	err := r.db.WithContext(ctx).Raw(`
        SELECT id, session_id, owner_id, title, content, object_key, created_at, updated_at
        FROM job_postings
        WHERE embedding IS NOT NULL AND session_id <> ?
        ORDER BY embedding <=> ?
        LIMIT ?
    `, excludeSession, embedding, topK).Scan(&jobs).Error

	return jobs, err
}
