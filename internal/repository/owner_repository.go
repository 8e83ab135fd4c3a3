package repository

import (
	"context"

	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db}
}

func (r *CandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CandidateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Candidate, error) {
	var c model.Candidate
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

type InterviewerRepository struct {
	db *gorm.DB
}

func NewInterviewerRepository(db *gorm.DB) *InterviewerRepository {
	return &InterviewerRepository{db}
}

func (r *InterviewerRepository) Create(ctx context.Context, i *model.Interviewer) error {
	return r.db.WithContext(ctx).Create(i).Error
}

func (r *InterviewerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Interviewer, error) {
	var i model.Interviewer
	if err := r.db.WithContext(ctx).First(&i, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &i, nil
}
