package repository

import (
	"context"

	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db}
}

func (r *AnalysisRepository) Create(ctx context.Context, a *model.Analysis) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AnalysisRepository) FindLatestBySession(ctx context.Context, sessionID uuid.UUID, kind string) (*model.Analysis, error) {
	var a model.Analysis
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND kind = ?", sessionID, kind).
		Order("created_at DESC").
		First(&a).Error
	if err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

// ListUnpriced pages through analyses that recorded token usage but no cost, ordered by id.
// Pass uuid.Nil as after to start from the beginning.
func (r *AnalysisRepository) ListUnpriced(ctx context.Context, after uuid.UUID, limit int) ([]model.Analysis, error) {
	var out []model.Analysis
	q := r.db.WithContext(ctx).
		Where("cost = 0 AND (input_tokens > 0 OR output_tokens > 0)")
	if after != uuid.Nil {
		q = q.Where("id > ?", after)
	}
	err := q.Order("id").Limit(limit).Find(&out).Error
	return out, err
}

func (r *AnalysisRepository) UpdateCost(ctx context.Context, id uuid.UUID, cost float64) error {
	res := r.db.WithContext(ctx).Model(&model.Analysis{}).Where("id = ?", id).Update("cost", cost)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
