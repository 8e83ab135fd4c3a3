package repository

import (
	"context"

	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromptFilter struct {
	Key      string
	Language string
}

type PromptTemplateRepository struct {
	db *gorm.DB
}

func NewPromptTemplateRepository(db *gorm.DB) *PromptTemplateRepository {
	return &PromptTemplateRepository{db}
}

func (r *PromptTemplateRepository) Create(ctx context.Context, p *model.PromptTemplate) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PromptTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PromptTemplate, error) {
	var p model.PromptTemplate
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// FindLatest returns the active (highest) version for key and language.
func (r *PromptTemplateRepository) FindLatest(ctx context.Context, key, language string) (*model.PromptTemplate, error) {
	var p model.PromptTemplate
	err := r.db.WithContext(ctx).
		Where("key = ? AND language = ?", key, language).
		Order("version DESC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PromptTemplateRepository) ListVersions(ctx context.Context, key, language string) ([]model.PromptTemplate, error) {
	var out []model.PromptTemplate
	err := r.db.WithContext(ctx).
		Where("key = ? AND language = ?", key, language).
		Order("version DESC").
		Find(&out).Error
	return out, err
}

// ListLatest pages through the active version of every chain matching filter.
func (r *PromptTemplateRepository) ListLatest(ctx context.Context, filter PromptFilter, offset, limit int) ([]model.PromptTemplate, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.PromptTemplate{}).
		Where(`version = (
			SELECT MAX(p2.version) FROM prompt_templates p2
			WHERE p2.key = prompt_templates.key AND p2.language = prompt_templates.language
		)`)
	if filter.Key != "" {
		q = q.Where("key = ?", filter.Key)
	}
	if filter.Language != "" {
		q = q.Where("language = ?", filter.Language)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []model.PromptTemplate
	err := q.Order("key, language").Offset(offset).Limit(limit).Find(&out).Error
	return out, total, err
}

// DeleteChain removes every version of key and language.
func (r *PromptTemplateRepository) DeleteChain(ctx context.Context, key, language string) (int64, error) {
	res := r.db.WithContext(ctx).Where("key = ? AND language = ?", key, language).Delete(&model.PromptTemplate{})
	return res.RowsAffected, res.Error
}
