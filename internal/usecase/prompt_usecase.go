package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/prompt"
	"github.com/fadilmartias/hireprep/internal/repository"
	"github.com/fadilmartias/hireprep/internal/response"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/google/uuid"
)

// PromptUsecase manages the prompt template registry. Templates are never edited in place:
// every update appends a version to the (key, language) chain.
type PromptUsecase struct {
	prompts PromptTemplateRepository
	now     func() time.Time
}

func NewPromptUsecase(prompts PromptTemplateRepository) *PromptUsecase {
	return &PromptUsecase{prompts: prompts, now: time.Now}
}

func (uc *PromptUsecase) List(ctx context.Context, q dto.PromptListQuery) ([]model.PromptTemplate, *response.Pagination, error) {
	q.Normalize()
	items, total, err := uc.prompts.ListLatest(ctx, repository.PromptFilter{Key: q.Key, Language: q.Language}, (q.Page-1)*q.PageSize, q.PageSize)
	if err != nil {
		return nil, nil, util.NewUpstreamError("failed to list prompts", err)
	}
	if items == nil {
		items = []model.PromptTemplate{}
	}
	return items, response.NewPagination(q.Page, q.PageSize, total, len(items)), nil
}

func (uc *PromptUsecase) Get(ctx context.Context, rawID string) (*model.PromptTemplate, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, util.NewValidationError("invalid request", map[string]string{"id": "must be a valid UUID"})
	}
	p, err := uc.prompts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, util.NewNotFoundError("prompt not found", err)
		}
		return nil, util.NewUpstreamError("failed to load prompt", err)
	}
	return p, nil
}

// Versions lists the whole chain the given version belongs to, newest first.
func (uc *PromptUsecase) Versions(ctx context.Context, rawID string) ([]model.PromptTemplate, error) {
	p, err := uc.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	versions, err := uc.prompts.ListVersions(ctx, p.Key, p.Language)
	if err != nil {
		return nil, util.NewUpstreamError("failed to list prompt versions", err)
	}
	return versions, nil
}

func (uc *PromptUsecase) Create(ctx context.Context, req *dto.CreatePromptRequest) (*model.PromptTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, util.ValidationErrorFrom(err)
	}
	if err := checkContent(req.Content); err != nil {
		return nil, err
	}

	_, err := uc.prompts.FindLatest(ctx, req.Key, req.Language)
	switch {
	case err == nil:
		return nil, util.NewConflictError(fmt.Sprintf("prompt %s/%s already exists, update it instead", req.Key, req.Language))
	case !errors.Is(err, repository.ErrNotFound):
		return nil, util.NewUpstreamError("failed to check prompt", err)
	}

	p := &model.PromptTemplate{
		ID:        uuid.New(),
		Key:       req.Key,
		Language:  req.Language,
		Version:   1,
		Content:   req.Content,
		CreatedAt: uc.now(),
	}
	if err := uc.prompts.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.NewConflictError(fmt.Sprintf("prompt %s/%s already exists, update it instead", req.Key, req.Language))
		}
		return nil, util.NewUpstreamError("failed to create prompt", err)
	}
	return p, nil
}

// Update appends version n+1 to the chain of rawID, linked to the current latest version.
func (uc *PromptUsecase) Update(ctx context.Context, rawID string, req *dto.UpdatePromptRequest) (*model.PromptTemplate, error) {
	if err := req.Validate(); err != nil {
		return nil, util.ValidationErrorFrom(err)
	}
	if err := checkContent(req.Content); err != nil {
		return nil, err
	}
	current, err := uc.Get(ctx, rawID)
	if err != nil {
		return nil, err
	}
	latest, err := uc.prompts.FindLatest(ctx, current.Key, current.Language)
	if err != nil {
		return nil, util.NewUpstreamError("failed to load latest prompt version", err)
	}

	parent := latest.ID
	next := &model.PromptTemplate{
		ID:              uuid.New(),
		Key:             latest.Key,
		Language:        latest.Language,
		Version:         latest.Version + 1,
		Content:         req.Content,
		ParentVersionID: &parent,
		CreatedAt:       uc.now(),
	}
	if err := uc.prompts.Create(ctx, next); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, util.NewConflictError(fmt.Sprintf("prompt %s/%s was updated concurrently, reload and retry", latest.Key, latest.Language))
		}
		return nil, util.NewUpstreamError("failed to create prompt version", err)
	}
	return next, nil
}

// Delete removes every version of the chain rawID belongs to.
func (uc *PromptUsecase) Delete(ctx context.Context, rawID string) (int64, error) {
	p, err := uc.Get(ctx, rawID)
	if err != nil {
		return 0, err
	}
	n, err := uc.prompts.DeleteChain(ctx, p.Key, p.Language)
	if err != nil {
		return 0, util.NewUpstreamError("failed to delete prompt", err)
	}
	return n, nil
}

// EnsureDefaults seeds the built-in templates that have no chain yet.
func (uc *PromptUsecase) EnsureDefaults(ctx context.Context) error {
	for _, d := range prompt.Defaults {
		_, err := uc.prompts.FindLatest(ctx, d.Key, d.Language)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check prompt %s/%s: %w", d.Key, d.Language, err)
		}
		p := &model.PromptTemplate{
			ID:        uuid.New(),
			Key:       d.Key,
			Language:  d.Language,
			Version:   1,
			Content:   d.Content,
			CreatedAt: uc.now(),
		}
		if err := uc.prompts.Create(ctx, p); err != nil {
			return fmt.Errorf("seed prompt %s/%s: %w", d.Key, d.Language, err)
		}
		log.Printf("Seeded prompt %s/%s", d.Key, d.Language)
	}
	return nil
}

func checkContent(content string) error {
	if err := prompt.Check(content); err != nil {
		return util.NewValidationError("invalid request", map[string]string{"content": err.Error()})
	}
	return nil
}
