package usecase

import (
	"context"
	"testing"

	"github.com/fadilmartias/hireprep/internal/dto"
	"github.com/fadilmartias/hireprep/internal/model"
	"github.com/fadilmartias/hireprep/internal/prompt"
	"github.com/fadilmartias/hireprep/internal/testutil"
	"github.com/fadilmartias/hireprep/internal/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptUsecase_EnsureDefaultsIsIdempotent(t *testing.T) {
	store := &testutil.PromptStore{}
	uc := NewPromptUsecase(store)

	require.NoError(t, uc.EnsureDefaults(context.Background()))
	require.NoError(t, uc.EnsureDefaults(context.Background()))
	assert.Len(t, store.Items, len(prompt.Defaults))
}

func TestPromptUsecase_CreateUpdateVersions(t *testing.T) {
	ctx := context.Background()
	store := &testutil.PromptStore{}
	uc := NewPromptUsecase(store)

	v1, err := uc.Create(ctx, &dto.CreatePromptRequest{Key: "intro", Language: "en", Content: "Hello {name}"})
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.Nil(t, v1.ParentVersionID)

	_, err = uc.Create(ctx, &dto.CreatePromptRequest{Key: "intro", Language: "en", Content: "dup"})
	requireKind(t, err, util.KindConflict)

	v2, err := uc.Update(ctx, v1.ID.String(), &dto.UpdatePromptRequest{Content: "Hi {name}"})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	require.NotNil(t, v2.ParentVersionID)
	assert.Equal(t, v1.ID, *v2.ParentVersionID)

	// updating through an old version still appends after the newest one
	v3, err := uc.Update(ctx, v1.ID.String(), &dto.UpdatePromptRequest{Content: "Hey {name}"})
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)
	assert.Equal(t, v2.ID, *v3.ParentVersionID)

	versions, err := uc.Versions(ctx, v2.ID.String())
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{versions[0].Version, versions[1].Version, versions[2].Version})

	old, err := uc.Get(ctx, v1.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Hello {name}", old.Content)
}

func TestPromptUsecase_RejectsBrokenTemplates(t *testing.T) {
	uc := NewPromptUsecase(&testutil.PromptStore{})

	_, err := uc.Create(context.Background(), &dto.CreatePromptRequest{Key: "k", Language: "en", Content: "oops {name"})
	appErr := requireKind(t, err, util.KindValidation)
	assert.Contains(t, appErr.Details, "content")

	_, err = uc.Create(context.Background(), &dto.CreatePromptRequest{Key: "", Language: "english", Content: "x"})
	appErr = requireKind(t, err, util.KindValidation)
	assert.Contains(t, appErr.Details, "key")
	assert.Contains(t, appErr.Details, "language")
}

func TestPromptUsecase_ListShowsLatestOnly(t *testing.T) {
	ctx := context.Background()
	store := &testutil.PromptStore{}
	uc := NewPromptUsecase(store)

	a, err := uc.Create(ctx, &dto.CreatePromptRequest{Key: "a", Language: "en", Content: "a1"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, a.ID.String(), &dto.UpdatePromptRequest{Content: "a2"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, &dto.CreatePromptRequest{Key: "b", Language: "en", Content: "b1"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, &dto.CreatePromptRequest{Key: "b", Language: "de", Content: "b1 de"})
	require.NoError(t, err)

	items, page, err := uc.List(ctx, dto.PromptListQuery{Page: 1, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a2", items[0].Content)
	assert.Equal(t, int64(3), page.TotalItems)
	assert.True(t, page.HasMore)

	items, _, err = uc.List(ctx, dto.PromptListQuery{Language: "de"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b1 de", items[0].Content)
}

func TestPromptUsecase_DeleteRemovesChain(t *testing.T) {
	ctx := context.Background()
	store := &testutil.PromptStore{}
	uc := NewPromptUsecase(store)

	v1, err := uc.Create(ctx, &dto.CreatePromptRequest{Key: "k", Language: "en", Content: "1"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, v1.ID.String(), &dto.UpdatePromptRequest{Content: "2"})
	require.NoError(t, err)
	keep, err := uc.Create(ctx, &dto.CreatePromptRequest{Key: "k", Language: "de", Content: "de"})
	require.NoError(t, err)

	n, err := uc.Delete(ctx, v1.ID.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = uc.Get(ctx, v1.ID.String())
	requireKind(t, err, util.KindNotFound)
	_, err = uc.Get(ctx, keep.ID.String())
	assert.NoError(t, err)

	_, err = uc.Delete(ctx, uuid.NewString())
	requireKind(t, err, util.KindNotFound)
	_, err = uc.Get(ctx, "bad")
	requireKind(t, err, util.KindValidation)
}

// stalePrompts reports an outdated latest version, like a reader that lost a race with another update.
type stalePrompts struct {
	*testutil.PromptStore
	latest model.PromptTemplate
}

func (s *stalePrompts) FindLatest(context.Context, string, string) (*model.PromptTemplate, error) {
	p := s.latest
	return &p, nil
}

func TestPromptUsecase_ConcurrentUpdateIsConflict(t *testing.T) {
	ctx := context.Background()
	store := &testutil.PromptStore{}
	uc := NewPromptUsecase(store)

	v1, err := uc.Create(ctx, &dto.CreatePromptRequest{Key: "intro", Language: "en", Content: "Hello {name}"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, v1.ID.String(), &dto.UpdatePromptRequest{Content: "Hi {name}"})
	require.NoError(t, err)

	racing := NewPromptUsecase(&stalePrompts{PromptStore: store, latest: *v1})
	_, err = racing.Update(ctx, v1.ID.String(), &dto.UpdatePromptRequest{Content: "Hey {name}"})
	requireKind(t, err, util.KindConflict)
	assert.Len(t, store.Items, 2)
}
