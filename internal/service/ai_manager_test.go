package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fadilmartias/hireprep/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	result *AIResult
	err    error
	calls  []AIRequest
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(_ context.Context, req AIRequest) (*AIResult, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubEmbedder struct {
	stubProvider
	vec []float32
}

func (s *stubEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return s.vec, nil
}

func TestNewAIManager_OrdersPreferredFirst(t *testing.T) {
	a := &stubProvider{name: ProviderOpenRouter}
	b := &stubProvider{name: ProviderGemini}

	m, err := NewAIManager(ProviderGemini, []AIProvider{a, nil, b}, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{ProviderGemini, ProviderOpenRouter}, m.Providers())
}

func TestNewAIManager_NoProviders(t *testing.T) {
	_, err := NewAIManager(ProviderGemini, []AIProvider{nil}, 0, nil)
	assert.ErrorIs(t, err, ErrNoProvider)
}

func TestAIManager_GeneratePricesResult(t *testing.T) {
	p := &stubProvider{name: ProviderGemini, result: &AIResult{
		Text: `{"score": 80}`, Provider: ProviderGemini, Model: "gemini-2.5-flash",
		InputTokens: 1_000_000, OutputTokens: 1_000_000,
	}}
	met := metrics.New()
	m, err := NewAIManager(ProviderGemini, []AIProvider{p}, 0, met)
	require.NoError(t, err)

	res, err := m.Generate(context.Background(), AIRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.True(t, res.CostKnown)
	assert.InDelta(t, 2.80, res.Cost, 1e-9)
	assert.Equal(t, float64(1), testutil.ToFloat64(met.AIRequests.WithLabelValues(ProviderGemini, "ok")))
}

func TestAIManager_FallsBackAndDropsPinnedModel(t *testing.T) {
	primary := &stubProvider{name: ProviderGemini, err: errors.New("quota")}
	fallback := &stubProvider{name: ProviderOpenRouter, result: &AIResult{Text: "{}", Model: "some/unpriced-model"}}
	met := metrics.New()
	m, err := NewAIManager(ProviderGemini, []AIProvider{fallback, primary}, 100, met)
	require.NoError(t, err)

	res, err := m.Generate(context.Background(), AIRequest{Model: "gemini-2.5-pro", Prompt: "hi"})
	require.NoError(t, err)
	assert.False(t, res.CostKnown)
	assert.Zero(t, res.Cost)

	require.Len(t, primary.calls, 1)
	assert.Equal(t, "gemini-2.5-pro", primary.calls[0].Model)
	require.Len(t, fallback.calls, 1)
	assert.Empty(t, fallback.calls[0].Model)
	assert.Equal(t, float64(1), testutil.ToFloat64(met.AIRequests.WithLabelValues(ProviderGemini, "error")))
}

func TestAIManager_AllFail(t *testing.T) {
	boom := errors.New("boom")
	m, err := NewAIManager(ProviderGemini, []AIProvider{
		&stubProvider{name: ProviderGemini, err: boom},
		&stubProvider{name: ProviderOpenRouter, err: errors.New("down")},
	}, 0, nil)
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), AIRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "openrouter: down")
}

func TestAIManager_GenerateEmbeddingSkipsNonEmbedders(t *testing.T) {
	plain := &stubProvider{name: ProviderOpenRouter}
	emb := &stubEmbedder{stubProvider: stubProvider{name: ProviderGemini}, vec: []float32{1, 2}}
	m, err := NewAIManager(ProviderOpenRouter, []AIProvider{plain, emb}, 0, nil)
	require.NoError(t, err)

	vec, err := m.GenerateEmbedding(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)

	m, err = NewAIManager(ProviderOpenRouter, []AIProvider{plain}, 0, nil)
	require.NoError(t, err)
	_, err = m.GenerateEmbedding(context.Background(), "text")
	assert.Error(t, err)
}
