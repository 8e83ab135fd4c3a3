package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/fadilmartias/hireprep/internal/metrics"
	"golang.org/x/time/rate"
)

var ErrNoProvider = errors.New("no AI provider configured")

// AIResponse is a provider result plus its priced cost.
type AIResponse struct {
	AIResult
	Cost      float64
	CostKnown bool
}

// AIManager sends prompts to the preferred provider and falls back to the others in order.
// Every outbound attempt waits on a shared token bucket.
type AIManager struct {
	providers []AIProvider
	limiter   *rate.Limiter
	metrics   *metrics.Metrics
}

// NewAIManager orders providers with the one named preferred first. Nil providers are skipped.
// requestsPerSecond <= 0 disables pacing.
func NewAIManager(preferred string, providers []AIProvider, requestsPerSecond float64, m *metrics.Metrics) (*AIManager, error) {
	var ordered, rest []AIProvider
	for _, p := range providers {
		if p == nil {
			continue
		}
		if p.Name() == preferred {
			ordered = append(ordered, p)
		} else {
			rest = append(rest, p)
		}
	}
	ordered = append(ordered, rest...)
	if len(ordered) == 0 {
		return nil, ErrNoProvider
	}
	if ordered[0].Name() != preferred {
		log.Printf("Warning: AI provider %q not configured, using %s", preferred, ordered[0].Name())
	}

	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &AIManager{
		providers: ordered,
		limiter:   rate.NewLimiter(limit, 1),
		metrics:   m,
	}, nil
}

// Providers returns provider names in the order they are tried.
func (m *AIManager) Providers() []string {
	names := make([]string, len(m.providers))
	for i, p := range m.providers {
		names[i] = p.Name()
	}
	return names
}

func (m *AIManager) Generate(ctx context.Context, req AIRequest) (*AIResponse, error) {
	var errs []error
	for i, p := range m.providers {
		attempt := req
		if i > 0 {
			// a model pinned for the primary means nothing to another provider
			attempt.Model = ""
		}
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for AI rate limit: %w", err)
		}

		res, err := p.Generate(ctx, attempt)
		m.metrics.ObserveAIRequest(p.Name(), err)
		if err != nil {
			log.Printf("AI provider %s failed: %v", p.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		cost, known := CalculateCost(res.Model, res.InputTokens, res.OutputTokens)
		if !known {
			log.Printf("Warning: no price for model %s, cost recorded as 0", res.Model)
		}
		m.metrics.ObserveAICost(res.Model, cost)
		return &AIResponse{AIResult: *res, Cost: cost, CostKnown: known}, nil
	}
	return nil, fmt.Errorf("all AI providers failed: %w", errors.Join(errs...))
}

// GenerateEmbedding uses the first provider able to embed.
func (m *AIManager) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	for _, p := range m.providers {
		e, ok := p.(Embedder)
		if !ok {
			continue
		}
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for AI rate limit: %w", err)
		}
		return e.GenerateEmbedding(ctx, text)
	}
	return nil, fmt.Errorf("no provider supports embeddings")
}
