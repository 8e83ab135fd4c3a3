package service

import "context"

type AIRequest struct {
	// empty means the provider's configured default
	Model        string
	SystemPrompt string
	Prompt       string
}

type AIResult struct {
	Text         string
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
}

type AIProvider interface {
	Name() string
	Generate(ctx context.Context, req AIRequest) (*AIResult, error)
}

// Embedder is implemented by providers that can also produce embeddings.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
