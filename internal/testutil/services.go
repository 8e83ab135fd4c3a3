package testutil

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fadilmartias/hireprep/internal/service"
)

// FakeAI answers every prompt with Response (or Err) and records what it was asked.
type FakeAI struct {
	mu        sync.Mutex
	Response  *service.AIResponse
	Err       error
	Embedding []float32
	EmbedErr  error
	Prompts   []service.AIRequest
	Embedded  []string
}

func NewFakeAI(text string) *FakeAI {
	return &FakeAI{
		Response: &service.AIResponse{
			AIResult: service.AIResult{
				Text:         text,
				Provider:     service.ProviderGemini,
				Model:        "gemini-2.5-flash",
				InputTokens:  1200,
				OutputTokens: 300,
			},
			Cost:      0.00111,
			CostKnown: true,
		},
		Embedding: []float32{0.1, 0.2, 0.3},
	}
}

func (f *FakeAI) Generate(_ context.Context, req service.AIRequest) (*service.AIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Prompts = append(f.Prompts, req)
	if f.Err != nil {
		return nil, f.Err
	}
	res := *f.Response
	return &res, nil
}

func (f *FakeAI) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Embedded = append(f.Embedded, text)
	if f.EmbedErr != nil {
		return nil, f.EmbedErr
	}
	if f.Embedding == nil {
		return nil, errors.New("no embedding configured")
	}
	return f.Embedding, nil
}

func (f *FakeAI) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Prompts) == 0 {
		return ""
	}
	return f.Prompts[len(f.Prompts)-1].Prompt
}

type Upload struct {
	Bucket      string
	OwnerID     string
	Filename    string
	ContentType string
	Size        int
}

type FakeFileStore struct {
	mu      sync.Mutex
	Uploads []Upload
	Err     error
}

func (f *FakeFileStore) Upload(_ context.Context, bucket, ownerID, filename, contentType string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Uploads = append(f.Uploads, Upload{bucket, ownerID, filename, contentType, len(data)})
	return fmt.Sprintf("%s/%d-%s", ownerID, len(f.Uploads), filename), nil
}

type Event struct {
	SessionID string
	Update    map[string]any
}

type FakePublisher struct {
	mu     sync.Mutex
	Events []Event
	Err    error
}

func (f *FakePublisher) PublishSessionUpdate(sessionID string, update map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Events = append(f.Events, Event{SessionID: sessionID, Update: update})
	return nil
}
