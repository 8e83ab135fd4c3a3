package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestBreaker(clock *fakeClock) *circuitBreaker {
	b := newCircuitBreaker("test", 3, 30*time.Second)
	b.now = clock.Now
	return b
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock)

	for i := 0; i < 2; i++ {
		b.Failure()
		require.NoError(t, b.Allow())
	}
	b.Failure()
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenAfterCooldown(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		b.Failure()
	}
	require.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	clock.t = clock.t.Add(31 * time.Second)
	require.NoError(t, b.Allow(), "one trial call after the cooldown")
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen, "only one trial at a time")

	b.Success()
	assert.NoError(t, b.Allow())
	assert.NoError(t, b.Allow())
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		b.Failure()
	}
	clock.t = clock.t.Add(31 * time.Second)
	require.NoError(t, b.Allow())

	b.Failure()
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)

	clock.t = clock.t.Add(31 * time.Second)
	assert.NoError(t, b.Allow())
}

func TestCircuitBreaker_AbandonedTrialExpires(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := newTestBreaker(clock)
	for i := 0; i < 3; i++ {
		b.Failure()
	}
	clock.t = clock.t.Add(31 * time.Second)
	require.NoError(t, b.Allow())

	clock.t = clock.t.Add(31 * time.Second)
	assert.NoError(t, b.Allow())
}

func TestGeminiService_EmbeddingFailuresDoNotBlockGeneration(t *testing.T) {
	s := &GeminiService{
		Model:           "gemini-2.5-flash",
		generateBreaker: newCircuitBreaker("gemini generate", 5, 30*time.Second),
		embedBreaker:    newCircuitBreaker("gemini embed", 5, 30*time.Second),
	}
	for i := 0; i < 5; i++ {
		s.embedBreaker.Failure()
	}

	_, err := s.GenerateEmbedding(context.Background(), "Platform engineer, Go")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.NoError(t, s.generateBreaker.Allow())
}
