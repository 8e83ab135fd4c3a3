package service

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

// circuitBreaker opens after threshold consecutive failures. Once cooldown has passed it goes
// half-open and lets a single trial call through; that call's outcome closes or reopens it.
type circuitBreaker struct {
	name      string
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu         sync.Mutex
	failures   int
	openUntil  time.Time
	trialSince time.Time
}

func newCircuitBreaker(name string, threshold int, cooldown time.Duration) *circuitBreaker {
	return &circuitBreaker{name: name, threshold: threshold, cooldown: cooldown, now: time.Now}
}

func (b *circuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.threshold {
		return nil
	}

	now := b.now()
	if now.Before(b.openUntil) {
		return fmt.Errorf("%w: %s failed %d times in a row, retry after %s",
			ErrCircuitOpen, b.name, b.failures, b.openUntil.Sub(now).Round(time.Second))
	}
	// a trial that never reported back is abandoned after one more cooldown
	if !b.trialSince.IsZero() && now.Sub(b.trialSince) < b.cooldown {
		return fmt.Errorf("%w: %s trial call in flight", ErrCircuitOpen, b.name)
	}
	b.trialSince = now
	log.Printf("Circuit breaker %s half-open, sending trial call", b.name)
	return nil
}

func (b *circuitBreaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures >= b.threshold {
		log.Printf("Circuit breaker %s closed", b.name)
	}
	b.failures = 0
	b.openUntil = time.Time{}
	b.trialSince = time.Time{}
}

func (b *circuitBreaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.trialSince = time.Time{}
	if b.failures >= b.threshold {
		b.openUntil = b.now().Add(b.cooldown)
		if b.failures == b.threshold {
			log.Printf("Circuit breaker %s opened for %s", b.name, b.cooldown)
		}
	}
}
