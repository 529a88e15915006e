package scraper

import (
	"fmt"
	"sync"
	"time"

	"github.com/alexbesp18/aa-streak-optimizer/internal/logger"
)

// rateLimiter spaces out page loads so the target site sees a human-ish pace
type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	delay    time.Duration
}

func newRateLimiter(delayMs int) *rateLimiter {
	return &rateLimiter{delay: time.Duration(delayMs) * time.Millisecond}
}

// Wait blocks until enough time has passed since the last request
func (r *rateLimiter) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastCall)
	if elapsed < r.delay {
		time.Sleep(r.delay - elapsed)
	}
	r.lastCall = time.Now()
}

// retryWithBackoff retries fn up to maxRetries times with quadratic backoff
func retryWithBackoff(maxRetries int, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			logger.Warn("Retrying (attempt %d/%d) after %v...", attempt+1, maxRetries, backoff)
			time.Sleep(backoff)
		}
		if err := fn(); err != nil {
			lastErr = err
			logger.Error("Attempt %d failed: %v", attempt+1, err)
			continue
		}
		return nil
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxRetries, lastErr)
}
