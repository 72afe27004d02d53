package util

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrRetriesExhausted is returned when every attempt failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrMaxElapsed is returned when the elapsed-time ceiling was hit before
	// the next attempt could start.
	ErrMaxElapsed = errors.New("max elapsed time exceeded")
)

// Backoff configures RetryWithBackoff. The zero value makes a single attempt.
type Backoff struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// MaxElapsed is measured from the start of the first attempt and checked
	// before every retry. Zero disables the ceiling.
	MaxElapsed time.Duration

	// Sleep and Now default to a context-aware timer and time.Now.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// Delay returns the wait before the given retry (1-indexed): 2s, 4s, 8s, ...
func (b Backoff) Delay(retry int) time.Duration {
	return time.Duration(1<<retry) * time.Second
}

// RetryWithBackoff calls fn up to MaxRetries+1 times with exponential backoff.
// fn receives the current attempt number (0-indexed). It should return nil on success.
// If the context is cancelled, RetryWithBackoff returns the context error immediately.
func RetryWithBackoff(ctx context.Context, b Backoff, fn func(attempt int) error) error {
	sleep := b.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	now := b.Now
	if now == nil {
		now = time.Now
	}

	start := now()
	var lastErr error
	for attempt := 0; attempt <= b.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := b.Delay(attempt)
			slog.Debug("Retrying after backoff", "attempt", attempt+1, "delay", delay, "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return err
			}
			if b.MaxElapsed > 0 && now().Sub(start) > b.MaxElapsed {
				return fmt.Errorf("%w (%v) after %d attempts: %w", ErrMaxElapsed, b.MaxElapsed, attempt, lastErr)
			}
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		// Check context before sleeping
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, b.MaxRetries+1, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
