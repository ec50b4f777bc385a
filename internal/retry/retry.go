// Package retry provides bounded retries with exponential backoff and jitter
// for outbound API calls.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Config controls retry behavior.
type Config struct {
	// Attempts is the total number of tries including the first. A value of
	// 1 disables retries. Default: 3.
	Attempts int

	// BaseDelay is the backoff before the first retry, doubled each attempt
	// with up to 25% jitter either way. Default: 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff. Default: 10s.
	MaxDelay time.Duration
}

// Default returns the retry configuration used for Google API calls.
func Default() Config {
	return Config{Attempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}
}

func (c Config) withDefaults() Config {
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 10 * time.Second
	}
	return c
}

// Do runs fn up to cfg.Attempts times, sleeping between tries. Only errors
// marked transient (see Transient) are retried; context cancellation stops
// retries immediately.
func Do[T any](ctx context.Context, cfg Config, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !IsTransient(err) || attempt == cfg.Attempts-1 {
			break
		}

		zap.L().Warn("retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func backoff(attempt int, cfg Config) time.Duration {
	d := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	if d > float64(cfg.MaxDelay) {
		d = float64(cfg.MaxDelay)
	}
	// Up to 25% jitter either direction.
	d += d * 0.25 * (rand.Float64()*2 - 1)
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// transientError marks an error as safe to retry.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so Do will retry it. A nil err returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// TransientStatus reports whether an HTTP status is worth retrying.
func TransientStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	}
	return false
}

// IsTransient reports whether err was marked with Transient or is a
// network-level failure that usually clears on its own.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *transientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED)
}
