package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/llm"
)

const (
	DefaultMaxAttempts = 4
	DefaultBackoffBase = 2 * time.Second
)

// RetryPolicy bounds provider calls. Attempts counts every call, the first included.
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, BackoffBase: DefaultBackoffBase}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BackoffBase <= 0 {
		p.BackoffBase = DefaultBackoffBase
	}
	return p
}

// Backoff is the wait after the given failed attempt (1-based): base·2^(attempt-1).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BackoffBase << (attempt - 1)
}

// errorKind drives the retry state machine.
type errorKind int

const (
	kindFatal errorKind = iota
	kindTransient
	kindMalformed
)

func (k errorKind) String() string {
	switch k {
	case kindTransient:
		return "transient"
	case kindMalformed:
		return "malformed"
	}
	return "fatal"
}

// MalformedResponseError marks provider output that could not be decoded.
type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.Err.Error()
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// transientMarkers are matched against provider error text. Any message
// carrying "429" or "503" counts, even when the number is unrelated; this holds
// only while the messages come from the provider SDK.
var transientMarkers = []string{"resource_exhausted", "rate limit", "overloaded", "429", "503"}

func classify(err error) errorKind {
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) || errors.Is(err, llm.ErrEmptyResponse) {
		return kindMalformed
	}
	if errors.Is(err, domain.ErrProviderNotConfigured) {
		return kindFatal
	}

	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		if pe.StatusCode == http.StatusTooManyRequests || pe.StatusCode == http.StatusServiceUnavailable {
			return kindTransient
		}
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMarkers {
		if strings.Contains(msg, m) {
			return kindTransient
		}
	}
	return kindFatal
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// retrier runs one provider call under a RetryPolicy.
type retrier struct {
	policy RetryPolicy
	sleep  Sleeper
	logger *zap.Logger
}

// do calls fn until it succeeds, a fatal error occurs, or attempts run out.
// Transient failures back off exponentially; malformed output retries at once.
// Exhausted transient failures become domain.ErrProviderOverloaded and other
// exhaustion a "failed to evaluate candidate" error carrying the last cause.
func do[T any](ctx context.Context, r retrier, op string, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	policy := r.policy.withDefaults()

	var lastErr error
	var lastKind errorKind
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		out, err := fn(ctx, attempt)
		if err == nil {
			return out, nil
		}
		lastErr, lastKind = err, classify(err)

		if lastKind == kindFatal {
			return zero, err
		}

		r.logger.Warn("provider call failed",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Stringer("kind", lastKind),
			zap.Error(err),
		)

		if attempt == policy.MaxAttempts {
			break
		}
		if lastKind == kindTransient {
			if err := r.sleep(ctx, policy.Backoff(attempt)); err != nil {
				return zero, fmt.Errorf("retry wait: %w", err)
			}
		}
	}

	if lastKind == kindTransient {
		return zero, domain.NewDomainErrorWithCause(domain.ErrCodeProviderOverloaded, domain.ErrProviderOverloaded.Message, lastErr)
	}
	return zero, domain.NewEvaluationFailedError(lastErr)
}
