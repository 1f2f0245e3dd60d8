package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cloo-solutions/hirelens/internal/domain"
	"github.com/cloo-solutions/hirelens/internal/llm"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errorKind
	}{
		{"429 status", &llm.ProviderError{StatusCode: http.StatusTooManyRequests}, kindTransient},
		{"503 status", &llm.ProviderError{StatusCode: http.StatusServiceUnavailable}, kindTransient},
		{"wrapped 503", fmt.Errorf("call: %w", &llm.ProviderError{StatusCode: http.StatusServiceUnavailable}), kindTransient},
		{"resource exhausted text", errors.New("rpc error: RESOURCE_EXHAUSTED"), kindTransient},
		{"rate limit text", errors.New("Rate limit reached for requests"), kindTransient},
		{"bare 429 in message", errors.New("upstream said 429"), kindTransient},
		{"malformed", &MalformedResponseError{Err: errors.New("unexpected end of JSON input")}, kindMalformed},
		{"empty response", llm.ErrEmptyResponse, kindMalformed},
		{"not configured", domain.ErrProviderNotConfigured, kindFatal},
		{"bad request", &llm.ProviderError{StatusCode: http.StatusBadRequest, Message: "invalid argument"}, kindFatal},
		{"canceled", context.Canceled, kindFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.err))
		})
	}
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 4*time.Second, p.Backoff(2))
	assert.Equal(t, 8*time.Second, p.Backoff(3))
	assert.Equal(t, 2*time.Second, p.Backoff(0))

	p = RetryPolicy{}.withDefaults()
	assert.Equal(t, DefaultMaxAttempts, p.MaxAttempts)
	assert.Equal(t, DefaultBackoffBase, p.BackoffBase)
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	rec := &sleepRecorder{}
	r := retrier{policy: DefaultRetryPolicy(), sleep: rec.sleep, logger: zap.NewNop()}

	calls := 0
	out, err := do(context.Background(), r, "test", func(context.Context, int) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, calls)
	assert.Empty(t, rec.delays)
}

func TestDo_MixedKindsOnlyBackOffOnTransient(t *testing.T) {
	rec := &sleepRecorder{}
	r := retrier{policy: DefaultRetryPolicy(), sleep: rec.sleep, logger: zap.NewNop()}

	errs := []error{
		&MalformedResponseError{Err: errors.New("truncated")},
		&llm.ProviderError{StatusCode: http.StatusTooManyRequests},
		&MalformedResponseError{Err: errors.New("truncated")},
	}
	var attempts []int
	out, err := do(context.Background(), r, "test", func(_ context.Context, attempt int) (int, error) {
		attempts = append(attempts, attempt)
		if attempt <= len(errs) {
			return 0, errs[attempt-1]
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, []int{1, 2, 3, 4}, attempts)
	assert.Equal(t, []time.Duration{4 * time.Second}, rec.delays)
}

func TestDo_LastKindDecidesExhaustionError(t *testing.T) {
	r := retrier{policy: RetryPolicy{MaxAttempts: 2, BackoffBase: time.Millisecond}, sleep: (&sleepRecorder{}).sleep, logger: zap.NewNop()}

	_, err := do(context.Background(), r, "test", func(_ context.Context, attempt int) (int, error) {
		if attempt == 1 {
			return 0, &llm.ProviderError{StatusCode: http.StatusServiceUnavailable}
		}
		return 0, llm.ErrEmptyResponse
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrProviderOverloaded)
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestDo_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := retrier{policy: DefaultRetryPolicy(), sleep: contextSleep, logger: zap.NewNop()}

	calls := 0
	_, err := do(ctx, r, "test", func(context.Context, int) (int, error) {
		calls++
		return 0, &llm.ProviderError{StatusCode: http.StatusTooManyRequests}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
