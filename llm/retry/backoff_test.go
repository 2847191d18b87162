package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/orgflow/llm"
	"github.com/BaSui01/orgflow/types"
)

func fastPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:   maxRetries,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
		ShouldRetry:  func(error) bool { return true },
	}
}

func TestRetryer_Success(t *testing.T) {
	r := New(fastPolicy(3), zap.NewNop())

	callCount := 0
	err := r.Do(context.Background(), func(context.Context) error {
		callCount++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount, "应该只调用一次")
}

func TestRetryer_RetryAndSuccess(t *testing.T) {
	r := New(fastPolicy(3), zap.NewNop())

	callCount := 0
	val, err := Do(context.Background(), r, func(context.Context) (string, error) {
		callCount++
		if callCount < 3 {
			return "", errors.New("temporary error")
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "done", val)
	assert.Equal(t, 3, callCount, "应该调用三次")
}

func TestRetryer_MaxRetriesExceeded(t *testing.T) {
	r := New(fastPolicy(2), zap.NewNop())
	testErr := errors.New("persistent error")

	callCount := 0
	err := r.Do(context.Background(), func(context.Context) error {
		callCount++
		return testErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, testErr)
	assert.Contains(t, err.Error(), "重试 2 次后仍失败")
	assert.Equal(t, 3, callCount, "应该调用三次（初始+2次重试）")
}

func TestRetryer_ContextCanceled(t *testing.T) {
	policy := fastPolicy(5)
	policy.InitialDelay = 100 * time.Millisecond
	policy.MaxDelay = time.Second
	r := New(policy, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	callCount := 0
	err := r.Do(ctx, func(context.Context) error {
		callCount++
		return errors.New("error")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "重试被取消")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, callCount)
}

func TestRetryer_DefaultPredicate(t *testing.T) {
	policy := fastPolicy(3)
	policy.ShouldRetry = nil
	r := New(policy, zap.NewNop())

	t.Run("retryable llm error", func(t *testing.T) {
		callCount := 0
		err := r.Do(context.Background(), func(context.Context) error {
			callCount++
			if callCount < 2 {
				return &llm.Error{Code: llm.ErrRateLimited, Retryable: true}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, callCount)
	})

	t.Run("non-retryable llm error", func(t *testing.T) {
		callCount := 0
		err := r.Do(context.Background(), func(context.Context) error {
			callCount++
			return &llm.Error{Code: llm.ErrUnauthorized}
		})
		assert.Error(t, err)
		assert.Equal(t, 1, callCount, "不应该重试")
	})
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("x"), false},
		{"canceled", context.Canceled, false},
		{"llm retryable", &llm.Error{Code: llm.ErrUpstreamError, Retryable: true}, true},
		{"wrapped llm retryable", fmt.Errorf("call: %w", &llm.Error{Retryable: true}), true},
		{"llm permanent", &llm.Error{Code: llm.ErrForbidden}, false},
		{"types retryable", types.NewError(types.ErrUpstreamError, "x").WithRetryable(true), true},
		{"types permanent", types.NewError(types.ErrInvalidInput, "x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestRetryer_DelayCalculation(t *testing.T) {
	r := New(Policy{
		MaxRetries:   5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
	}, nil)

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 100 * time.Millisecond}, // 初始延迟
		{2, 200 * time.Millisecond}, // 100 * 2^1
		{3, 400 * time.Millisecond}, // 100 * 2^2
		{4, 800 * time.Millisecond}, // 100 * 2^3
		{5, 1 * time.Second},        // 达到最大延迟
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			assert.Equal(t, tt.expected, r.delay(tt.attempt))
		})
	}
}

func TestRetryer_JitterBounds(t *testing.T) {
	r := New(Policy{
		MaxRetries:   3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}, nil)

	for i := 0; i < 50; i++ {
		d := r.delay(2)
		assert.GreaterOrEqual(t, d, 150*time.Millisecond)
		assert.LessOrEqual(t, d, 250*time.Millisecond)
	}
}

func TestRetryer_OnRetryCallback(t *testing.T) {
	callbackCount := 0
	var lastAttempt int
	var lastErr error

	policy := fastPolicy(2)
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		callbackCount++
		lastAttempt = attempt
		lastErr = err
	}
	r := New(policy, zap.NewNop())

	testErr := errors.New("test error")
	callCount := 0
	_ = r.Do(context.Background(), func(context.Context) error {
		callCount++
		if callCount < 3 {
			return testErr
		}
		return nil
	})

	assert.Equal(t, 2, callbackCount, "回调应该被调用两次")
	assert.Equal(t, 2, lastAttempt)
	assert.Equal(t, testErr, lastErr)
}

func TestNew_NormalizesPolicy(t *testing.T) {
	r := New(Policy{MaxRetries: -1, Multiplier: 0.5}, nil)
	def := DefaultPolicy()
	assert.Equal(t, 0, r.policy.MaxRetries)
	assert.Equal(t, def.InitialDelay, r.policy.InitialDelay)
	assert.Equal(t, def.MaxDelay, r.policy.MaxDelay)
	assert.Equal(t, def.Multiplier, r.policy.Multiplier)
	assert.NotNil(t, r.policy.ShouldRetry)
}
