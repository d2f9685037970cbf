package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeAPIError struct {
	status int
}

func (e fakeAPIError) Error() string   { return "api error" }
func (e fakeAPIError) StatusCode() int { return e.status }

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(http.StatusTooManyRequests))
	assert.True(t, ShouldRetry(http.StatusServiceUnavailable))
	assert.True(t, ShouldRetry(http.StatusGatewayTimeout))
	assert.False(t, ShouldRetry(http.StatusBadRequest))
	assert.False(t, ShouldRetry(http.StatusOK))
}

func TestWithRetrySucceedsWithoutRetrying(t *testing.T) {
	ctx := context.Background()
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryExhaustsOnPersistentError(t *testing.T) {
	ctx := context.Background()
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, MaxRetries, calls)
}

func TestWithRetrySucceedsAfterTransientError(t *testing.T) {
	ctx := context.Background()
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestWithRetryStopsImmediatelyOnNonRetryableAPIError(t *testing.T) {
	ctx := context.Background()
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return fakeAPIError{status: http.StatusBadRequest}
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryRespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return errors.New("boom")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
