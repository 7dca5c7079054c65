package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/service"
)

func fastRetry() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry_SucceedsAfterBusy(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("insert: %w", ErrStoreBusy)
		}
		return nil
	}, fastRetry())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	permanent := errors.New("constraint failed")
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return permanent
	}, fastRetry())

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return &RetryableError{Err: errors.New("locked"), Retryable: true}
	}, fastRetry())

	require.ErrorIs(t, err, ErrMaxRetries)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return ErrStoreBusy
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Second})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrStoreBusy))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(ErrNotFound))
}

func TestUserError(t *testing.T) {
	err := NewUserError("could not save", ErrDuplicateName)
	assert.Equal(t, "could not save: name already exists", err.Error())
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())
}
