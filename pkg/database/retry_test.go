package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "database is locked", err: errors.New("database is locked"), expected: true},
		{name: "database table is locked", err: errors.New("database table is locked"), expected: true},
		{name: "SQLITE_BUSY", err: errors.New("SQLITE_BUSY"), expected: true},
		{name: "SQLITE_LOCKED", err: errors.New("SQLITE_LOCKED"), expected: true},
		{name: "error code 5", err: errors.New("error (5): database busy"), expected: true},
		{name: "error code 6", err: errors.New("error (6): database locked"), expected: true},
		{name: "unrelated error", err: errors.New("connection refused"), expected: false},
		{name: "constraint violation", err: errors.New("UNIQUE constraint failed: reminders.book_id, reminders.date"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isBusyError(tt.err))
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	t.Parallel()

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 3, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries busy errors until success", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 3, func() error {
			calls++
			if calls < 3 {
				return errors.New("database is locked")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry non-busy errors", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 3, func() error {
			calls++
			return errors.New("UNIQUE constraint failed")
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), 2, func() error {
			calls++
			return errors.New("SQLITE_BUSY")
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		err := retryWithBackoff(ctx, 10, func() error {
			return errors.New("database is locked")
		})
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
