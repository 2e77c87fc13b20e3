package mysql

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "storepulse/internal/errors"
)

func TestRead_ReturnsValue(t *testing.T) {
	v, err := Read(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestRead_AppliesDeadline(t *testing.T) {
	start := time.Now()
	_, err := Read(context.Background(), 50*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	assert.Less(t, time.Since(start), 2*time.Second)
	ue, ok := apperrors.IsUnavailableError(err)
	require.True(t, ok)
	assert.ErrorIs(t, ue, context.DeadlineExceeded)
}

func TestRead_TransientFailureIsUnavailable(t *testing.T) {
	_, err := Read(context.Background(), time.Second, func(ctx context.Context) ([]string, error) {
		return nil, fmt.Errorf("querying sales: %w", driver.ErrBadConn)
	})

	_, ok := apperrors.IsUnavailableError(err)
	assert.True(t, ok)
}

func TestRead_KeepsApplicationErrors(t *testing.T) {
	_, err := Read(context.Background(), time.Second, func(ctx context.Context) (*struct{}, error) {
		return nil, apperrors.NewNotFoundError("sale not found")
	})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestRead_ZeroTimeoutKeepsContext(t *testing.T) {
	hasDeadline, err := Read(context.Background(), 0, func(ctx context.Context) (bool, error) {
		_, has := ctx.Deadline()
		return has, nil
	})
	require.NoError(t, err)
	assert.False(t, hasDeadline)
}
