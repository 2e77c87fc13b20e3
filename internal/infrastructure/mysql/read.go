package mysql

import (
	"context"
	"time"

	apperrors "storepulse/internal/errors"
)

// Read runs a lock-free query under its own deadline. Transient failures,
// including the deadline itself, come back as an UnavailableError so the
// caller answers 503 instead of 500.
func Read[T any](ctx context.Context, timeout time.Duration, query func(ctx context.Context) (T, error)) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	v, err := query(ctx)
	if err != nil && IsTransient(err) {
		var zero T
		return zero, apperrors.NewUnavailableError("store unavailable", err)
	}
	return v, err
}
