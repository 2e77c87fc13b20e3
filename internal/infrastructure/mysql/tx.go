package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	apperrors "storepulse/internal/errors"
	"storepulse/internal/infrastructure/metrics"
)

// TxManager runs a unit of work inside a single transaction, retrying
// deadlocks, lock wait timeouts and dropped connections with backoff.
type TxManager struct {
	db          *sql.DB
	timeout     time.Duration
	maxAttempts int
	baseBackoff time.Duration
	logger      *zap.Logger
}

func NewTxManager(db *sql.DB, timeout time.Duration, maxAttempts int, logger *zap.Logger) *TxManager {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TxManager{
		db:          db,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		baseBackoff: 50 * time.Millisecond,
		logger:      logger,
	}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	var lastErr error
	backoff := m.baseBackoff

	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err := m.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		lastErr = err

		if attempt == m.maxAttempts {
			break
		}

		metrics.TxRetries.Inc()
		jitter := time.Duration(rand.Int63n(int64(backoff/4) + 1))
		m.logger.Warn("transient store failure, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", m.maxAttempts),
			zap.Error(err))

		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return apperrors.NewUnavailableError("store unavailable", ctx.Err())
		}
		backoff *= 2
	}

	return apperrors.NewUnavailableError(
		fmt.Sprintf("store unavailable after %d attempts", m.maxAttempts), lastErr)
}

func (m *TxManager) runOnce(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	txCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	tx, err := m.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback after Commit is a no-op returning sql.ErrTxDone.
	defer tx.Rollback()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
