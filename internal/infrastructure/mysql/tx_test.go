package mysql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	drv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "storepulse/internal/errors"
	"storepulse/internal/infrastructure/mysql"
	"storepulse/internal/testutil"
)

const productID = "0f8e2c4a-6b1d-4e3f-9a7c-5d2b8e1f4a60"

func currentStock(t *testing.T, ctx context.Context, db mysql.DBTX) int {
	t.Helper()
	var stock int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT current_stock FROM inventory WHERE product_id = ?`, productID).Scan(&stock))
	return stock
}

func TestWithinTx_Commits(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.InsertProduct(t, db, productID, "TX-1", "5.00", 10, 2)
	ctx := context.Background()

	txm := mysql.NewTxManager(db, 5*time.Second, 3, zap.NewNop())
	err := txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		_, err := tx.ExecContext(ctx, `UPDATE inventory SET current_stock = 7 WHERE product_id = ?`, productID)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, 7, currentStock(t, ctx, db))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.InsertProduct(t, db, productID, "TX-1", "5.00", 10, 2)
	ctx := context.Background()

	boom := errors.New("boom")
	calls := 0
	txm := mysql.NewTxManager(db, 5*time.Second, 3, zap.NewNop())
	err := txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		calls++
		if _, err := tx.ExecContext(ctx, `UPDATE inventory SET current_stock = 0 WHERE product_id = ?`, productID); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 10, currentStock(t, ctx, db))
}

func TestWithinTx_RetriesTransientFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	testutil.InsertProduct(t, db, productID, "TX-1", "5.00", 10, 2)
	ctx := context.Background()

	calls := 0
	txm := mysql.NewTxManager(db, 5*time.Second, 3, zap.NewNop())
	err := txm.WithinTx(ctx, func(ctx context.Context, tx mysql.DBTX) error {
		calls++
		if _, err := tx.ExecContext(ctx, `UPDATE inventory SET current_stock = current_stock - 1 WHERE product_id = ?`, productID); err != nil {
			return err
		}
		if calls < 3 {
			return &drv.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 9, currentStock(t, ctx, db), "failed attempts must be rolled back")
}

func TestWithinTx_GivesUpAsUnavailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	calls := 0
	txm := mysql.NewTxManager(db, 5*time.Second, 2, zap.NewNop())
	err := txm.WithinTx(context.Background(), func(ctx context.Context, tx mysql.DBTX) error {
		calls++
		return &drv.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}
	})

	_, ok := apperrors.IsUnavailableError(err)
	assert.True(t, ok)
	assert.Equal(t, 2, calls)
}
