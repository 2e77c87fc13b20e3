package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storepulse/internal/domain"
	"storepulse/internal/errors"
	"storepulse/internal/infrastructure/mysql"
)

const recordColumns = `i.id, i.product_id, i.current_stock, i.reserved_stock, i.reorder_level,
	i.reorder_quantity, i.max_stock, i.location, i.warehouse, i.is_low_stock,
	i.last_restock_date, i.created_at, i.updated_at`

const itemQuery = `SELECT ` + recordColumns + `, p.sku, p.name, p.price
	FROM inventory i
	JOIN products p ON p.id = i.product_id`

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Insert(ctx context.Context, tx mysql.DBTX, rec domain.InventoryRecord) error {
	query := `
		INSERT INTO inventory (id, product_id, current_stock, reserved_stock, reorder_level,
		                       reorder_quantity, max_stock, location, warehouse, is_low_stock,
		                       last_restock_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query,
		rec.ID, rec.ProductID, rec.CurrentStock, rec.ReservedStock, rec.ReorderLevel,
		rec.ReorderQuantity, rec.MaxStock, rec.Location, rec.Warehouse, rec.IsLowStock,
		rec.LastRestockDate, rec.CreatedAt, rec.UpdatedAt,
	)
	if mysql.IsDuplicateEntry(err) {
		return errors.NewConflictError(fmt.Sprintf("inventory for product %s already exists", rec.ProductID))
	}
	if err != nil {
		return fmt.Errorf("inserting inventory: %w", err)
	}
	return nil
}

// FindByProductIDForUpdate locks the inventory row until tx ends.
func (r *MySQLRepository) FindByProductIDForUpdate(ctx context.Context, tx mysql.DBTX, productID string) (*domain.InventoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM inventory i WHERE i.product_id = ? FOR UPDATE`

	rec, err := scanRecord(tx.QueryRowContext(ctx, query, productID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("inventory for product %s not found", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("locking inventory row: %w", err)
	}
	return rec, nil
}

func (r *MySQLRepository) Update(ctx context.Context, tx mysql.DBTX, rec domain.InventoryRecord) error {
	query := `
		UPDATE inventory
		SET current_stock = ?, reserved_stock = ?, reorder_level = ?, reorder_quantity = ?,
		    max_stock = ?, location = ?, warehouse = ?, is_low_stock = ?,
		    last_restock_date = ?, updated_at = ?
		WHERE id = ?`

	result, err := tx.ExecContext(ctx, query,
		rec.CurrentStock, rec.ReservedStock, rec.ReorderLevel, rec.ReorderQuantity,
		rec.MaxStock, rec.Location, rec.Warehouse, rec.IsLowStock,
		rec.LastRestockDate, rec.UpdatedAt, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("updating inventory: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("inventory %s not found", rec.ID))
	}
	return nil
}

func (r *MySQLRepository) FindByProductID(ctx context.Context, productID string) (*domain.InventoryItem, error) {
	item, err := scanItem(r.db.QueryRowContext(ctx, itemQuery+` WHERE i.product_id = ?`, productID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("inventory for product %s not found", productID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying inventory by product id: %w", err)
	}
	return item, nil
}

func (r *MySQLRepository) ListItems(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.queryItems(ctx, itemQuery+` ORDER BY p.name ASC, i.id ASC`)
}

func (r *MySQLRepository) ListLowStock(ctx context.Context) ([]domain.InventoryItem, error) {
	return r.queryItems(ctx, itemQuery+` WHERE i.is_low_stock = 1 ORDER BY i.current_stock ASC, p.name ASC`)
}

func (r *MySQLRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying inventory: %w", err)
	}
	defer rows.Close()

	items := []domain.InventoryItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inventory row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating inventory rows: %w", err)
	}
	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func recordDest(rec *domain.InventoryRecord) []any {
	return []any{
		&rec.ID, &rec.ProductID, &rec.CurrentStock, &rec.ReservedStock, &rec.ReorderLevel,
		&rec.ReorderQuantity, &rec.MaxStock, &rec.Location, &rec.Warehouse, &rec.IsLowStock,
		&rec.LastRestockDate, &rec.CreatedAt, &rec.UpdatedAt,
	}
}

func scanRecord(row rowScanner) (*domain.InventoryRecord, error) {
	var rec domain.InventoryRecord
	if err := row.Scan(recordDest(&rec)...); err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanItem(row rowScanner) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	dest := append(recordDest(&item.Record), &item.SKU, &item.ProductName, &item.Price)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &item, nil
}
