package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"storepulse/internal/domain"
	"storepulse/internal/errors"
	"storepulse/internal/infrastructure/mysql"
)

const productColumns = `id, sku, name, description, price, cost_price, category, subcategory,
	brand, tags, image_url, is_active, created_at, updated_at`

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Insert(ctx context.Context, tx mysql.DBTX, p domain.Product) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, query,
		p.ID, p.SKU, p.Name, p.Description, p.Price, decimal.NullDecimal{Decimal: deref(p.CostPrice), Valid: p.CostPrice != nil},
		p.Category, p.Subcategory, p.Brand, tags, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if mysql.IsDuplicateEntry(err) {
		return errors.NewConflictError(fmt.Sprintf("product with sku %s already exists", p.SKU))
	}
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}
	return p, nil
}

func (r *MySQLRepository) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int, error) {
	var (
		where []string
		args  []interface{}
	)
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	if f.ActiveOnly {
		where = append(where, "is_active = 1")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + clause + ` ORDER BY name ASC, id ASC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, total, nil
}

func (r *MySQLRepository) Deactivate(ctx context.Context, tx mysql.DBTX, id string) error {
	result, err := tx.ExecContext(ctx, `UPDATE products SET is_active = 0, updated_at = UTC_TIMESTAMP(6) WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivating product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	// MySQL reports 0 affected rows when the product was already inactive.
	if rowsAffected == 0 {
		var exists bool
		err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, id).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking product existence: %w", err)
		}
		if !exists {
			return errors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
		}
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		p           domain.Product
		description sql.NullString
		costPrice   decimal.NullDecimal
		tags        []byte
	)
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &description, &p.Price, &costPrice,
		&p.Category, &p.Subcategory, &p.Brand, &tags, &p.ImageURL,
		&p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Description = description.String
	if costPrice.Valid {
		cp := costPrice.Decimal
		p.CostPrice = &cp
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags: %w", err)
		}
	}
	return &p, nil
}

func deref(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
