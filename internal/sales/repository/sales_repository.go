package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"storepulse/internal/domain"
	"storepulse/internal/errors"
	"storepulse/internal/infrastructure/mysql"
)

const saleQuery = `
	SELECT s.id, s.product_id, COALESCE(p.name, ''), s.quantity, s.unit_price, s.total_amount,
	       s.customer_id, s.customer_email, s.status, s.payment_method, s.channel,
	       s.sale_date, s.created_at
	FROM sales s
	LEFT JOIN products p ON p.id = s.product_id`

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) Insert(ctx context.Context, tx mysql.DBTX, s domain.Sale) error {
	query := `
		INSERT INTO sales (id, product_id, quantity, unit_price, total_amount, customer_id,
		                   customer_email, status, payment_method, channel, sale_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := tx.ExecContext(ctx, query,
		s.ID, s.ProductID, s.Quantity, s.UnitPrice, s.TotalAmount, s.CustomerID,
		s.CustomerEmail, s.Status, s.PaymentMethod, s.Channel, s.SaleDate, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting sale: %w", err)
	}
	return nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	sale, err := scanSale(r.db.QueryRowContext(ctx, saleQuery+` WHERE s.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("sale with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying sale by id: %w", err)
	}
	return sale, nil
}

func (r *MySQLRepository) List(ctx context.Context, offset, limit int) ([]domain.Sale, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sales`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting sales: %w", err)
	}

	sales, err := r.query(ctx, saleQuery+` ORDER BY s.sale_date DESC, s.id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// FindBetween returns the sales in [start, end] ordered by sale date then id.
func (r *MySQLRepository) FindBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	return r.query(ctx, saleQuery+` WHERE s.sale_date BETWEEN ? AND ? ORDER BY s.sale_date ASC, s.id ASC`,
		start.UTC(), end.UTC())
}

// SumRevenue totals the sales in the half-open range [from, to).
func (r *MySQLRepository) SumRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(total_amount) FROM sales WHERE sale_date >= ? AND sale_date < ?`,
		from.UTC(), to.UTC(),
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing revenue: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// DailyTotals groups the sales in [from, to] by UTC calendar day. The
// connection runs with time_zone '+00:00' so DATE() is the UTC day.
func (r *MySQLRepository) DailyTotals(ctx context.Context, from, to time.Time) ([]domain.DailySales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DATE_FORMAT(sale_date, '%Y-%m-%d') AS day, COUNT(*), SUM(total_amount)
		FROM sales
		WHERE sale_date BETWEEN ? AND ?
		GROUP BY day
		ORDER BY day ASC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying daily sales: %w", err)
	}
	defer rows.Close()

	out := []domain.DailySales{}
	for rows.Next() {
		var d domain.DailySales
		if err := rows.Scan(&d.Date, &d.Sales, &d.Revenue); err != nil {
			return nil, fmt.Errorf("scanning daily sales row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily sales rows: %w", err)
	}
	return out, nil
}

// RevenueByChannel totals revenue per channel in [from, to]; sales without
// a channel are reported as "unknown".
func (r *MySQLRepository) RevenueByChannel(ctx context.Context, from, to time.Time) ([]domain.ChannelRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(NULLIF(channel, ''), 'unknown') AS ch, SUM(total_amount)
		FROM sales
		WHERE sale_date BETWEEN ? AND ?
		GROUP BY ch`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying revenue by channel: %w", err)
	}
	defer rows.Close()

	out := []domain.ChannelRevenue{}
	for rows.Next() {
		var c domain.ChannelRevenue
		if err := rows.Scan(&c.Channel, &c.Revenue); err != nil {
			return nil, fmt.Errorf("scanning channel row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating channel rows: %w", err)
	}
	return out, nil
}

func (r *MySQLRepository) query(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sale row: %w", err)
		}
		sales = append(sales, *sale)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sale rows: %w", err)
	}
	return sales, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSale(row rowScanner) (*domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(
		&s.ID, &s.ProductID, &s.ProductName, &s.Quantity, &s.UnitPrice, &s.TotalAmount,
		&s.CustomerID, &s.CustomerEmail, &s.Status, &s.PaymentMethod, &s.Channel,
		&s.SaleDate, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.SaleDate = s.SaleDate.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}
