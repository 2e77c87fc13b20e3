package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storepulse/internal/domain"
	"storepulse/internal/infrastructure/mysql"
)

// MySQLRepository reads and scrubs customer fields on the sales table.
type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

func (r *MySQLRepository) FindByCustomerEmail(ctx context.Context, email string) ([]domain.Sale, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.product_id, COALESCE(p.name, ''), s.quantity, s.unit_price, s.total_amount,
		       s.customer_id, s.customer_email, s.status, s.payment_method, s.channel,
		       s.sale_date, s.created_at
		FROM sales s
		LEFT JOIN products p ON p.id = s.product_id
		WHERE s.customer_email = ?
		ORDER BY s.sale_date ASC, s.id ASC`, email)
	if err != nil {
		return nil, fmt.Errorf("querying customer sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.Sale{}
	for rows.Next() {
		var s domain.Sale
		err := rows.Scan(
			&s.ID, &s.ProductID, &s.ProductName, &s.Quantity, &s.UnitPrice, &s.TotalAmount,
			&s.CustomerID, &s.CustomerEmail, &s.Status, &s.PaymentMethod, &s.Channel,
			&s.SaleDate, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning customer sale: %w", err)
		}
		s.SaleDate = s.SaleDate.UTC()
		s.CreatedAt = s.CreatedAt.UTC()
		sales = append(sales, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating customer sales: %w", err)
	}
	return sales, nil
}

// AnonymizeCustomer nulls the customer fields of every sale made with email.
func (r *MySQLRepository) AnonymizeCustomer(ctx context.Context, tx mysql.DBTX, email string) (int, error) {
	result, err := tx.ExecContext(ctx,
		`UPDATE sales SET customer_email = NULL, customer_id = NULL WHERE customer_email = ?`, email)
	if err != nil {
		return 0, fmt.Errorf("anonymizing customer sales: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}
	return int(n), nil
}
