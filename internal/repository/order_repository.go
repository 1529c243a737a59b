package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/spec-kit/shipment-support/internal/domain"
)

// OrderRepository resolves orders stored in Postgres. Identifiers match as
// case-insensitive substrings; the oldest matching order wins.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `order_number, awb, reference_number, customer_name, customer_phone, customer_email,
               shipping_company, shipping_address, total_amount::text, payment_method, order_date, status`

func (r *OrderRepository) ByOrderNumber(ctx context.Context, orderNumber string) (*domain.OrderData, error) {
	return r.findBy(ctx, "order_number", orderNumber)
}

func (r *OrderRepository) ByAWB(ctx context.Context, awb string) (*domain.OrderData, error) {
	return r.findBy(ctx, "awb", awb)
}

func (r *OrderRepository) ByReference(ctx context.Context, referenceNumber string) (*domain.OrderData, error) {
	return r.findBy(ctx, "reference_number", referenceNumber)
}

func (r *OrderRepository) findBy(ctx context.Context, column, value string) (*domain.OrderData, error) {
	if r.pool == nil {
		return nil, errors.New("order repository: postgres not configured")
	}
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	query := fmt.Sprintf(`
        SELECT %s
        FROM orders WHERE LOWER(%s) LIKE $1 ESCAPE '\'
        ORDER BY created_at ASC LIMIT 1`, orderColumns, column)

	order, err := r.fetchSingle(ctx, query, likePattern(value))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if order.Items, err = r.listItems(ctx, order.OrderNumber); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.OrderData, error) {
	var (
		order     domain.OrderData
		total     string
		orderDate *time.Time
	)
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&order.OrderNumber,
		&order.AWB,
		&order.ReferenceNumber,
		&order.CustomerName,
		&order.CustomerPhone,
		&order.CustomerEmail,
		&order.ShippingCompany,
		&order.ShippingAddress,
		&total,
		&order.PaymentMethod,
		&orderDate,
		&order.Status,
	); err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("order %s total_amount: %w", order.OrderNumber, err)
	}
	order.TotalAmount = amount
	if orderDate != nil {
		order.OrderDate = *orderDate
	}
	return &order, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderNumber string) ([]domain.OrderItem, error) {
	const query = `
        SELECT name, sku, quantity, unit_price::text
        FROM order_items WHERE order_number=$1 ORDER BY position ASC`
	rows, err := r.pool.Query(ctx, query, orderNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows pgx.Rows) ([]domain.OrderItem, error) {
	var result []domain.OrderItem
	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
		)
		if err := rows.Scan(&item.Name, &item.SKU, &item.Quantity, &price); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("item %s unit_price: %w", item.SKU, err)
		}
		item.UnitPrice = amount
		result = append(result, item)
	}
	return result, rows.Err()
}

// likePattern builds a LIKE pattern matching value anywhere, with LIKE
// metacharacters escaped.
func likePattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.ToLower(strings.TrimSpace(value))) + "%"
}
