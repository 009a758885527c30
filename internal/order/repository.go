package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("order not found")

// Repository persists orders. NextDailySequence hands out the per-day order
// counter atomically, so two concurrent checkouts can never mint the same
// order id.
type Repository interface {
	NextDailySequence(ctx context.Context, day string) (int, error)
	Create(ctx context.Context, o *Order) error
	GetByOrderID(ctx context.Context, orderID string) (*Order, error)
	ListBySession(ctx context.Context, sessionID string) ([]Order, error)
	List(ctx context.Context, status OrderStatus) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus OrderStatus) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates the Postgres-backed order repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// NextDailySequence bumps and returns the counter row for the given day in
// one statement.
func (r *postgresRepository) NextDailySequence(ctx context.Context, day string) (int, error) {
	query := `
		INSERT INTO order_daily_sequence (day, value)
		VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET value = order_daily_sequence.value + 1
		RETURNING value
	`

	var value int
	if err := r.db.QueryRow(ctx, query, day).Scan(&value); err != nil {
		return 0, fmt.Errorf("repository: failed to advance daily sequence for %s: %w", day, err)
	}
	return value, nil
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Str("order_id", o.OrderID).Msg("Failed to rollback order transaction")
			}
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	orderQuery := `
		INSERT INTO orders (order_id, session_id, customer_name, customer_phone, customer_address,
			subtotal, delivery_fee, total, payment_method, status, channel, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.Exec(ctx, orderQuery,
		o.OrderID,
		o.SessionID,
		o.Customer.Name,
		o.Customer.Phone,
		o.Customer.Address,
		o.Subtotal.StringFixed(2),
		o.DeliveryFee.StringFixed(2),
		o.Total.StringFixed(2),
		string(o.PaymentMethod),
		string(o.Status),
		o.Channel,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order %s: %w", o.OrderID, err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, product_name, price, quantity, delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, item := range o.Items {
		if _, err = tx.Exec(ctx, itemQuery, o.OrderID, i, item.ProductName, item.Price.StringFixed(2), item.Quantity, item.DeliveryTime); err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.OrderID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit order transaction: %w", err)
	}
	return nil
}

const orderColumns = `order_id, session_id, customer_name, customer_phone, customer_address,
	subtotal, delivery_fee, total, payment_method, status, channel, created_at, updated_at`

func (r *postgresRepository) scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var subtotal, fee, total string
	err := row.Scan(
		&o.OrderID,
		&o.SessionID,
		&o.Customer.Name,
		&o.Customer.Phone,
		&o.Customer.Address,
		&subtotal,
		&fee,
		&total,
		&o.PaymentMethod,
		&o.Status,
		&o.Channel,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("invalid subtotal for order %s: %w", o.OrderID, err)
	}
	if o.DeliveryFee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("invalid delivery_fee for order %s: %w", o.OrderID, err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("invalid total for order %s: %w", o.OrderID, err)
	}
	return &o, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, o *Order) error {
	query := `
		SELECT product_name, price, quantity, delivery_time
		FROM order_items
		WHERE order_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, query, o.OrderID)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items for order %s: %w", o.OrderID, err)
	}
	defer rows.Close()

	o.Items = make([]Item, 0)
	for rows.Next() {
		var item Item
		var price string
		if err := rows.Scan(&item.ProductName, &price, &item.Quantity, &item.DeliveryTime); err != nil {
			return fmt.Errorf("repository: failed to scan order item for order %s: %w", o.OrderID, err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return fmt.Errorf("repository: invalid item price for order %s: %w", o.OrderID, err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *postgresRepository) GetByOrderID(ctx context.Context, orderID string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	o, err := r.scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %s: %w", orderID, err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepository) ListBySession(ctx context.Context, sessionID string) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, sessionID)
}

// List returns all orders, newest first, optionally filtered by status.
func (r *postgresRepository) List(ctx context.Context, status OrderStatus) ([]Order, error) {
	if status == "" {
		query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
		return r.list(ctx, query)
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, string(status))
}

func (r *postgresRepository) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	for i := range orders {
		if err := r.loadItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID string, newStatus OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE order_id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
