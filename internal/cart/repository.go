package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrCartNotFound = errors.New("cart not found")

// Repository persists carts. GetActiveBySession returns ErrCartNotFound when
// the session has no active cart.
type Repository interface {
	GetActiveBySession(ctx context.Context, sessionID string) (*Cart, error)
	Create(ctx context.Context, c *Cart) error
	SaveItems(ctx context.Context, c *Cart) error
	UpdateStatus(ctx context.Context, cartID uuid.UUID, status CartStatus) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

// NewRepository creates the Postgres-backed cart repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetActiveBySession(ctx context.Context, sessionID string) (*Cart, error) {
	query := `
		SELECT id, session_id, status, created_at, updated_at
		FROM carts
		WHERE session_id = $1 AND status = $2
	`

	var c Cart
	err := r.db.QueryRow(ctx, query, sessionID, string(StatusActive)).Scan(
		&c.ID,
		&c.SessionID,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("repository: failed to select active cart for session %s: %w", sessionID, err)
	}

	itemsQuery := `
		SELECT product_name, price, quantity, delivery_time
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY position
	`

	rows, err := r.db.Query(ctx, itemsQuery, c.ID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart items for cart %s: %w", c.ID, err)
	}
	defer rows.Close()

	c.Items = make([]LineItem, 0)
	for rows.Next() {
		var item LineItem
		var price string
		if err := rows.Scan(&item.ProductName, &price, &item.Quantity, &item.DeliveryTime); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart item for cart %s: %w", c.ID, err)
		}
		item.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("repository: invalid price for cart %s: %w", c.ID, err)
		}
		c.Items = append(c.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart items for cart %s: %w", c.ID, err)
	}

	return &c, nil
}

func (r *postgresRepository) Create(ctx context.Context, c *Cart) error {
	if c.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("repository: failed to generate cart ID: %w", err)
		}
		c.ID = id
	}

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `
		INSERT INTO carts (id, session_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.SessionID, string(c.Status), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert cart for session %s: %w", c.SessionID, err)
	}

	return nil
}

// SaveItems replaces the cart's line items atomically.
func (r *postgresRepository) SaveItems(ctx context.Context, c *Cart) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("cart_id", c.ID).Msg("Failed to rollback cart items transaction")
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, c.ID); err != nil {
		return fmt.Errorf("repository: failed to clear cart items for cart %s: %w", c.ID, err)
	}

	insertQuery := `
		INSERT INTO cart_items (cart_id, position, product_name, price, quantity, delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i, item := range c.Items {
		if _, err = tx.Exec(ctx, insertQuery, c.ID, i, item.ProductName, item.Price.StringFixed(2), item.Quantity, item.DeliveryTime); err != nil {
			return fmt.Errorf("repository: failed to insert cart item %s for cart %s: %w", item.ProductName, c.ID, err)
		}
	}

	c.UpdatedAt = time.Now().UTC()
	if _, err = tx.Exec(ctx, `UPDATE carts SET updated_at = $1 WHERE id = $2`, c.UpdatedAt, c.ID); err != nil {
		return fmt.Errorf("repository: failed to touch cart %s: %w", c.ID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit cart items transaction: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, cartID uuid.UUID, status CartStatus) error {
	query := `
		UPDATE carts
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(status), time.Now().UTC(), cartID)
	if err != nil {
		log.Error().Err(err).Stringer("cart_id", cartID).Str("new_status", string(status)).Msg("repository: failed to update cart status")
		return fmt.Errorf("repository: failed to update cart status %s: %w", cartID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCartNotFound
	}

	return nil
}
