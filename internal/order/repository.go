package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"foodhub-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Create inserts the order row and its items in one transaction.
	Create(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	// ConfirmPending moves a pending order to confirmed. It reports false when
	// the order was not pending, including when it does not exist.
	ConfirmPending(ctx context.Context, id uuid.UUID, totalAmount int64) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Order, error)
	// UpdateStatus changes status only if the order still belongs to the
	// restaurant and is still in status from.
	UpdateStatus(ctx context.Context, id, restaurantID uuid.UUID, from, to Status) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderSelect = `
	SELECT o.id, o.user_id, o.restaurant_id, r.name, o.delivery_details, o.status,
		o.total_amount, COALESCE(o.checkout_session_id, ''), o.created_at, o.updated_at
	FROM orders o
	JOIN restaurants r ON r.id = o.restaurant_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.RestaurantID, &o.RestaurantName, &o.DeliveryDetails, &o.Status,
		&o.TotalAmount, &o.CheckoutSessionID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	o.Items = []Item{}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_id", o.ID.String()),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, user_id, restaurant_id, delivery_details, status, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`,
		o.ID, o.UserID, o.RestaurantID, o.DeliveryDetails, o.Status, o.TotalAmount,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("db: failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, menu_id, name, image, price, quantity)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			o.ID, i+1, it.MenuID, it.Name, it.Image, it.Price, it.Quantity,
		)
		if err != nil {
			log.Error("db: failed to insert order item", zap.String("menu_id", it.MenuID.String()), zap.Error(err))
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	// order_items go with the order through ON DELETE CASCADE
	_, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func (r *repository) SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET checkout_session_id = $2, updated_at = now()
		WHERE id = $1
	`, id, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) ConfirmPending(ctx context.Context, id uuid.UUID, totalAmount int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $3, total_amount = $2, updated_at = now()
		WHERE id = $1 AND status = $4
	`, id, totalAmount, StatusConfirmed, StatusPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	orders := []Order{*o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return r.list(ctx, orderSelect+` WHERE o.user_id = $1 ORDER BY o.created_at DESC`, userID)
}

func (r *repository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]Order, error) {
	return r.list(ctx, orderSelect+` WHERE o.restaurant_id = $1 ORDER BY o.created_at DESC`, restaurantID)
}

func (r *repository) list(ctx context.Context, query string, arg uuid.UUID) ([]Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "list"),
	)

	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		log.Error("db: failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the items of all orders with a single query.
func (r *repository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID.String()
		index[orders[i].ID] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, menu_id, name, image, price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID uuid.UUID
		var it Item
		if err := rows.Scan(&orderID, &it.MenuID, &it.Name, &it.Image, &it.Price, &it.Quantity); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id, restaurantID uuid.UUID, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $4, updated_at = now()
		WHERE id = $1 AND restaurant_id = $2 AND status = $3
	`, id, restaurantID, from, to)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
