package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/turismo-portal/internal/domain/order"
	"github.com/example/turismo-portal/internal/domain/product"
)

const orderColumns = "id, order_number, user_id, status, total_amount, created_at, updated_at"

// OrderStore reads and writes the orders and order_items tables.
//
// InsertOrder and InsertItems are deliberately separate calls: checkout makes
// two writes with no cross-statement transaction, and a failure between them
// leaves an order without items. The checkout service documents and surfaces
// that window instead of papering over it.
type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) InsertOrder(ctx context.Context, o *order.Order) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO orders (id, order_number, user_id, status, total_amount, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.OrderNumber, o.UserID, string(o.Status), o.TotalAmount, o.CreatedAt, o.UpdatedAt)
	return err
}

// InsertItems writes all items of one order in a single transaction. The
// batch itself is atomic; its relation to the order insert is not.
func (s *OrderStore) InsertItems(ctx context.Context, items []order.Item) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, item.OrderID, item.ProductID,
			item.Quantity, item.UnitPrice, item.TotalPrice, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *OrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)

	var o order.Order
	var status string
	err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	return &o, nil
}

// ListByUser returns a buyer's own order history, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]order.Order, 0)
	for rows.Next() {
		var o order.Order
		var status string
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &status,
			&o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		o.Status = order.Status(status)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ListAll returns every order joined with buyer contact details, newest
// first. Staff use.
func (s *OrderStore) ListAll(ctx context.Context) ([]order.WithBuyer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.order_number, o.user_id, o.status, o.total_amount, o.created_at, o.updated_at,
		        COALESCE(p.full_name, ''), p.email
		 FROM orders o
		 JOIN profiles p ON p.id = o.user_id
		 ORDER BY o.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]order.WithBuyer, 0)
	for rows.Next() {
		var o order.WithBuyer
		var status string
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.UserID, &status, &o.TotalAmount,
			&o.CreatedAt, &o.UpdatedAt, &o.BuyerName, &o.BuyerEmail); err != nil {
			return nil, err
		}
		o.Status = order.Status(status)
		if o.BuyerName == "" {
			o.BuyerName = o.BuyerEmail
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// ItemsByOrder returns an order's line items with their product records when
// the product still exists in the catalog.
func (s *OrderStore) ItemsByOrder(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.order_id, i.product_id, i.quantity, i.unit_price, i.total_price,
		        p.id, p.code, p.name, p.description, p.price, p.image_url, p.active, p.created_at, p.updated_at
		 FROM order_items i
		 LEFT JOIN products p ON p.id = i.product_id
		 WHERE i.order_id = $1
		 ORDER BY i.created_at`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]order.Item, 0)
	for rows.Next() {
		var item order.Item
		var pid, code, name, description, imageURL sql.NullString
		var price sql.NullFloat64
		var active sql.NullBool
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&item.UnitPrice, &item.TotalPrice,
			&pid, &code, &name, &description, &price, &imageURL, &active, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if pid.Valid {
			item.Product = &product.Product{
				ID:          pid.String,
				Code:        code.String,
				Name:        name.String,
				Description: description.String,
				Price:       price.Float64,
				ImageURL:    imageURL.String,
				Active:      active.Bool,
				CreatedAt:   createdAt.Time,
				UpdatedAt:   updatedAt.Time,
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpdateStatus moves an order to target after validating the lifecycle
// transition against the current status. The WHERE clause re-checks the
// status so a concurrent transition cannot be overwritten.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, target order.Status) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !current.Status.CanTransitionTo(target) {
		return current.Status.TransitionError(target)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4",
		id, string(target), time.Now(), string(current.Status))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: order %s changed concurrently", order.ErrInvalidTransition, id)
	}
	return nil
}
