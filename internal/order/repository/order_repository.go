package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	mysqlinfra "storefront/internal/infrastructure/mysql"
)

const (
	orderColumns = `id, buyerId, status, paymentSuccess, paymentReference, createdAt, updatedAt`

	defaultMaxRetryAttempts = 3
)

// retryBackoffs[n-1] is the wait after failed attempt n, ±20% jitter.
var retryBackoffs = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}

type MySQLOrderRepository struct {
	db               *sql.DB
	items            *MySQLOrderItemRepository
	maxRetryAttempts int
}

func NewMySQLOrderRepository(db *sql.DB, maxRetryAttempts int) *MySQLOrderRepository {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = defaultMaxRetryAttempts
	}
	return &MySQLOrderRepository{
		db:               db,
		items:            NewMySQLOrderItemRepository(db),
		maxRetryAttempts: maxRetryAttempts,
	}
}

// Insert writes the order and its items in one transaction, retrying the
// whole transaction on deadlock.
func (r *MySQLOrderRepository) Insert(ctx context.Context, order domain.Order) error {
	var err error
	for attempt := 1; attempt <= r.maxRetryAttempts; attempt++ {
		err = r.insertTx(ctx, order)
		if err == nil {
			return nil
		}
		if !mysqlinfra.IsDeadlock(err) || attempt == r.maxRetryAttempts {
			break
		}

		backoff := retryBackoffs[min(attempt-1, len(retryBackoffs)-1)]
		jitter := time.Duration(float64(backoff) * (rand.Float64()*0.4 - 0.2))
		select {
		case <-ctx.Done():
			return apperrors.NewInternalError("inserting order", ctx.Err())
		case <-time.After(backoff + jitter):
		}
	}
	return apperrors.NewInternalError("inserting order", err)
}

func (r *MySQLOrderRepository) insertTx(ctx context.Context, order domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO Orders (id, buyerId, status, paymentSuccess, paymentReference, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		order.ID, order.BuyerID, string(order.Status), order.Payment.Success, order.Payment.Reference,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order row: %w", err)
	}

	if err := r.items.InsertAll(ctx, tx, order.ID, order.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing order: %w", err)
	}
	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("querying order by id", err)
	}

	items, err := r.items.FindByOrderIDs(ctx, []string{id})
	if err != nil {
		return nil, apperrors.NewInternalError("loading order items", err)
	}
	order.Items = items[id]
	return order, nil
}

// FindByBuyer returns the buyer's orders, newest first.
func (r *MySQLOrderRepository) FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE buyerId = ? ORDER BY createdAt DESC, id DESC`
	return r.findMany(ctx, query, buyerID)
}

// FindAll returns every order, newest first.
func (r *MySQLOrderRepository) FindAll(ctx context.Context) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders ORDER BY createdAt DESC, id DESC`
	return r.findMany(ctx, query)
}

// UpdateStatus is the only mutation an order supports after insert.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	query := `UPDATE Orders SET status = ?, updatedAt = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), updatedAt, id)
	if err != nil {
		return apperrors.NewInternalError("updating order status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	return nil
}

func (r *MySQLOrderRepository) findMany(ctx context.Context, query string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("querying orders", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []string
	)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("scanning order row", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("iterating order rows", err)
	}

	items, err := r.items.FindByOrderIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.NewInternalError("loading order items", err)
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		order  domain.Order
		status string
	)
	err := s.Scan(
		&order.ID, &order.BuyerID, &status, &order.Payment.Success, &order.Payment.Reference,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatus(status)
	return &order, nil
}
