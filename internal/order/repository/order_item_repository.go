package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	mysqlinfra "storefront/internal/infrastructure/mysql"
)

// MySQLOrderItemRepository stores the line items of an order. position
// keeps the cart order stable across reads.
type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) InsertAll(ctx context.Context, tx *sql.Tx, orderID string, items []domain.LineItem) error {
	query := `INSERT INTO OrderItems (orderId, position, productId, price) VALUES (?, ?, ?, ?)`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing order item insert: %w", err)
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.ExecContext(ctx, orderID, i, item.ProductID, item.Price); err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}
	return nil
}

// FindByOrderIDs groups the items of every listed order by order id.
func (r *MySQLOrderItemRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]domain.LineItem, error) {
	items := make(map[string][]domain.LineItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return items, nil
	}

	placeholders, args := mysqlinfra.InArgs(orderIDs)
	query := fmt.Sprintf(`
		SELECT orderId, productId, price
		FROM OrderItems
		WHERE orderId IN (%s)
		ORDER BY orderId, position`,
		placeholders,
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			item    domain.LineItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Price); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return items, nil
}
