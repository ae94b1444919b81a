package repository

import (
	"context"
	"database/sql"
	"fmt"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	mysqlinfra "storefront/internal/infrastructure/mysql"
)

type MySQLRepository struct {
	db *sql.DB
}

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// FindByIDs returns the products that exist among ids, in id order.
// Missing ids are simply absent from the result.
func (r *MySQLRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := mysqlinfra.InArgs(ids)
	query := fmt.Sprintf(`
		SELECT id, name, slug, description, price, quantity, categoryId, shipping,
		       createdAt, updatedAt
		FROM Products
		WHERE id IN (%s)
		ORDER BY id`,
		placeholders,
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("querying products", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price,
			&p.Quantity, &p.CategoryID, &p.Shipping,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("scanning product row", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("iterating product rows", err)
	}

	return products, nil
}
