package product

import (
	"context"

	"storefront/internal/domain"
)

type SearchUseCase interface {
	SearchProducts(ctx context.Context, req SearchProductsRequest) (*SearchProductsResponse, error)
}

type Service interface {
	GetProductsByIDs(ctx context.Context, ids []string) (found []domain.Product, notFoundIDs []string, err error)
}

// Repository is also what the order lifecycle uses to resolve line items.
type Repository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}
