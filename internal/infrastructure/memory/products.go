package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"storefront/internal/domain"
)

type ProductStore struct {
	mu sync.RWMutex

	productsByID map[string]domain.Product
}

func NewProductStore() *ProductStore {
	return &ProductStore{
		productsByID: make(map[string]domain.Product),
	}
}

// Put stores a catalog entry, assigning an id and timestamps when missing.
// The catalog has no write API; Put is for seeding.
func (s *ProductStore) Put(product domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
		product.UpdatedAt = product.CreatedAt
	}
	s.productsByID[product.ID] = product
	return product
}

// FindByIDs returns matches in id order, like the MySQL repository.
func (s *ProductStore) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var products []domain.Product
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if p, ok := s.productsByID[id]; ok {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
