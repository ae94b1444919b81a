package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type storedOrder struct {
	order domain.Order
	seq   uint64
}

type OrderStore struct {
	mu sync.RWMutex

	ordersByID map[string]*storedOrder
	sequence   uint64
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		ordersByID: make(map[string]*storedOrder),
	}
}

func (s *OrderStore) Insert(ctx context.Context, order domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ordersByID[order.ID]; exists {
		return apperrors.NewInternalError("inserting order", fmt.Errorf("duplicate order id %s", order.ID))
	}
	s.sequence++
	s.ordersByID[order.ID] = &storedOrder{order: cloneOrder(order), seq: s.sequence}
	return nil
}

func (s *OrderStore) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.ordersByID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	order := cloneOrder(stored.order)
	return &order, nil
}

func (s *OrderStore) FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return s.list(func(o domain.Order) bool { return o.BuyerID == buyerID }), nil
}

func (s *OrderStore) FindAll(ctx context.Context) ([]domain.Order, error) {
	return s.list(func(domain.Order) bool { return true }), nil
}

func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.ordersByID[id]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	stored.order.Status = status
	stored.order.UpdatedAt = updatedAt
	return nil
}

// list orders newest first; insertion order breaks timestamp ties.
func (s *OrderStore) list(keep func(domain.Order) bool) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*storedOrder, 0, len(s.ordersByID))
	for _, stored := range s.ordersByID {
		if keep(stored.order) {
			matched = append(matched, stored)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		return a.seq > b.seq
	})

	orders := make([]domain.Order, len(matched))
	for i, stored := range matched {
		orders[i] = cloneOrder(stored.order)
	}
	return orders
}

func cloneOrder(order domain.Order) domain.Order {
	order.Items = append([]domain.LineItem(nil), order.Items...)
	return order
}
