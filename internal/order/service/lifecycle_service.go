package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
	FindAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, updatedAt time.Time) error
}

type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

type BuyerLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.User, error)
}

type BuyerSummary struct {
	ID   string
	Name string
}

// ProductDetail is a line item joined with the catalog. Price is always the
// snapshot taken at checkout; Name and Description are empty when the
// product no longer exists.
type ProductDetail struct {
	ProductID   string
	Name        string
	Description string
	Price       float64
}

type OrderDetail struct {
	domain.Order
	Buyer    BuyerSummary
	Products []ProductDetail
}

// LifecycleService creates orders, lists them per buyer or for admins, and
// moves them between statuses. Callers enforce authentication and roles.
type LifecycleService struct {
	orders   OrderRepository
	products ProductLookup
	buyers   BuyerLookup
	logger   *zap.Logger
	now      func() time.Time
}

func NewLifecycleService(orders OrderRepository, products ProductLookup, buyers BuyerLookup, logger *zap.Logger) *LifecycleService {
	return &LifecycleService{
		orders:   orders,
		products: products,
		buyers:   buyers,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrder records a checked-out cart. Payment is fixed here and never
// updated afterwards.
func (s *LifecycleService) CreateOrder(ctx context.Context, buyerID string, items []domain.LineItem, payment domain.Payment) (*domain.Order, error) {
	if len(items) == 0 {
		return nil, apperrors.NewCodedValidationError(apperrors.CodeEmptyCart, "cart is empty",
			apperrors.ValidationDetail{Field: "items", Message: "items must not be empty"})
	}

	now := s.now()
	order := domain.Order{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		Items:     append([]domain.LineItem(nil), items...),
		Status:    domain.OrderStatusNotProcess,
		Payment:   payment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("orderId", order.ID),
		zap.String("buyerId", buyerID),
		zap.Int("itemCount", len(items)),
		zap.Bool("paymentSuccess", payment.Success),
	)
	return &order, nil
}

// ListOrdersForBuyer trusts buyerID to be the authenticated caller.
func (s *LifecycleService) ListOrdersForBuyer(ctx context.Context, buyerID string) ([]OrderDetail, error) {
	orders, err := s.orders.FindByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, orders)
}

func (s *LifecycleService) ListAllOrders(ctx context.Context) ([]OrderDetail, error) {
	orders, err := s.orders.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, orders)
}

// SetStatus accepts any of the five statuses from any current status.
func (s *LifecycleService) SetStatus(ctx context.Context, orderID, rawStatus string) (*domain.Order, error) {
	status, ok := domain.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewCodedValidationError(apperrors.CodeInvalidStatus,
			fmt.Sprintf("invalid status %q", rawStatus),
			apperrors.ValidationDetail{Field: "status", Message: "status must be one of " + allowedStatuses()})
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status, s.now()); err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewNotFoundError("order not found")
		}
		return nil, err
	}

	s.logger.Info("order status updated", zap.String("orderId", orderID), zap.String("status", string(status)))
	return order, nil
}

// resolve joins buyers and products with one lookup each.
func (s *LifecycleService) resolve(ctx context.Context, orders []domain.Order) ([]OrderDetail, error) {
	details := make([]OrderDetail, 0, len(orders))
	if len(orders) == 0 {
		return details, nil
	}

	var buyerIDs, productIDs []string
	seenBuyers := make(map[string]struct{})
	seenProducts := make(map[string]struct{})
	for _, o := range orders {
		if _, ok := seenBuyers[o.BuyerID]; !ok {
			seenBuyers[o.BuyerID] = struct{}{}
			buyerIDs = append(buyerIDs, o.BuyerID)
		}
		for _, item := range o.Items {
			if _, ok := seenProducts[item.ProductID]; !ok {
				seenProducts[item.ProductID] = struct{}{}
				productIDs = append(productIDs, item.ProductID)
			}
		}
	}

	buyers, err := s.buyers.FindByIDs(ctx, buyerIDs)
	if err != nil {
		return nil, err
	}
	buyerNames := make(map[string]string, len(buyers))
	for _, b := range buyers {
		buyerNames[b.ID] = b.Name
	}

	products, err := s.products.FindByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]domain.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	for _, o := range orders {
		detail := OrderDetail{
			Order:    o,
			Buyer:    BuyerSummary{ID: o.BuyerID, Name: buyerNames[o.BuyerID]},
			Products: make([]ProductDetail, len(o.Items)),
		}
		for i, item := range o.Items {
			p := catalog[item.ProductID]
			detail.Products[i] = ProductDetail{
				ProductID:   item.ProductID,
				Name:        p.Name,
				Description: p.Description,
				Price:       item.Price,
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

func allowedStatuses() string {
	names := make([]string, len(domain.OrderStatuses))
	for i, status := range domain.OrderStatuses {
		names[i] = string(status)
	}
	return strings.Join(names, ", ")
}
