package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/auth/gate"
	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/order/service"
	"storefront/internal/server/response"
)

const maxOrderItems = 100

type LifecycleService interface {
	CreateOrder(ctx context.Context, buyerID string, items []domain.LineItem, payment domain.Payment) (*domain.Order, error)
	ListOrdersForBuyer(ctx context.Context, buyerID string) ([]service.OrderDetail, error)
	ListAllOrders(ctx context.Context) ([]service.OrderDetail, error)
	SetStatus(ctx context.Context, orderID, status string) (*domain.Order, error)
}

type OrderController struct {
	service LifecycleService
	logger  *zap.Logger
}

func NewOrderController(service LifecycleService, logger *zap.Logger) *OrderController {
	return &OrderController{
		service: service,
		logger:  logger,
	}
}

// ListOwn lists the caller's orders.
func (c *OrderController) ListOwn(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	claims, ok := gate.ClaimsFromContext(r.Context())
	if !ok {
		response.WriteError(w, logger, traceID, apperrors.NewUnauthenticatedError("authentication required", nil))
		return
	}

	orders, err := c.service.ListOrdersForBuyer(r.Context(), claims.UserID())
	if err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusOK, toOrderDTOs(orders))
}

// ListAll lists every order. The admin gate runs before this handler.
func (c *OrderController) ListAll(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	orders, err := c.service.ListAllOrders(r.Context())
	if err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusOK, toOrderDTOs(orders))
}

func (c *OrderController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	claims, ok := gate.ClaimsFromContext(r.Context())
	if !ok {
		response.WriteError(w, logger, traceID, apperrors.NewUnauthenticatedError("authentication required", nil))
		return
	}

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteBadJSON(w, logger, traceID, err)
		return
	}

	if err := validateCreateOrderRequest(req); err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	items := make([]domain.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = domain.LineItem{
			ProductID: strings.TrimSpace(item.ProductID),
			Price:     item.Price,
		}
	}

	order, err := c.service.CreateOrder(r.Context(), claims.UserID(), items, domain.Payment{
		Success:   req.Payment.Success,
		Reference: req.Payment.Reference,
	})
	if err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusCreated, toOrderDTO(service.OrderDetail{
		Order: *order,
		Buyer: service.BuyerSummary{ID: order.BuyerID},
	}))
}

// UpdateStatus sets any of the five statuses. The admin gate runs before
// this handler.
func (c *OrderController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID := response.TraceID(r)
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		response.WriteError(w, logger, traceID, apperrors.NewValidationError("invalid orderId", apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId is required",
		}))
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteBadJSON(w, logger, traceID, err)
		return
	}

	order, err := c.service.SetStatus(r.Context(), orderID, req.Status)
	if err != nil {
		response.WriteError(w, logger, traceID, err)
		return
	}

	response.WriteJSON(w, c.logger, http.StatusOK, toOrderDTO(service.OrderDetail{
		Order: *order,
		Buyer: service.BuyerSummary{ID: order.BuyerID},
	}))
}

// validateCreateOrderRequest leaves the empty cart to the service, which
// owns that rule.
func validateCreateOrderRequest(req dto.CreateOrderRequest) error {
	var details []apperrors.ValidationDetail

	if len(req.Items) > maxOrderItems {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of " + strconv.Itoa(maxOrderItems),
		})
	}

	for idx, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "productId is required",
			})
		}
		if item.Price < 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].price",
				Message: "price must be non-negative",
			})
		}
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

func toOrderDTOs(orders []service.OrderDetail) []dto.OrderDTO {
	out := make([]dto.OrderDTO, len(orders))
	for i, o := range orders {
		out[i] = toOrderDTO(o)
	}
	return out
}

// toOrderDTO falls back to the bare line items when products were not
// resolved.
func toOrderDTO(o service.OrderDetail) dto.OrderDTO {
	products := make([]dto.OrderItemDTO, 0, len(o.Items))
	if len(o.Products) > 0 {
		for _, p := range o.Products {
			products = append(products, dto.OrderItemDTO{
				ProductID:   p.ProductID,
				Name:        p.Name,
				Description: p.Description,
				Price:       p.Price,
			})
		}
	} else {
		for _, item := range o.Items {
			products = append(products, dto.OrderItemDTO{ProductID: item.ProductID, Price: item.Price})
		}
	}

	return dto.OrderDTO{
		ID:     o.ID,
		Status: string(o.Status),
		Buyer: dto.BuyerDTO{
			ID:   o.Buyer.ID,
			Name: o.Buyer.Name,
		},
		Payment: dto.PaymentDTO{
			Success:   o.Payment.Success,
			Reference: o.Payment.Reference,
		},
		Products:  products,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
