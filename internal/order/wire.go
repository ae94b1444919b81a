package order

import (
	"go.uber.org/zap"

	"storefront/internal/order/controller"
	"storefront/internal/order/service"
)

// NewModule wires the order lifecycle. Buyer names and product details are
// resolved through the user and product stores rather than copied onto
// orders.
func NewModule(
	orders service.OrderRepository,
	products service.ProductLookup,
	buyers service.BuyerLookup,
	logger *zap.Logger,
) *controller.OrderController {
	lifecycleSvc := service.NewLifecycleService(orders, products, buyers, logger.Named("orders"))
	return controller.NewOrderController(lifecycleSvc, logger.Named("order-controller"))
}
