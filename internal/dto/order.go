package dto

import "time"

type CreateOrderRequest struct {
	Items   []CreateOrderItem `json:"items"`
	Payment PaymentDTO        `json:"payment"`
}

type CreateOrderItem struct {
	ProductID string  `json:"productId"`
	Price     float64 `json:"price"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type PaymentDTO struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference"`
}

type BuyerDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OrderItemDTO struct {
	ProductID   string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type OrderDTO struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	Buyer     BuyerDTO       `json:"buyer"`
	Payment   PaymentDTO     `json:"payment"`
	Products  []OrderItemDTO `json:"products"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type ErrorResponse struct {
	TraceID   string `json:"traceId"`
	Status    int    `json:"status"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}
