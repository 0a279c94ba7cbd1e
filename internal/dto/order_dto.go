package dto

import "github.com/shopspring/decimal"

type CreateOrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`
}

type CreateOrderRequest struct {
	Number      string                   `json:"number"       validate:"required,min=1,max=40"`
	CustomerRef string                   `json:"customer_ref" validate:"max=128"`
	Items       []CreateOrderItemRequest `json:"items"        validate:"required,min=1,dive"`
}

type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type OrderResponse struct {
	ID          string              `json:"id"`
	Number      string              `json:"number"`
	CustomerRef string              `json:"customer_ref"`
	Status      string              `json:"status"`
	Items       []OrderItemResponse `json:"items"`
}
