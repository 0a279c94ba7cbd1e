package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateDemandRequest struct {
	OrderItemID string          `json:"order_item_id" validate:"required,uuid"`
	ProductID   string          `json:"product_id"    validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"      validate:"required"`
	// ExpectedDate defaults to now+7d when omitted; past dates are rejected.
	ExpectedDate *time.Time `json:"expected_date"`
	Notes        *string    `json:"notes"`
}

type DemandFilter struct {
	Status    string `form:"status" validate:"omitempty,oneof=pending confirmed produced ending delivered"`
	ProductID string `form:"product_id" validate:"omitempty,uuid"`
	From      string `form:"from"` // expected date range, RFC 3339 date
	To        string `form:"to"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type AttachProductionOrderRequest struct {
	ProductionOrderID string `json:"production_order_id" validate:"required,uuid"`
}

type DemandResponse struct {
	ID                string          `json:"id"`
	OrderItemID       string          `json:"order_item_id"`
	ProductionOrderID *string         `json:"production_order_id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	Status            string          `json:"status"`
	ExpectedDate      time.Time       `json:"expected_date"`
	StartedAt         *time.Time      `json:"started_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
	Notes             *string         `json:"notes"`
	Active            bool            `json:"active"`
}

type DemandListResponse struct {
	Data       []DemandResponse `json:"data"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// TransitionResponse reports the outcome of a guarded state-machine call.
// Allowed=false means the entity was not in the required state; its status is
// echoed back unchanged.
type TransitionResponse struct {
	ID      string `json:"id"`
	Allowed bool   `json:"allowed"`
	Status  string `json:"status"`
}
