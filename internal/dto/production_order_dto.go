package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateProductionOrderRequest struct {
	OrderID     string          `json:"order_id"      validate:"required,uuid"`
	OrderItemID string          `json:"order_item_id" validate:"required,uuid"`
	ProductID   string          `json:"product_id"    validate:"required,uuid"`
	Quantity    decimal.Decimal `json:"quantity"      validate:"required"`
	Priority    string          `json:"priority"      validate:"omitempty,oneof=low normal high urgent"`
	// EstimatedTime (minutes) defaults to product assembly time × quantity.
	EstimatedTime *int    `json:"estimated_time" validate:"omitempty,min=1"`
	Notes         *string `json:"notes"`
}

type ScheduleRequest struct {
	ScheduledStartDate time.Time `json:"scheduled_start_date" validate:"required"`
	ScheduledEndDate   time.Time `json:"scheduled_end_date"   validate:"required"`
}

type StartRequest struct {
	AssignedTo string `json:"assigned_to"`
}

type CompleteRequest struct {
	ActualTime *int `json:"actual_time" validate:"omitempty,min=1"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type ProductionOrderFilter struct {
	Status     string `form:"status" validate:"omitempty,oneof=pending scheduled in_progress paused completed cancelled failed"`
	Priority   string `form:"priority" validate:"omitempty,oneof=low normal high urgent"`
	ProductID  string `form:"product_id" validate:"omitempty,uuid"`
	AssignedTo string `form:"assigned_to"`
	From       string `form:"from"` // scheduled start range, RFC 3339 date
	To         string `form:"to"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type ProductionOrderResponse struct {
	ID                 string          `json:"id"`
	OrderID            string          `json:"order_id"`
	OrderItemID        string          `json:"order_item_id"`
	ProductID          string          `json:"product_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	Status             string          `json:"status"`
	Priority           string          `json:"priority"`
	ScheduledStartDate *time.Time      `json:"scheduled_start_date"`
	ScheduledEndDate   *time.Time      `json:"scheduled_end_date"`
	ActualStartDate    *time.Time      `json:"actual_start_date"`
	ActualEndDate      *time.Time      `json:"actual_end_date"`
	AssignedTo         *string         `json:"assigned_to"`
	EstimatedTime      int             `json:"estimated_time"`
	ActualTime         *int            `json:"actual_time"`
	Notes              *string         `json:"notes"`
	Active             bool            `json:"active"`
}

type ProductionOrderListResponse struct {
	Data       []ProductionOrderResponse `json:"data"`
	Total      int64                     `json:"total"`
	Page       int                       `json:"page"`
	Limit      int                       `json:"limit"`
	TotalPages int                       `json:"total_pages"`
}

// EfficiencyReport aggregates completed orders in a window. Efficiency is
// Σ estimated / Σ actual, 0 when no actual time was recorded.
type EfficiencyReport struct {
	CompletedOrders    int             `json:"completed_orders"`
	TotalEstimatedTime int             `json:"total_estimated_time"`
	TotalActualTime    int             `json:"total_actual_time"`
	Efficiency         decimal.Decimal `json:"efficiency"`
}
