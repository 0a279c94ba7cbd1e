package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code        string          `json:"code"         validate:"required,min=2,max=40"`
	Name        string          `json:"name"         validate:"required,min=2,max=120"`
	Description *string         `json:"description"`
	ProductType string          `json:"product_type" validate:"required,oneof=simple composite group"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"unit_price"   validate:"required"`
	Cost        decimal.Decimal `json:"cost"         validate:"min=0"`

	// Composite only
	AssemblyTimeMinutes  int     `json:"assembly_time_minutes" validate:"min=0"`
	AssemblyInstructions *string `json:"assembly_instructions"`
}

// UpdateProductRequest deliberately has no product_type field: the variant is
// immutable after creation.
type UpdateProductRequest struct {
	Name                 *string          `json:"name"        validate:"omitempty,min=2,max=120"`
	Description          *string          `json:"description"`
	Category             *string          `json:"category"`
	UnitPrice            *decimal.Decimal `json:"unit_price"`
	Cost                 *decimal.Decimal `json:"cost"`
	AssemblyTimeMinutes  *int             `json:"assembly_time_minutes" validate:"omitempty,min=0"`
	AssemblyInstructions *string          `json:"assembly_instructions"`
}

type ProductFilter struct {
	Code        string `form:"code"`
	Name        string `form:"name"`
	ProductType string `form:"product_type" validate:"omitempty,oneof=simple composite group"`
	Category    string `form:"category"`
	Active      string `form:"active"` // "false" = inactive, "all" = everything, default active
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type AddGroupItemRequest struct {
	ItemProductID string          `json:"item_product_id" validate:"required,uuid"`
	Quantity      decimal.Decimal `json:"quantity"`
	IsDefault     bool            `json:"is_default"`
}

type AddExchangeRuleRequest struct {
	FromItemID string          `json:"from_item_id" validate:"required,uuid"`
	ToItemID   string          `json:"to_item_id"   validate:"required,uuid"`
	Ratio      decimal.Decimal `json:"ratio"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID                   string          `json:"id"`
	Code                 string          `json:"code"`
	Name                 string          `json:"name"`
	Description          *string         `json:"description"`
	ProductType          string          `json:"product_type"`
	Category             string          `json:"category"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	Cost                 decimal.Decimal `json:"cost"`
	Active               bool            `json:"active"`
	AssemblyTimeMinutes  int             `json:"assembly_time_minutes,omitempty"`
	AssemblyInstructions *string         `json:"assembly_instructions,omitempty"`
	CreatedBy            string          `json:"created_by"`
	LastModifiedBy       string          `json:"last_modified_by"`
}

type GroupItemResponse struct {
	ID            string          `json:"id"`
	ItemProductID string          `json:"item_product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	IsDefault     bool            `json:"is_default"`
	Active        bool            `json:"active"`
}

type ExchangeRuleResponse struct {
	ID         string          `json:"id"`
	FromItemID string          `json:"from_item_id"`
	ToItemID   string          `json:"to_item_id"`
	Ratio      decimal.Decimal `json:"ratio"`
	Active     bool            `json:"active"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
