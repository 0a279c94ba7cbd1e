package dto

import "github.com/shopspring/decimal"

type CreateHierarchyRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

type UpdateHierarchyRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

type HierarchyFilter struct {
	Query  string `form:"q"` // matches name or description
	Active string `form:"active"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type CreateComponentRequest struct {
	Name           string          `json:"name" validate:"required,min=2,max=120"`
	AdditionalCost decimal.Decimal `json:"additional_cost" validate:"min=0"`
}

type ComponentResponse struct {
	ID             string          `json:"id"`
	HierarchyID    string          `json:"hierarchy_id"`
	Name           string          `json:"name"`
	AdditionalCost decimal.Decimal `json:"additional_cost"`
	Active         bool            `json:"active"`
}

type HierarchyResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	Notes       *string             `json:"notes"`
	Active      bool                `json:"active"`
	Components  []ComponentResponse `json:"components,omitempty"`
}

type HierarchyListResponse struct {
	Data       []HierarchyResponse `json:"data"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

// HierarchyUsage is the "usage count" aggregate: how many composite products
// reference a hierarchy.
type HierarchyUsage struct {
	HierarchyID string `json:"hierarchy_id"`
	Name        string `json:"name"`
	UsedBy      int64  `json:"used_by"`
}
