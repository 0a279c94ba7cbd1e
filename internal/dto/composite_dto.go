package dto

import "github.com/shopspring/decimal"

// ─── Junction rows (product × hierarchy) ─────────────────────────────────────

type CreateRelationRequest struct {
	ProductID   string `json:"product_id"   validate:"required,uuid"`
	HierarchyID string `json:"hierarchy_id" validate:"required,uuid"`
	MinQuantity int    `json:"min_quantity" validate:"required,min=1"`
	MaxQuantity int    `json:"max_quantity" validate:"min=0"` // 0 = unbounded
	IsOptional  bool   `json:"is_optional"`
	// AssemblyOrder 0 means "allocate the next free position".
	AssemblyOrder int     `json:"assembly_order" validate:"min=0"`
	Notes         *string `json:"notes"`
}

type UpdateRelationRequest struct {
	MinQuantity   *int    `json:"min_quantity" validate:"omitempty,min=1"`
	MaxQuantity   *int    `json:"max_quantity" validate:"omitempty,min=0"`
	IsOptional    *bool   `json:"is_optional"`
	AssemblyOrder *int    `json:"assembly_order" validate:"omitempty,min=1"`
	Notes         *string `json:"notes"`
}

type RelationResponse struct {
	ID            int64   `json:"id"`
	ProductID     string  `json:"product_id"`
	HierarchyID   string  `json:"hierarchy_id"`
	HierarchyName string  `json:"hierarchy_name,omitempty"`
	MinQuantity   int     `json:"min_quantity"`
	MaxQuantity   int     `json:"max_quantity"`
	IsOptional    bool    `json:"is_optional"`
	AssemblyOrder int     `json:"assembly_order"`
	Notes         *string `json:"notes"`
	Active        bool    `json:"active"`
}

type RelationFilter struct {
	ProductID   string `form:"product_id"   validate:"omitempty,uuid"`
	HierarchyID string `form:"hierarchy_id" validate:"omitempty,uuid"`
	Active      string `form:"active"`
	SortBy      string `form:"sort_by,default=assembly_order" validate:"omitempty,oneof=assembly_order min_quantity created_at"`
	SortDir     string `form:"sort_dir,default=asc" validate:"omitempty,oneof=asc desc"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Batch operations ────────────────────────────────────────────────────────

type BatchCreateRelationsRequest struct {
	Relations []CreateRelationRequest `json:"relations" validate:"required,min=1,dive"`
}

type BatchUpdateStatusRequest struct {
	IDs    []int64 `json:"ids" validate:"required,min=1"`
	Active bool    `json:"active"`
}

type BatchDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1"`
}

type DuplicateConfigurationRequest struct {
	SourceProductID string `json:"source_product_id" validate:"required,uuid"`
	TargetProductID string `json:"target_product_id" validate:"required,uuid"`
}

// ─── Direct components ───────────────────────────────────────────────────────

type CreateComponentLinkRequest struct {
	CompositeProductID string          `json:"composite_product_id" validate:"required,uuid"`
	ComponentProductID string          `json:"component_product_id" validate:"required,uuid"`
	Quantity           decimal.Decimal `json:"quantity" validate:"required"`
	AssemblyOrder      int             `json:"assembly_order" validate:"min=0"`
}

type ComponentLinkResponse struct {
	ID                 string          `json:"id"`
	CompositeProductID string          `json:"composite_product_id"`
	ComponentProductID string          `json:"component_product_id"`
	ComponentName      string          `json:"component_name,omitempty"`
	Quantity           decimal.Decimal `json:"quantity"`
	AssemblyOrder      int             `json:"assembly_order"`
	Active             bool            `json:"active"`
}

// ─── Validation pass ─────────────────────────────────────────────────────────

// ConfigurationReport is the result of validating a composite product's
// hierarchy configuration. Violations carries every problem found, not just
// the first.
type ConfigurationReport struct {
	ProductID  string   `json:"product_id"`
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}
