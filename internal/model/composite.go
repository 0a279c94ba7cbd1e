package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CompositeProductXHierarchy binds a composite product to a hierarchy with
// quantity range and build position. The two composite unique indexes close
// the check-then-write race on concurrent inserts: the service pre-checks for
// friendly errors, the DB constraint is the final arbiter.
//
// MaxQuantity = 0 means unbounded.
type CompositeProductXHierarchy struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_hierarchy;uniqueIndex:idx_product_assembly_order"`
	HierarchyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_product_hierarchy;index"`
	MinQuantity   int       `gorm:"not null;default:1"`
	MaxQuantity   int       `gorm:"not null;default:0"`
	IsOptional    bool      `gorm:"not null;default:false"`
	AssemblyOrder int       `gorm:"not null;uniqueIndex:idx_product_assembly_order"`
	Notes         *string   `gorm:"type:text"`
	Active        bool      `gorm:"not null;default:true"`

	CreatedBy      string `gorm:"size:64;not null"`
	CreatedAt      time.Time
	LastModifiedBy string `gorm:"size:64;not null"`
	LastModifiedAt time.Time

	Product   *Product                   `gorm:"foreignKey:ProductID"`
	Hierarchy *ProductComponentHierarchy `gorm:"foreignKey:HierarchyID"`
}

// ProductComponentLink is the direct product-to-product component edge of a
// composite product. The component graph formed by these edges must stay
// acyclic; see service.CompositeService cycle detection.
type ProductComponentLink struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompositeProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_composite_component"`
	ComponentProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_composite_component"`
	Quantity           decimal.Decimal `gorm:"type:decimal(12,3);not null;default:1"`
	AssemblyOrder      int             `gorm:"not null;default:1"`
	Active             bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	ComponentProduct *Product `gorm:"foreignKey:ComponentProductID"`
}
