package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType discriminates the three product variants. It is immutable after
// creation and decides which extension fields below are meaningful.
type ProductType string

const (
	ProductTypeSimple    ProductType = "simple"
	ProductTypeComposite ProductType = "composite"
	ProductTypeGroup     ProductType = "group"
)

// Product is the variant-tagged catalog entity. Simple products use only the
// shared fields; Composite products add assembly fields plus relation rows
// (CompositeProductXHierarchy, ProductComponentLink); Group products add
// group items and exchange rules.
type Product struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code        string      `gorm:"uniqueIndex;not null"`
	Name        string      `gorm:"index;not null"`
	Description *string
	ProductType ProductType     `gorm:"size:20;not null;index"`
	Category    string          `gorm:"index"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Active      bool            `gorm:"not null;default:true"`

	// Composite extension
	AssemblyTimeMinutes  int     `gorm:"not null;default:0"`
	AssemblyInstructions *string `gorm:"type:text"`

	CreatedBy      string `gorm:"size:64;not null"`
	CreatedAt      time.Time
	LastModifiedBy string `gorm:"size:64;not null"`
	LastModifiedAt time.Time

	// Group extension
	GroupItems    []ProductGroupItem         `gorm:"foreignKey:GroupProductID"`
	ExchangeRules []ProductGroupExchangeRule `gorm:"foreignKey:GroupProductID"`
}

// ProductGroupItem is one selectable entry of a Group product.
type ProductGroupItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:1"`
	IsDefault      bool            `gorm:"not null;default:false"`
	Active         bool            `gorm:"not null;default:true"`

	ItemProduct *Product `gorm:"foreignKey:ItemProductID"`
}

// ProductGroupExchangeRule allows swapping one group item for another at a
// given ratio.
type ProductGroupExchangeRule struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	FromItemID     uuid.UUID       `gorm:"type:uuid;not null"`
	ToItemID       uuid.UUID       `gorm:"type:uuid;not null"`
	Ratio          decimal.Decimal `gorm:"type:decimal(8,3);not null;default:1"`
	Active         bool            `gorm:"not null;default:true"`
}
