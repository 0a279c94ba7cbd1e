package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the minimal sales order the production core hangs off. Full order
// management (payments, invoicing, delivery routing) lives outside this
// service; demands and production orders only need line provenance.
type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number      string    `gorm:"uniqueIndex;not null"`
	CustomerRef string    `gorm:"size:128"`
	Status      string    `gorm:"size:20;not null;default:open"`
	Active      bool      `gorm:"not null;default:true"`

	CreatedBy      string `gorm:"size:64;not null"`
	CreatedAt      time.Time
	LastModifiedBy string `gorm:"size:64;not null"`
	LastModifiedAt time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// OrderItem is one sales line; accepting it into production planning creates
// a Demand referencing this row.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	CreatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
