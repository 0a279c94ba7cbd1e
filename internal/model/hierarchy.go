package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductComponentHierarchy is a named, reusable bundle of components that can
// be attached to many composite products. Name is unique case-insensitively
// (enforced by a functional unique index on lower(name) plus the service-level
// pre-check).
type ProductComponentHierarchy struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"not null"`
	Description *string
	Notes       *string `gorm:"type:text"`
	Active      bool    `gorm:"not null;default:true"`

	CreatedBy      string `gorm:"size:64;not null"`
	CreatedAt      time.Time
	LastModifiedBy string `gorm:"size:64;not null"`
	LastModifiedAt time.Time

	Components []ProductComponent `gorm:"foreignKey:HierarchyID"`
}

// ProductComponent is one member of a hierarchy.
type ProductComponent struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	HierarchyID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name           string          `gorm:"not null"`
	AdditionalCost decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Active         bool            `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
