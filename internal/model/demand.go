package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DemandStatus moves strictly forward:
// Pending → Confirmed → Produced → Ending → Delivered.
type DemandStatus string

const (
	DemandStatusPending   DemandStatus = "pending"
	DemandStatusConfirmed DemandStatus = "confirmed"
	DemandStatusProduced  DemandStatus = "produced"
	DemandStatusEnding    DemandStatus = "ending"
	DemandStatusDelivered DemandStatus = "delivered"
)

// Demand is the production need generated by one order line. It is tracked
// independently of the production order that eventually fulfills it; the
// ProductionOrderID back-reference is set when the demand is attached.
type Demand struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderItemID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductionOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity          decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	Status            DemandStatus    `gorm:"size:20;not null;default:pending;index"`
	ExpectedDate      time.Time       `gorm:"not null"`
	StartedAt         *time.Time
	CompletedAt       *time.Time
	Notes             *string `gorm:"type:text"`
	Active            bool    `gorm:"not null;default:true"`

	CreatedBy      string `gorm:"size:64;not null"`
	CreatedAt      time.Time
	LastModifiedBy string `gorm:"size:64;not null"`
	LastModifiedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// Guarded transitions. Each returns false without touching the struct when the
// demand is not in the single legal predecessor state, so callers can surface
// "precondition not met" instead of an error.

func (d *Demand) Confirm() bool {
	if d.Status != DemandStatusPending {
		return false
	}
	d.Status = DemandStatusConfirmed
	return true
}

func (d *Demand) MarkAsProduced(now time.Time) bool {
	if d.Status != DemandStatusConfirmed {
		return false
	}
	d.Status = DemandStatusProduced
	if d.StartedAt == nil {
		d.StartedAt = &now
	}
	return true
}

func (d *Demand) MarkAsEnding() bool {
	if d.Status != DemandStatusProduced {
		return false
	}
	d.Status = DemandStatusEnding
	return true
}

func (d *Demand) MarkAsDelivered(now time.Time) bool {
	if d.Status != DemandStatusEnding {
		return false
	}
	d.Status = DemandStatusDelivered
	d.CompletedAt = &now
	return true
}
