package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductionOrderStatus string

const (
	ProductionOrderStatusPending    ProductionOrderStatus = "pending"
	ProductionOrderStatusScheduled  ProductionOrderStatus = "scheduled"
	ProductionOrderStatusInProgress ProductionOrderStatus = "in_progress"
	ProductionOrderStatusPaused     ProductionOrderStatus = "paused"
	ProductionOrderStatusCompleted  ProductionOrderStatus = "completed"
	ProductionOrderStatusCancelled  ProductionOrderStatus = "cancelled"
	ProductionOrderStatusFailed     ProductionOrderStatus = "failed"
)

type ProductionOrderPriority string

const (
	PriorityLow    ProductionOrderPriority = "low"
	PriorityNormal ProductionOrderPriority = "normal"
	PriorityHigh   ProductionOrderPriority = "high"
	PriorityUrgent ProductionOrderPriority = "urgent"
)

// ProductionOrder is the schedulable unit of work producing quantity of a
// product for one order line. Time fields are minutes.
type ProductionOrder struct {
	ID                 uuid.UUID               `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID            uuid.UUID               `gorm:"type:uuid;not null;index"`
	OrderItemID        uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProductID          uuid.UUID               `gorm:"type:uuid;not null;index"`
	Quantity           decimal.Decimal         `gorm:"type:decimal(12,3);not null"`
	Status             ProductionOrderStatus   `gorm:"size:20;not null;default:pending;index"`
	Priority           ProductionOrderPriority `gorm:"size:10;not null;default:normal"`
	ScheduledStartDate *time.Time
	ScheduledEndDate   *time.Time
	ActualStartDate    *time.Time
	ActualEndDate      *time.Time
	AssignedTo         *string `gorm:"size:64"`
	EstimatedTime      int     `gorm:"not null;default:1"`
	ActualTime         *int
	Notes              *string `gorm:"type:text"`
	Active             bool    `gorm:"not null;default:true"`

	CreatedBy      string `gorm:"size:64;not null"`
	CreatedAt      time.Time
	LastModifiedBy string `gorm:"size:64;not null"`
	LastModifiedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// IsTerminal reports whether no further transition is possible.
func (p *ProductionOrder) IsTerminal() bool {
	switch p.Status {
	case ProductionOrderStatusCompleted, ProductionOrderStatusCancelled, ProductionOrderStatusFailed:
		return true
	}
	return false
}

// Guarded transitions, same contract as Demand: false means the current state
// does not allow the move and nothing was mutated.

func (p *ProductionOrder) Schedule(start, end time.Time) bool {
	if p.IsTerminal() {
		return false
	}
	p.Status = ProductionOrderStatusScheduled
	p.ScheduledStartDate = &start
	p.ScheduledEndDate = &end
	return true
}

func (p *ProductionOrder) Start(now time.Time, assignedTo string) bool {
	if p.Status != ProductionOrderStatusPending && p.Status != ProductionOrderStatusScheduled {
		return false
	}
	p.Status = ProductionOrderStatusInProgress
	p.ActualStartDate = &now
	if assignedTo != "" {
		p.AssignedTo = &assignedTo
	}
	return true
}

func (p *ProductionOrder) Pause() bool {
	if p.Status != ProductionOrderStatusInProgress {
		return false
	}
	p.Status = ProductionOrderStatusPaused
	return true
}

func (p *ProductionOrder) Resume() bool {
	if p.Status != ProductionOrderStatusPaused {
		return false
	}
	p.Status = ProductionOrderStatusInProgress
	return true
}

// Complete closes the order. When actualTime is nil it is derived from
// ActualStartDate; an order completed the instant it started still records
// one minute.
func (p *ProductionOrder) Complete(now time.Time, actualTime *int) bool {
	if p.Status != ProductionOrderStatusInProgress {
		return false
	}
	p.Status = ProductionOrderStatusCompleted
	p.ActualEndDate = &now
	switch {
	case actualTime != nil:
		p.ActualTime = actualTime
	case p.ActualStartDate != nil:
		minutes := int(now.Sub(*p.ActualStartDate).Minutes())
		if minutes < 1 {
			minutes = 1
		}
		p.ActualTime = &minutes
	}
	return true
}

func (p *ProductionOrder) Cancel(reason string) bool {
	if p.Status == ProductionOrderStatusCompleted || p.Status == ProductionOrderStatusCancelled {
		return false
	}
	p.Status = ProductionOrderStatusCancelled
	p.appendNote("cancelled: " + reason)
	return true
}

func (p *ProductionOrder) Fail(reason string) bool {
	if p.Status != ProductionOrderStatusInProgress {
		return false
	}
	p.Status = ProductionOrderStatusFailed
	p.appendNote("failed: " + reason)
	return true
}

func (p *ProductionOrder) appendNote(line string) {
	if line == "" {
		return
	}
	if p.Notes == nil || *p.Notes == "" {
		p.Notes = &line
		return
	}
	joined := *p.Notes + "\n" + line
	p.Notes = &joined
}
