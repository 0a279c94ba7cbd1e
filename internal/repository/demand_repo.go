package repository

import (
	"context"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DemandRepository is the data access contract for production demands.
type DemandRepository interface {
	Create(ctx context.Context, d *model.Demand) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Demand, error)
	List(ctx context.Context, filter dto.DemandFilter) ([]model.Demand, int64, error)
	ListByStatus(ctx context.Context, status model.DemandStatus) ([]model.Demand, error)
	ListByProductionOrder(ctx context.Context, productionOrderID uuid.UUID) ([]model.Demand, error)
	Update(ctx context.Context, d *model.Demand) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Overdue: expected before now, not yet delivered.
	ListOverdue(ctx context.Context, now time.Time) ([]model.Demand, error)
	// DueSoon: expected within the window, not yet delivered.
	ListDueSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.Demand, error)
}

type demandRepo struct{ db *gorm.DB }

func NewDemandRepository(db *gorm.DB) DemandRepository { return &demandRepo{db: db} }

func (r *demandRepo) Create(ctx context.Context, d *model.Demand) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *demandRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Demand, error) {
	var d model.Demand
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *demandRepo) List(ctx context.Context, filter dto.DemandFilter) ([]model.Demand, int64, error) {
	var demands []model.Demand
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Demand{}).Where("active = true")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.From != "" {
		q = q.Where("expected_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("expected_date <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("expected_date ASC").Limit(filter.Limit).Offset(offset).Find(&demands).Error
	return demands, total, err
}

func (r *demandRepo) ListByStatus(ctx context.Context, status model.DemandStatus) ([]model.Demand, error) {
	var demands []model.Demand
	err := r.db.WithContext(ctx).
		Where("status = ? AND active = true", status).
		Order("expected_date ASC").Find(&demands).Error
	return demands, err
}

func (r *demandRepo) ListByProductionOrder(ctx context.Context, productionOrderID uuid.UUID) ([]model.Demand, error) {
	var demands []model.Demand
	err := r.db.WithContext(ctx).
		Where("production_order_id = ? AND active = true", productionOrderID).
		Find(&demands).Error
	return demands, err
}

func (r *demandRepo) Update(ctx context.Context, d *model.Demand) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *demandRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Demand{}, "id = ?", id).Error
}

func (r *demandRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.Demand, error) {
	var demands []model.Demand
	err := r.db.WithContext(ctx).
		Where("expected_date < ? AND status <> ? AND active = true", now, model.DemandStatusDelivered).
		Order("expected_date ASC").Find(&demands).Error
	return demands, err
}

func (r *demandRepo) ListDueSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.Demand, error) {
	var demands []model.Demand
	err := r.db.WithContext(ctx).
		Where("expected_date BETWEEN ? AND ? AND status <> ? AND active = true",
			now, now.Add(window), model.DemandStatusDelivered).
		Order("expected_date ASC").Find(&demands).Error
	return demands, err
}
