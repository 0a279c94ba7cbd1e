package repository

import (
	"context"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductionOrderRepository is the data access contract for production orders.
type ProductionOrderRepository interface {
	Create(ctx context.Context, po *model.ProductionOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error)
	List(ctx context.Context, filter dto.ProductionOrderFilter) ([]model.ProductionOrder, int64, error)
	ListByStatus(ctx context.Context, status model.ProductionOrderStatus) ([]model.ProductionOrder, error)
	Update(ctx context.Context, po *model.ProductionOrder) error
	SoftDelete(ctx context.Context, id uuid.UUID, modifiedBy string) error

	// ListCompletedBetween feeds the efficiency report.
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]model.ProductionOrder, error)
	// ListOverdue: scheduled end in the past, still not finished.
	ListOverdue(ctx context.Context, now time.Time) ([]model.ProductionOrder, error)
	ListDueSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.ProductionOrder, error)
}

type productionOrderRepo struct{ db *gorm.DB }

func NewProductionOrderRepository(db *gorm.DB) ProductionOrderRepository {
	return &productionOrderRepo{db: db}
}

func (r *productionOrderRepo) Create(ctx context.Context, po *model.ProductionOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *productionOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	var po model.ProductionOrder
	err := r.db.WithContext(ctx).First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *productionOrderRepo) List(ctx context.Context, filter dto.ProductionOrderFilter) ([]model.ProductionOrder, int64, error) {
	var orders []model.ProductionOrder
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductionOrder{}).Where("active = true")

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.AssignedTo != "" {
		q = q.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.From != "" {
		q = q.Where("scheduled_start_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("scheduled_start_date <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&orders).Error
	return orders, total, err
}

func (r *productionOrderRepo) ListByStatus(ctx context.Context, status model.ProductionOrderStatus) ([]model.ProductionOrder, error) {
	var orders []model.ProductionOrder
	err := r.db.WithContext(ctx).
		Where("status = ? AND active = true", status).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *productionOrderRepo) Update(ctx context.Context, po *model.ProductionOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

func (r *productionOrderRepo) SoftDelete(ctx context.Context, id uuid.UUID, modifiedBy string) error {
	return r.db.WithContext(ctx).Model(&model.ProductionOrder{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":           false,
			"last_modified_by": modifiedBy,
			"last_modified_at": gorm.Expr("now()"),
		}).Error
}

func (r *productionOrderRepo) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]model.ProductionOrder, error) {
	var orders []model.ProductionOrder
	err := r.db.WithContext(ctx).
		Where("status = ? AND actual_end_date BETWEEN ? AND ?", model.ProductionOrderStatusCompleted, from, to).
		Find(&orders).Error
	return orders, err
}

func (r *productionOrderRepo) ListOverdue(ctx context.Context, now time.Time) ([]model.ProductionOrder, error) {
	var orders []model.ProductionOrder
	err := r.db.WithContext(ctx).
		Where("scheduled_end_date < ? AND status IN ? AND active = true",
			now, []model.ProductionOrderStatus{
				model.ProductionOrderStatusScheduled,
				model.ProductionOrderStatusInProgress,
				model.ProductionOrderStatusPaused,
			}).
		Order("scheduled_end_date ASC").Find(&orders).Error
	return orders, err
}

func (r *productionOrderRepo) ListDueSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.ProductionOrder, error) {
	var orders []model.ProductionOrder
	err := r.db.WithContext(ctx).
		Where("scheduled_end_date BETWEEN ? AND ? AND status IN ? AND active = true",
			now, now.Add(window), []model.ProductionOrderStatus{
				model.ProductionOrderStatusScheduled,
				model.ProductionOrderStatusInProgress,
				model.ProductionOrderStatusPaused,
			}).
		Order("scheduled_end_date ASC").Find(&orders).Error
	return orders, err
}
