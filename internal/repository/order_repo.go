package repository

import (
	"context"

	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository covers the minimal sales-order surface the production core
// needs: create with items, lookups by id, and line lookup for demand intake.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByNumber(ctx context.Context, number string) (*model.Order, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.OrderItem, error)
	List(ctx context.Context, page, limit int) ([]model.Order, int64, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

// Create persists the order and its items atomically.
func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindByNumber(ctx context.Context, number string) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where("number = ?", number).First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) FindItemByID(ctx context.Context, id uuid.UUID) (*model.OrderItem, error) {
	var item model.OrderItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *orderRepo) List(ctx context.Context, page, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("active = true")
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Items").Order("created_at DESC").
		Limit(limit).Offset((page - 1) * limit).Find(&orders).Error
	return orders, total, err
}
