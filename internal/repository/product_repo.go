package repository

import (
	"context"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for the product catalog.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByCode(ctx context.Context, code string) (*model.Product, error)
	FindByType(ctx context.Context, t model.ProductType) ([]model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SoftDelete(ctx context.Context, id uuid.UUID, modifiedBy string) error
	Reactivate(ctx context.Context, id uuid.UUID, modifiedBy string) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Reference counts guarding hard deletion
	CountComponentReferences(ctx context.Context, productID uuid.UUID) (int64, error)
	CountOrderItemReferences(ctx context.Context, productID uuid.UUID) (int64, error)

	// Group extension
	AddGroupItem(ctx context.Context, item *model.ProductGroupItem) error
	ListGroupItems(ctx context.Context, groupProductID uuid.UUID) ([]model.ProductGroupItem, error)
	AddExchangeRule(ctx context.Context, rule *model.ProductGroupExchangeRule) error
	ListExchangeRules(ctx context.Context, groupProductID uuid.UUID) ([]model.ProductGroupExchangeRule, error)
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByCode(ctx context.Context, code string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByType(ctx context.Context, t model.ProductType) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).
		Where("product_type = ? AND active = true", t).
		Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Active filter: "false" = inactive, "all" = everything, default active
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}

	if filter.Code != "" {
		q = q.Where("code = ?", filter.Code)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.ProductType != "" {
		q = q.Where("product_type = ?", filter.ProductType)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) SoftDelete(ctx context.Context, id uuid.UUID, modifiedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":           false,
			"last_modified_by": modifiedBy,
			"last_modified_at": gorm.Expr("now()"),
		}).Error
}

func (r *productRepo) Reactivate(ctx context.Context, id uuid.UUID, modifiedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"active":           true,
			"last_modified_by": modifiedBy,
			"last_modified_at": gorm.Expr("now()"),
		}).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id).Error
}

func (r *productRepo) CountComponentReferences(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductComponentLink{}).
		Where("component_product_id = ? AND active = true", productID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) CountOrderItemReferences(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&count).Error
	return count, err
}

func (r *productRepo) AddGroupItem(ctx context.Context, item *model.ProductGroupItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *productRepo) ListGroupItems(ctx context.Context, groupProductID uuid.UUID) ([]model.ProductGroupItem, error) {
	var items []model.ProductGroupItem
	err := r.db.WithContext(ctx).Preload("ItemProduct").
		Where("group_product_id = ? AND active = true", groupProductID).
		Find(&items).Error
	return items, err
}

func (r *productRepo) AddExchangeRule(ctx context.Context, rule *model.ProductGroupExchangeRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *productRepo) ListExchangeRules(ctx context.Context, groupProductID uuid.UUID) ([]model.ProductGroupExchangeRule, error) {
	var rules []model.ProductGroupExchangeRule
	err := r.db.WithContext(ctx).
		Where("group_product_id = ? AND active = true", groupProductID).
		Find(&rules).Error
	return rules, err
}
