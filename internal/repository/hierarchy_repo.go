package repository

import (
	"context"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HierarchyRepository is the data access contract for the component hierarchy
// registry and its members.
type HierarchyRepository interface {
	Create(ctx context.Context, h *model.ProductComponentHierarchy) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductComponentHierarchy, error)
	// FindByNameCI matches the name case-insensitively (registry names are
	// unique regardless of casing).
	FindByNameCI(ctx context.Context, name string) (*model.ProductComponentHierarchy, error)
	ListActive(ctx context.Context) ([]model.ProductComponentHierarchy, error)
	Search(ctx context.Context, filter dto.HierarchyFilter) ([]model.ProductComponentHierarchy, int64, error)
	Update(ctx context.Context, h *model.ProductComponentHierarchy) error
	Delete(ctx context.Context, id uuid.UUID) error

	// CountRelationReferences guards deletion: a hierarchy referenced by any
	// junction row cannot be removed.
	CountRelationReferences(ctx context.Context, hierarchyID uuid.UUID) (int64, error)

	// Aggregates
	UsageCounts(ctx context.Context) ([]dto.HierarchyUsage, error)
	TopUsed(ctx context.Context, limit int) ([]dto.HierarchyUsage, error)

	// Components
	CreateComponent(ctx context.Context, c *model.ProductComponent) error
	FindComponentByID(ctx context.Context, id uuid.UUID) (*model.ProductComponent, error)
	ListComponents(ctx context.Context, hierarchyID uuid.UUID) ([]model.ProductComponent, error)
	UpdateComponent(ctx context.Context, c *model.ProductComponent) error
}

type hierarchyRepo struct{ db *gorm.DB }

func NewHierarchyRepository(db *gorm.DB) HierarchyRepository { return &hierarchyRepo{db: db} }

func (r *hierarchyRepo) Create(ctx context.Context, h *model.ProductComponentHierarchy) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *hierarchyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductComponentHierarchy, error) {
	var h model.ProductComponentHierarchy
	err := r.db.WithContext(ctx).First(&h, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hierarchyRepo) FindByNameCI(ctx context.Context, name string) (*model.ProductComponentHierarchy, error) {
	var h model.ProductComponentHierarchy
	err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *hierarchyRepo) ListActive(ctx context.Context) ([]model.ProductComponentHierarchy, error) {
	var list []model.ProductComponentHierarchy
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&list).Error
	return list, err
}

func (r *hierarchyRepo) Search(ctx context.Context, filter dto.HierarchyFilter) ([]model.ProductComponentHierarchy, int64, error) {
	var list []model.ProductComponentHierarchy
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductComponentHierarchy{})

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		q = q.Where("name ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&list).Error
	return list, total, err
}

func (r *hierarchyRepo) Update(ctx context.Context, h *model.ProductComponentHierarchy) error {
	return r.db.WithContext(ctx).Save(h).Error
}

func (r *hierarchyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProductComponentHierarchy{}, "id = ?", id).Error
}

func (r *hierarchyRepo) CountRelationReferences(ctx context.Context, hierarchyID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.CompositeProductXHierarchy{}).
		Where("hierarchy_id = ?", hierarchyID).
		Count(&count).Error
	return count, err
}

func (r *hierarchyRepo) UsageCounts(ctx context.Context) ([]dto.HierarchyUsage, error) {
	var usages []dto.HierarchyUsage
	err := r.db.WithContext(ctx).Model(&model.ProductComponentHierarchy{}).
		Select("product_component_hierarchies.id AS hierarchy_id, product_component_hierarchies.name, count(cpxh.id) AS used_by").
		Joins("LEFT JOIN composite_product_x_hierarchies cpxh ON cpxh.hierarchy_id = product_component_hierarchies.id AND cpxh.active = true").
		Group("product_component_hierarchies.id, product_component_hierarchies.name").
		Scan(&usages).Error
	return usages, err
}

func (r *hierarchyRepo) TopUsed(ctx context.Context, limit int) ([]dto.HierarchyUsage, error) {
	var usages []dto.HierarchyUsage
	err := r.db.WithContext(ctx).Model(&model.ProductComponentHierarchy{}).
		Select("product_component_hierarchies.id AS hierarchy_id, product_component_hierarchies.name, count(cpxh.id) AS used_by").
		Joins("JOIN composite_product_x_hierarchies cpxh ON cpxh.hierarchy_id = product_component_hierarchies.id AND cpxh.active = true").
		Group("product_component_hierarchies.id, product_component_hierarchies.name").
		Order("used_by DESC").
		Limit(limit).
		Scan(&usages).Error
	return usages, err
}

func (r *hierarchyRepo) CreateComponent(ctx context.Context, c *model.ProductComponent) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *hierarchyRepo) FindComponentByID(ctx context.Context, id uuid.UUID) (*model.ProductComponent, error) {
	var c model.ProductComponent
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *hierarchyRepo) ListComponents(ctx context.Context, hierarchyID uuid.UUID) ([]model.ProductComponent, error) {
	var list []model.ProductComponent
	err := r.db.WithContext(ctx).
		Where("hierarchy_id = ? AND active = true", hierarchyID).
		Order("name ASC").Find(&list).Error
	return list, err
}

func (r *hierarchyRepo) UpdateComponent(ctx context.Context, c *model.ProductComponent) error {
	return r.db.WithContext(ctx).Save(c).Error
}
