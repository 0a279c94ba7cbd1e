package repository

import (
	"context"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompositeRepository handles the assembly graph: product×hierarchy junction
// rows and direct product-to-product component links. The specialized
// existence queries back the service-level pre-checks; the unique indexes on
// the models are the transactional safety net.
type CompositeRepository interface {
	// Junction rows
	CreateRelation(ctx context.Context, rel *model.CompositeProductXHierarchy) error
	FindRelationByID(ctx context.Context, id int64) (*model.CompositeProductXHierarchy, error)
	// PairExists reports an existing row for (productID, hierarchyID),
	// ignoring excludeID (0 = exclude nothing).
	PairExists(ctx context.Context, productID, hierarchyID uuid.UUID, excludeID int64) (bool, error)
	// AssemblyOrderExists reports a non-deleted row for productID holding the
	// given order, ignoring excludeID.
	AssemblyOrderExists(ctx context.Context, productID uuid.UUID, order int, excludeID int64) (bool, error)
	// NextAssemblyOrder returns max(existing)+1 for the product, 1 when none.
	NextAssemblyOrder(ctx context.Context, productID uuid.UUID) (int, error)
	ListRelationsByProduct(ctx context.Context, productID uuid.UUID) ([]model.CompositeProductXHierarchy, error)
	SearchRelations(ctx context.Context, filter dto.RelationFilter) ([]model.CompositeProductXHierarchy, int64, error)
	UpdateRelation(ctx context.Context, rel *model.CompositeProductXHierarchy) error
	DeleteRelation(ctx context.Context, id int64) error

	// Batch operations — each runs in a single transaction (all-or-nothing).
	CreateRelationsBatch(ctx context.Context, rels []model.CompositeProductXHierarchy) error
	UpdateRelationStatusBatch(ctx context.Context, ids []int64, active bool, modifiedBy string) error
	DeleteRelationsBatch(ctx context.Context, ids []int64) error

	// Direct component links
	CreateLink(ctx context.Context, link *model.ProductComponentLink) error
	FindLinkByID(ctx context.Context, id uuid.UUID) (*model.ProductComponentLink, error)
	ListLinksByComposite(ctx context.Context, compositeID uuid.UUID) ([]model.ProductComponentLink, error)
	DeleteLink(ctx context.Context, id uuid.UUID) error
}

type compositeRepo struct{ db *gorm.DB }

func NewCompositeRepository(db *gorm.DB) CompositeRepository { return &compositeRepo{db: db} }

func (r *compositeRepo) CreateRelation(ctx context.Context, rel *model.CompositeProductXHierarchy) error {
	return r.db.WithContext(ctx).Create(rel).Error
}

func (r *compositeRepo) FindRelationByID(ctx context.Context, id int64) (*model.CompositeProductXHierarchy, error) {
	var rel model.CompositeProductXHierarchy
	err := r.db.WithContext(ctx).First(&rel, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

func (r *compositeRepo) PairExists(ctx context.Context, productID, hierarchyID uuid.UUID, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.CompositeProductXHierarchy{}).
		Where("product_id = ? AND hierarchy_id = ?", productID, hierarchyID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *compositeRepo) AssemblyOrderExists(ctx context.Context, productID uuid.UUID, order int, excludeID int64) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.CompositeProductXHierarchy{}).
		Where("product_id = ? AND assembly_order = ?", productID, order)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *compositeRepo) NextAssemblyOrder(ctx context.Context, productID uuid.UUID) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).Model(&model.CompositeProductXHierarchy{}).
		Where("product_id = ?", productID).
		Select("max(assembly_order)").Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 1, nil
	}
	return *max + 1, nil
}

func (r *compositeRepo) ListRelationsByProduct(ctx context.Context, productID uuid.UUID) ([]model.CompositeProductXHierarchy, error) {
	var rels []model.CompositeProductXHierarchy
	err := r.db.WithContext(ctx).Preload("Hierarchy").
		Where("product_id = ?", productID).
		Order("assembly_order ASC").Find(&rels).Error
	return rels, err
}

func (r *compositeRepo) SearchRelations(ctx context.Context, filter dto.RelationFilter) ([]model.CompositeProductXHierarchy, int64, error) {
	var rels []model.CompositeProductXHierarchy
	var total int64

	q := r.db.WithContext(ctx).Model(&model.CompositeProductXHierarchy{})

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
	default:
		q = q.Where("active = true")
	}
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.HierarchyID != "" {
		q = q.Where("hierarchy_id = ?", filter.HierarchyID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Sort key is validated against a fixed whitelist at the DTO level.
	sort := filter.SortBy
	if sort == "" {
		sort = "assembly_order"
	}
	dir := "ASC"
	if filter.SortDir == "desc" {
		dir = "DESC"
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Hierarchy").Order(sort + " " + dir).
		Limit(filter.Limit).Offset(offset).Find(&rels).Error
	return rels, total, err
}

func (r *compositeRepo) UpdateRelation(ctx context.Context, rel *model.CompositeProductXHierarchy) error {
	return r.db.WithContext(ctx).Save(rel).Error
}

func (r *compositeRepo) DeleteRelation(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.CompositeProductXHierarchy{}, "id = ?", id).Error
}

func (r *compositeRepo) CreateRelationsBatch(ctx context.Context, rels []model.CompositeProductXHierarchy) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rels {
			if err := tx.Create(&rels[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *compositeRepo) UpdateRelationStatusBatch(ctx context.Context, ids []int64, active bool, modifiedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&model.CompositeProductXHierarchy{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"active":           active,
				"last_modified_by": modifiedBy,
				"last_modified_at": gorm.Expr("now()"),
			}).Error
	})
}

func (r *compositeRepo) DeleteRelationsBatch(ctx context.Context, ids []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Delete(&model.CompositeProductXHierarchy{}, "id IN ?", ids).Error
	})
}

func (r *compositeRepo) CreateLink(ctx context.Context, link *model.ProductComponentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *compositeRepo) FindLinkByID(ctx context.Context, id uuid.UUID) (*model.ProductComponentLink, error) {
	var link model.ProductComponentLink
	err := r.db.WithContext(ctx).First(&link, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *compositeRepo) ListLinksByComposite(ctx context.Context, compositeID uuid.UUID) ([]model.ProductComponentLink, error) {
	var links []model.ProductComponentLink
	err := r.db.WithContext(ctx).
		Where("composite_product_id = ? AND active = true", compositeID).
		Order("assembly_order ASC").Find(&links).Error
	return links, err
}

func (r *compositeRepo) DeleteLink(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.ProductComponentLink{}, "id = ?", id).Error
}
