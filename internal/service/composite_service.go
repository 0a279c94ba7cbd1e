package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/apierror"
	"github.com/igor-spalenza/GesN-sub003/internal/audit"
	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"
	"github.com/igor-spalenza/GesN-sub003/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// maxComponentDepth caps the cycle-detection traversal so it terminates even
// when pre-existing corrupted data already contains a cycle that does not pass
// through the candidate product.
const maxComponentDepth = 32

// CompositeService owns the assembly graph of composite products: the
// product×hierarchy junction rows with their quantity and ordering invariants,
// and the direct product-to-product component links with cycle prevention.
type CompositeService interface {
	// Junction rows
	CreateRelation(ctx context.Context, req dto.CreateRelationRequest) (*dto.RelationResponse, error)
	GetRelation(ctx context.Context, id int64) (*dto.RelationResponse, error)
	ListRelationsByProduct(ctx context.Context, productID uuid.UUID) ([]dto.RelationResponse, error)
	SearchRelations(ctx context.Context, filter dto.RelationFilter) ([]dto.RelationResponse, int64, error)
	UpdateRelation(ctx context.Context, id int64, req dto.UpdateRelationRequest) (*dto.RelationResponse, error)
	DeleteRelation(ctx context.Context, id int64) error
	NextAssemblyOrder(ctx context.Context, productID uuid.UUID) (int, error)

	// Batch operations — all-or-nothing
	CreateRelationsBatch(ctx context.Context, req dto.BatchCreateRelationsRequest) ([]dto.RelationResponse, error)
	UpdateRelationStatusBatch(ctx context.Context, req dto.BatchUpdateStatusRequest) error
	DeleteRelationsBatch(ctx context.Context, req dto.BatchDeleteRequest) error
	DuplicateConfiguration(ctx context.Context, req dto.DuplicateConfigurationRequest) ([]dto.RelationResponse, error)

	// Direct components with cycle prevention
	AddComponentLink(ctx context.Context, req dto.CreateComponentLinkRequest) (*dto.ComponentLinkResponse, error)
	ListComponentLinks(ctx context.Context, compositeID uuid.UUID) ([]dto.ComponentLinkResponse, error)
	RemoveComponentLink(ctx context.Context, id uuid.UUID) error

	// Validation pass — returns every violation, not just the first
	ValidateHierarchyConfiguration(ctx context.Context, productID uuid.UUID) (*dto.ConfigurationReport, error)
}

type compositeService struct {
	repo          repository.CompositeRepository
	productRepo   repository.ProductRepository
	hierarchyRepo repository.HierarchyRepository
}

func NewCompositeService(
	repo repository.CompositeRepository,
	productRepo repository.ProductRepository,
	hierarchyRepo repository.HierarchyRepository,
) CompositeService {
	return &compositeService{repo: repo, productRepo: productRepo, hierarchyRepo: hierarchyRepo}
}

func mapRelation(rel model.CompositeProductXHierarchy) *dto.RelationResponse {
	resp := &dto.RelationResponse{
		ID:            rel.ID,
		ProductID:     rel.ProductID.String(),
		HierarchyID:   rel.HierarchyID.String(),
		MinQuantity:   rel.MinQuantity,
		MaxQuantity:   rel.MaxQuantity,
		IsOptional:    rel.IsOptional,
		AssemblyOrder: rel.AssemblyOrder,
		Notes:         rel.Notes,
		Active:        rel.Active,
	}
	if rel.Hierarchy != nil {
		resp.HierarchyName = rel.Hierarchy.Name
	}
	return resp
}

// quantityViolations collects every quantity-range problem of a relation.
func quantityViolations(minQty, maxQty int) []string {
	var reasons []string
	if minQty <= 0 {
		reasons = append(reasons, fmt.Sprintf("min quantity must be at least 1, got %d", minQty))
	}
	if maxQty > 0 && maxQty < minQty {
		reasons = append(reasons, fmt.Sprintf("max quantity %d is below min quantity %d", maxQty, minQty))
	}
	return reasons
}

// resolveComposite fetches the product and confirms it is a composite.
func (s *compositeService) resolveComposite(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product")
		}
		return nil, err
	}
	if p.ProductType != model.ProductTypeComposite {
		return nil, apierror.Newf(apierror.KindConflict, "product %s is not a composite", p.Code)
	}
	return p, nil
}

// buildRelation validates one junction candidate against all invariants and
// returns the model to persist. excludeID is the row being updated, 0 on create.
func (s *compositeService) buildRelation(ctx context.Context, req dto.CreateRelationRequest, excludeID int64) (*model.CompositeProductXHierarchy, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation([]string{"product_id is not a valid uuid"})
	}
	hierarchyID, err := uuid.Parse(req.HierarchyID)
	if err != nil {
		return nil, apierror.Validation([]string{"hierarchy_id is not a valid uuid"})
	}

	if _, err := s.resolveComposite(ctx, productID); err != nil {
		return nil, err
	}
	if _, err := s.hierarchyRepo.FindByID(ctx, hierarchyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("hierarchy")
		}
		return nil, err
	}

	if reasons := quantityViolations(req.MinQuantity, req.MaxQuantity); len(reasons) > 0 {
		return nil, apierror.Validation(reasons)
	}

	// At most one junction row per (product, hierarchy).
	pairTaken, err := s.repo.PairExists(ctx, productID, hierarchyID, excludeID)
	if err != nil {
		return nil, err
	}
	if pairTaken {
		return nil, apierror.New(apierror.KindConflict, "this hierarchy is already attached to the product")
	}

	// Assembly order: 0 requests the next free position; an explicit value
	// must be unique within the product.
	order := req.AssemblyOrder
	if order == 0 {
		order, err = s.repo.NextAssemblyOrder(ctx, productID)
		if err != nil {
			return nil, err
		}
	} else {
		taken, err := s.repo.AssemblyOrderExists(ctx, productID, order, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierror.Newf(apierror.KindConflict, "assembly order %d is already taken for this product", order)
		}
	}

	now := time.Now()
	user := audit.UserID(ctx)
	return &model.CompositeProductXHierarchy{
		ProductID:      productID,
		HierarchyID:    hierarchyID,
		MinQuantity:    req.MinQuantity,
		MaxQuantity:    req.MaxQuantity,
		IsOptional:     req.IsOptional,
		AssemblyOrder:  order,
		Notes:          req.Notes,
		Active:         true,
		CreatedBy:      user,
		CreatedAt:      now,
		LastModifiedBy: user,
		LastModifiedAt: now,
	}, nil
}

func (s *compositeService) CreateRelation(ctx context.Context, req dto.CreateRelationRequest) (*dto.RelationResponse, error) {
	rel, err := s.buildRelation(ctx, req, 0)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateRelation(ctx, rel); err != nil {
		// The unique indexes are the final arbiter under concurrency.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.New(apierror.KindConflict, "conflicting relation was created concurrently")
		}
		return nil, err
	}
	return mapRelation(*rel), nil
}

func (s *compositeService) GetRelation(ctx context.Context, id int64) (*dto.RelationResponse, error) {
	rel, err := s.repo.FindRelationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("relation")
		}
		return nil, err
	}
	return mapRelation(*rel), nil
}

func (s *compositeService) ListRelationsByProduct(ctx context.Context, productID uuid.UUID) ([]dto.RelationResponse, error) {
	rels, err := s.repo.ListRelationsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.RelationResponse, 0, len(rels))
	for _, rel := range rels {
		result = append(result, *mapRelation(rel))
	}
	return result, nil
}

func (s *compositeService) SearchRelations(ctx context.Context, filter dto.RelationFilter) ([]dto.RelationResponse, int64, error) {
	clampPaging(&filter.Page, &filter.Limit)
	rels, total, err := s.repo.SearchRelations(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.RelationResponse, 0, len(rels))
	for _, rel := range rels {
		result = append(result, *mapRelation(rel))
	}
	return result, total, nil
}

func (s *compositeService) UpdateRelation(ctx context.Context, id int64, req dto.UpdateRelationRequest) (*dto.RelationResponse, error) {
	rel, err := s.repo.FindRelationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("relation")
		}
		return nil, err
	}

	minQty := rel.MinQuantity
	maxQty := rel.MaxQuantity
	if req.MinQuantity != nil {
		minQty = *req.MinQuantity
	}
	if req.MaxQuantity != nil {
		maxQty = *req.MaxQuantity
	}
	if reasons := quantityViolations(minQty, maxQty); len(reasons) > 0 {
		return nil, apierror.Validation(reasons)
	}

	if req.AssemblyOrder != nil && *req.AssemblyOrder != rel.AssemblyOrder {
		taken, err := s.repo.AssemblyOrderExists(ctx, rel.ProductID, *req.AssemblyOrder, rel.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierror.Newf(apierror.KindConflict, "assembly order %d is already taken for this product", *req.AssemblyOrder)
		}
		rel.AssemblyOrder = *req.AssemblyOrder
	}

	rel.MinQuantity = minQty
	rel.MaxQuantity = maxQty
	if req.IsOptional != nil {
		rel.IsOptional = *req.IsOptional
	}
	if req.Notes != nil {
		rel.Notes = req.Notes
	}
	rel.LastModifiedBy = audit.UserID(ctx)
	rel.LastModifiedAt = time.Now()

	if err := s.repo.UpdateRelation(ctx, rel); err != nil {
		return nil, err
	}
	return mapRelation(*rel), nil
}

func (s *compositeService) DeleteRelation(ctx context.Context, id int64) error {
	if _, err := s.repo.FindRelationByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("relation")
		}
		return err
	}
	return s.repo.DeleteRelation(ctx, id)
}

func (s *compositeService) NextAssemblyOrder(ctx context.Context, productID uuid.UUID) (int, error) {
	if _, err := s.resolveComposite(ctx, productID); err != nil {
		return 0, err
	}
	return s.repo.NextAssemblyOrder(ctx, productID)
}

// CreateRelationsBatch validates every candidate up front, then persists the
// whole set in one transaction. Orders requested as 0 are allocated
// sequentially after the current maximum.
func (s *compositeService) CreateRelationsBatch(ctx context.Context, req dto.BatchCreateRelationsRequest) ([]dto.RelationResponse, error) {
	rels := make([]model.CompositeProductXHierarchy, 0, len(req.Relations))
	ordersSeen := make(map[string]map[int]bool) // productID → orders claimed in this batch

	for i, create := range req.Relations {
		rel, err := s.buildRelation(ctx, create, 0)
		if err != nil {
			return nil, fmt.Errorf("relation %d: %w", i, err)
		}
		claimed := ordersSeen[create.ProductID]
		if claimed == nil {
			claimed = make(map[int]bool)
			ordersSeen[create.ProductID] = claimed
		}
		// Auto-allocated orders skip past ones already claimed in this batch;
		// an explicitly requested order that collides is the caller's error.
		if create.AssemblyOrder == 0 {
			for claimed[rel.AssemblyOrder] {
				rel.AssemblyOrder++
			}
		} else if claimed[rel.AssemblyOrder] {
			return nil, fmt.Errorf("relation %d: %w", i, apierror.Newf(apierror.KindConflict,
				"assembly order %d is requested more than once for product %s", rel.AssemblyOrder, create.ProductID))
		}
		claimed[rel.AssemblyOrder] = true
		rels = append(rels, *rel)
	}

	if err := s.repo.CreateRelationsBatch(ctx, rels); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.New(apierror.KindConflict, "conflicting relation was created concurrently")
		}
		return nil, err
	}

	result := make([]dto.RelationResponse, 0, len(rels))
	for _, rel := range rels {
		result = append(result, *mapRelation(rel))
	}
	return result, nil
}

func (s *compositeService) UpdateRelationStatusBatch(ctx context.Context, req dto.BatchUpdateStatusRequest) error {
	return s.repo.UpdateRelationStatusBatch(ctx, req.IDs, req.Active, audit.UserID(ctx))
}

func (s *compositeService) DeleteRelationsBatch(ctx context.Context, req dto.BatchDeleteRequest) error {
	return s.repo.DeleteRelationsBatch(ctx, req.IDs)
}

// DuplicateConfiguration copies every active relation of the source product as
// fresh rows targeting the destination, preserving quantities, order and
// optionality. All-or-nothing.
func (s *compositeService) DuplicateConfiguration(ctx context.Context, req dto.DuplicateConfigurationRequest) ([]dto.RelationResponse, error) {
	sourceID, err := uuid.Parse(req.SourceProductID)
	if err != nil {
		return nil, apierror.Validation([]string{"source_product_id is not a valid uuid"})
	}
	targetID, err := uuid.Parse(req.TargetProductID)
	if err != nil {
		return nil, apierror.Validation([]string{"target_product_id is not a valid uuid"})
	}
	if sourceID == targetID {
		return nil, apierror.New(apierror.KindConflict, "source and target products are the same")
	}

	if _, err := s.resolveComposite(ctx, sourceID); err != nil {
		return nil, err
	}
	if _, err := s.resolveComposite(ctx, targetID); err != nil {
		return nil, err
	}

	source, err := s.repo.ListRelationsByProduct(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := audit.UserID(ctx)
	copies := make([]model.CompositeProductXHierarchy, 0, len(source))
	for _, rel := range source {
		if !rel.Active {
			continue
		}
		pairTaken, err := s.repo.PairExists(ctx, targetID, rel.HierarchyID, 0)
		if err != nil {
			return nil, err
		}
		if pairTaken {
			return nil, apierror.Newf(apierror.KindConflict, "target already has hierarchy %s attached", rel.HierarchyID)
		}
		orderTaken, err := s.repo.AssemblyOrderExists(ctx, targetID, rel.AssemblyOrder, 0)
		if err != nil {
			return nil, err
		}
		if orderTaken {
			return nil, apierror.Newf(apierror.KindConflict, "target already uses assembly order %d", rel.AssemblyOrder)
		}
		copies = append(copies, model.CompositeProductXHierarchy{
			ProductID:      targetID,
			HierarchyID:    rel.HierarchyID,
			MinQuantity:    rel.MinQuantity,
			MaxQuantity:    rel.MaxQuantity,
			IsOptional:     rel.IsOptional,
			AssemblyOrder:  rel.AssemblyOrder,
			Notes:          rel.Notes,
			Active:         true,
			CreatedBy:      user,
			CreatedAt:      now,
			LastModifiedBy: user,
			LastModifiedAt: now,
		})
	}

	if len(copies) == 0 {
		return nil, apierror.New(apierror.KindConflict, "source product has no active relations to copy")
	}
	if err := s.repo.CreateRelationsBatch(ctx, copies); err != nil {
		return nil, err
	}

	result := make([]dto.RelationResponse, 0, len(copies))
	for _, rel := range copies {
		result = append(result, *mapRelation(rel))
	}
	return result, nil
}

// AddComponentLink attaches a direct component to a composite after confirming
// the new edge cannot close a cycle.
func (s *compositeService) AddComponentLink(ctx context.Context, req dto.CreateComponentLinkRequest) (*dto.ComponentLinkResponse, error) {
	compositeID, err := uuid.Parse(req.CompositeProductID)
	if err != nil {
		return nil, apierror.Validation([]string{"composite_product_id is not a valid uuid"})
	}
	componentID, err := uuid.Parse(req.ComponentProductID)
	if err != nil {
		return nil, apierror.Validation([]string{"component_product_id is not a valid uuid"})
	}

	if _, err := s.resolveComposite(ctx, compositeID); err != nil {
		return nil, err
	}
	component, err := s.productRepo.FindByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("component product")
		}
		return nil, err
	}

	if compositeID == componentID {
		return nil, apierror.New(apierror.KindCircularDependency, "a product cannot contain itself")
	}
	if req.Quantity.Sign() <= 0 {
		return nil, apierror.Validation([]string{"quantity must be positive"})
	}

	// Walk the component graph from the candidate: if the composite is
	// reachable, this edge would close a cycle.
	visited := map[uuid.UUID]bool{}
	reachable, err := s.reaches(ctx, componentID, compositeID, visited, 0)
	if err != nil {
		return nil, err
	}
	if reachable {
		return nil, apierror.Newf(apierror.KindCircularDependency,
			"adding %s as a component of %s would create a cycle", component.Code, compositeID)
	}

	order := req.AssemblyOrder
	if order == 0 {
		links, err := s.repo.ListLinksByComposite(ctx, compositeID)
		if err != nil {
			return nil, err
		}
		order = 1
		for _, l := range links {
			if l.AssemblyOrder >= order {
				order = l.AssemblyOrder + 1
			}
		}
	}

	link := &model.ProductComponentLink{
		CompositeProductID: compositeID,
		ComponentProductID: componentID,
		Quantity:           req.Quantity,
		AssemblyOrder:      order,
		Active:             true,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierror.New(apierror.KindConflict, "this component is already linked to the product")
		}
		return nil, err
	}

	return &dto.ComponentLinkResponse{
		ID:                 link.ID.String(),
		CompositeProductID: link.CompositeProductID.String(),
		ComponentProductID: link.ComponentProductID.String(),
		ComponentName:      component.Name,
		Quantity:           link.Quantity,
		AssemblyOrder:      link.AssemblyOrder,
		Active:             link.Active,
	}, nil
}

// reaches reports whether target is reachable from current by following
// component edges. The visited set and the depth cap make the traversal
// terminate even on corrupted data containing unrelated cycles.
func (s *compositeService) reaches(ctx context.Context, current, target uuid.UUID, visited map[uuid.UUID]bool, depth int) (bool, error) {
	if depth >= maxComponentDepth {
		return false, apierror.Newf(apierror.KindValidationFailed,
			"component graph exceeds depth %d, data may be corrupted", maxComponentDepth)
	}
	if visited[current] {
		return false, nil
	}
	visited[current] = true

	links, err := s.repo.ListLinksByComposite(ctx, current)
	if err != nil {
		return false, err
	}
	for _, link := range links {
		if link.ComponentProductID == target {
			return true, nil
		}
		found, err := s.reaches(ctx, link.ComponentProductID, target, visited, depth+1)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func (s *compositeService) ListComponentLinks(ctx context.Context, compositeID uuid.UUID) ([]dto.ComponentLinkResponse, error) {
	links, err := s.repo.ListLinksByComposite(ctx, compositeID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ComponentLinkResponse, 0, len(links))
	for _, link := range links {
		resp := dto.ComponentLinkResponse{
			ID:                 link.ID.String(),
			CompositeProductID: link.CompositeProductID.String(),
			ComponentProductID: link.ComponentProductID.String(),
			Quantity:           link.Quantity,
			AssemblyOrder:      link.AssemblyOrder,
			Active:             link.Active,
		}
		if link.ComponentProduct != nil {
			resp.ComponentName = link.ComponentProduct.Name
		}
		result = append(result, resp)
	}
	return result, nil
}

func (s *compositeService) RemoveComponentLink(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindLinkByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("component link")
		}
		return err
	}
	return s.repo.DeleteLink(ctx, id)
}

// ValidateHierarchyConfiguration checks a composite product's full relation
// set and reports every violation found.
func (s *compositeService) ValidateHierarchyConfiguration(ctx context.Context, productID uuid.UUID) (*dto.ConfigurationReport, error) {
	if _, err := s.resolveComposite(ctx, productID); err != nil {
		return nil, err
	}

	rels, err := s.repo.ListRelationsByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	report := &dto.ConfigurationReport{ProductID: productID.String()}

	activeCount := 0
	ordersSeen := make(map[int][]string)
	for _, rel := range rels {
		name := rel.HierarchyID.String()
		if rel.Hierarchy != nil {
			name = rel.Hierarchy.Name
		}
		if rel.Active {
			activeCount++
		}
		ordersSeen[rel.AssemblyOrder] = append(ordersSeen[rel.AssemblyOrder], name)
		for _, reason := range quantityViolations(rel.MinQuantity, rel.MaxQuantity) {
			report.Violations = append(report.Violations, fmt.Sprintf("relation %q: %s", name, reason))
		}
	}

	if activeCount == 0 {
		report.Violations = append(report.Violations, "no active hierarchy relation configured")
	}
	for order, names := range ordersSeen {
		if len(names) > 1 {
			report.Violations = append(report.Violations,
				fmt.Sprintf("assembly order %d is shared by %d relations", order, len(names)))
		}
	}

	report.Valid = len(report.Violations) == 0
	return report, nil
}
