package service

import (
	"context"
	"errors"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/apierror"
	"github.com/igor-spalenza/GesN-sub003/internal/audit"
	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"
	"github.com/igor-spalenza/GesN-sub003/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService defines the business logic contract for the product catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetByType(ctx context.Context, productType string) ([]dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	// Delete removes the row permanently; it is refused while the product is
	// referenced as a component or by any order line.
	Delete(ctx context.Context, id uuid.UUID) error

	// Group product composition.
	AddGroupItem(ctx context.Context, groupID uuid.UUID, req dto.AddGroupItemRequest) (*dto.GroupItemResponse, error)
	ListGroupItems(ctx context.Context, groupID uuid.UUID) ([]dto.GroupItemResponse, error)
	AddExchangeRule(ctx context.Context, groupID uuid.UUID, req dto.AddExchangeRuleRequest) (*dto.ExchangeRuleResponse, error)
	ListExchangeRules(ctx context.Context, groupID uuid.UUID) ([]dto.ExchangeRuleResponse, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func mapProduct(p model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:                   p.ID.String(),
		Code:                 p.Code,
		Name:                 p.Name,
		Description:          p.Description,
		ProductType:          string(p.ProductType),
		Category:             p.Category,
		UnitPrice:            p.UnitPrice,
		Cost:                 p.Cost,
		Active:               p.Active,
		AssemblyTimeMinutes:  p.AssemblyTimeMinutes,
		AssemblyInstructions: p.AssemblyInstructions,
		CreatedBy:            p.CreatedBy,
		LastModifiedBy:       p.LastModifiedBy,
	}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	// Code uniqueness is case-sensitive exact match.
	existing, err := s.repo.FindByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.Newf(apierror.KindDuplicateKey, "product code %q already exists", req.Code)
	}

	now := time.Now()
	user := audit.UserID(ctx)
	p := &model.Product{
		Code:                 req.Code,
		Name:                 req.Name,
		Description:          req.Description,
		ProductType:          model.ProductType(req.ProductType),
		Category:             req.Category,
		UnitPrice:            req.UnitPrice,
		Cost:                 req.Cost,
		Active:               true,
		AssemblyTimeMinutes:  req.AssemblyTimeMinutes,
		AssemblyInstructions: req.AssemblyInstructions,
		CreatedBy:            user,
		CreatedAt:            now,
		LastModifiedBy:       user,
		LastModifiedAt:       now,
	}
	if p.ProductType != model.ProductTypeComposite {
		// Assembly fields are meaningful for composites only.
		p.AssemblyTimeMinutes = 0
		p.AssemblyInstructions = nil
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return mapProduct(*p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product")
		}
		return nil, err
	}
	return mapProduct(*p), nil
}

func (s *productService) GetByType(ctx context.Context, productType string) ([]dto.ProductResponse, error) {
	products, err := s.repo.FindByType(ctx, model.ProductType(productType))
	if err != nil {
		return nil, err
	}
	result := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, *mapProduct(p))
	}
	return result, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	clampPaging(&filter.Page, &filter.Limit)
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, p := range products {
		resp.Data = append(resp.Data, *mapProduct(p))
	}
	resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return resp, nil
}

// Update never touches ProductType: the variant is fixed at creation.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product")
		}
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.Cost != nil {
		p.Cost = *req.Cost
	}
	if p.ProductType == model.ProductTypeComposite {
		if req.AssemblyTimeMinutes != nil {
			p.AssemblyTimeMinutes = *req.AssemblyTimeMinutes
		}
		if req.AssemblyInstructions != nil {
			p.AssemblyInstructions = req.AssemblyInstructions
		}
	}
	p.LastModifiedBy = audit.UserID(ctx)
	p.LastModifiedAt = time.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return mapProduct(*p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("product")
		}
		return err
	}
	return s.repo.SoftDelete(ctx, id, audit.UserID(ctx))
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("product")
		}
		return err
	}
	return s.repo.Reactivate(ctx, id, audit.UserID(ctx))
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("product")
		}
		return err
	}

	asComponent, err := s.repo.CountComponentReferences(ctx, id)
	if err != nil {
		return err
	}
	if asComponent > 0 {
		return apierror.New(apierror.KindConflict, "product is used as a component, deactivate it instead")
	}
	inOrders, err := s.repo.CountOrderItemReferences(ctx, id)
	if err != nil {
		return err
	}
	if inOrders > 0 {
		return apierror.New(apierror.KindConflict, "product appears in order lines, deactivate it instead")
	}

	return s.repo.Delete(ctx, id)
}

// resolveGroup loads the product and refuses anything that is not a Group.
func (s *productService) resolveGroup(ctx context.Context, groupID uuid.UUID) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("group product")
		}
		return nil, err
	}
	if p.ProductType != model.ProductTypeGroup {
		return nil, apierror.Newf(apierror.KindConflict, "product %s is not a group", groupID)
	}
	return p, nil
}

func (s *productService) AddGroupItem(ctx context.Context, groupID uuid.UUID, req dto.AddGroupItemRequest) (*dto.GroupItemResponse, error) {
	if _, err := s.resolveGroup(ctx, groupID); err != nil {
		return nil, err
	}
	itemID, err := uuid.Parse(req.ItemProductID)
	if err != nil {
		return nil, apierror.Validation([]string{"item_product_id is not a valid uuid"})
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("item product")
		}
		return nil, err
	}
	if !item.Active {
		return nil, apierror.Newf(apierror.KindConflict, "product %s is inactive", itemID)
	}

	qty := req.Quantity
	if qty.Sign() <= 0 {
		qty = decimal.NewFromInt(1)
	}
	row := &model.ProductGroupItem{
		GroupProductID: groupID,
		ItemProductID:  itemID,
		Quantity:       qty,
		IsDefault:      req.IsDefault,
		Active:         true,
	}
	if err := s.repo.AddGroupItem(ctx, row); err != nil {
		return nil, err
	}
	return mapGroupItem(*row), nil
}

func (s *productService) ListGroupItems(ctx context.Context, groupID uuid.UUID) ([]dto.GroupItemResponse, error) {
	if _, err := s.resolveGroup(ctx, groupID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListGroupItems(ctx, groupID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.GroupItemResponse, 0, len(items))
	for _, it := range items {
		result = append(result, *mapGroupItem(it))
	}
	return result, nil
}

func (s *productService) AddExchangeRule(ctx context.Context, groupID uuid.UUID, req dto.AddExchangeRuleRequest) (*dto.ExchangeRuleResponse, error) {
	if _, err := s.resolveGroup(ctx, groupID); err != nil {
		return nil, err
	}
	fromID, err := uuid.Parse(req.FromItemID)
	if err != nil {
		return nil, apierror.Validation([]string{"from_item_id is not a valid uuid"})
	}
	toID, err := uuid.Parse(req.ToItemID)
	if err != nil {
		return nil, apierror.Validation([]string{"to_item_id is not a valid uuid"})
	}
	if fromID == toID {
		return nil, apierror.Validation([]string{"an item cannot be exchanged for itself"})
	}

	// Both ends must be items of this group.
	items, err := s.repo.ListGroupItems(ctx, groupID)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]bool, len(items))
	for _, it := range items {
		known[it.ID] = true
	}
	if !known[fromID] || !known[toID] {
		return nil, apierror.Validation([]string{"exchange rule must reference items of the same group"})
	}

	ratio := req.Ratio
	if ratio.Sign() <= 0 {
		ratio = decimal.NewFromInt(1)
	}
	row := &model.ProductGroupExchangeRule{
		GroupProductID: groupID,
		FromItemID:     fromID,
		ToItemID:       toID,
		Ratio:          ratio,
		Active:         true,
	}
	if err := s.repo.AddExchangeRule(ctx, row); err != nil {
		return nil, err
	}
	return mapExchangeRule(*row), nil
}

func (s *productService) ListExchangeRules(ctx context.Context, groupID uuid.UUID) ([]dto.ExchangeRuleResponse, error) {
	if _, err := s.resolveGroup(ctx, groupID); err != nil {
		return nil, err
	}
	rules, err := s.repo.ListExchangeRules(ctx, groupID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ExchangeRuleResponse, 0, len(rules))
	for _, r := range rules {
		result = append(result, *mapExchangeRule(r))
	}
	return result, nil
}

func mapGroupItem(it model.ProductGroupItem) *dto.GroupItemResponse {
	return &dto.GroupItemResponse{
		ID:            it.ID.String(),
		ItemProductID: it.ItemProductID.String(),
		Quantity:      it.Quantity,
		IsDefault:     it.IsDefault,
		Active:        it.Active,
	}
}

func mapExchangeRule(r model.ProductGroupExchangeRule) *dto.ExchangeRuleResponse {
	return &dto.ExchangeRuleResponse{
		ID:         r.ID.String(),
		FromItemID: r.FromItemID.String(),
		ToItemID:   r.ToItemID.String(),
		Ratio:      r.Ratio,
		Active:     r.Active,
	}
}
