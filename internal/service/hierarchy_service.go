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
	"gorm.io/gorm"
)

// HierarchyService manages the component hierarchy registry.
type HierarchyService interface {
	Create(ctx context.Context, req dto.CreateHierarchyRequest) (*dto.HierarchyResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.HierarchyResponse, error)
	ListActive(ctx context.Context) ([]dto.HierarchyResponse, error)
	Search(ctx context.Context, filter dto.HierarchyFilter) (*dto.HierarchyListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateHierarchyRequest) (*dto.HierarchyResponse, error)
	// Activate / Deactivate are idempotent: already in the target state is a
	// success without re-writing audit fields.
	Activate(ctx context.Context, id uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error

	AddComponent(ctx context.Context, hierarchyID uuid.UUID, req dto.CreateComponentRequest) (*dto.ComponentResponse, error)
	ListComponents(ctx context.Context, hierarchyID uuid.UUID) ([]dto.ComponentResponse, error)
	DeactivateComponent(ctx context.Context, componentID uuid.UUID) error

	UsageCounts(ctx context.Context) ([]dto.HierarchyUsage, error)
	TopUsed(ctx context.Context, limit int) ([]dto.HierarchyUsage, error)
}

type hierarchyService struct {
	repo repository.HierarchyRepository
}

func NewHierarchyService(repo repository.HierarchyRepository) HierarchyService {
	return &hierarchyService{repo: repo}
}

func mapHierarchy(h model.ProductComponentHierarchy) *dto.HierarchyResponse {
	resp := &dto.HierarchyResponse{
		ID:          h.ID.String(),
		Name:        h.Name,
		Description: h.Description,
		Notes:       h.Notes,
		Active:      h.Active,
	}
	for _, c := range h.Components {
		resp.Components = append(resp.Components, mapComponent(c))
	}
	return resp
}

func mapComponent(c model.ProductComponent) dto.ComponentResponse {
	return dto.ComponentResponse{
		ID:             c.ID.String(),
		HierarchyID:    c.HierarchyID.String(),
		Name:           c.Name,
		AdditionalCost: c.AdditionalCost,
		Active:         c.Active,
	}
}

func (s *hierarchyService) Create(ctx context.Context, req dto.CreateHierarchyRequest) (*dto.HierarchyResponse, error) {
	existing, err := s.repo.FindByNameCI(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.Newf(apierror.KindDuplicateKey, "hierarchy named %q already exists", req.Name)
	}

	now := time.Now()
	user := audit.UserID(ctx)
	h := &model.ProductComponentHierarchy{
		Name:           req.Name,
		Description:    req.Description,
		Notes:          req.Notes,
		Active:         true,
		CreatedBy:      user,
		CreatedAt:      now,
		LastModifiedBy: user,
		LastModifiedAt: now,
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return mapHierarchy(*h), nil
}

func (s *hierarchyService) GetByID(ctx context.Context, id uuid.UUID) (*dto.HierarchyResponse, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("hierarchy")
		}
		return nil, err
	}
	components, err := s.repo.ListComponents(ctx, id)
	if err != nil {
		return nil, err
	}
	h.Components = components
	return mapHierarchy(*h), nil
}

func (s *hierarchyService) ListActive(ctx context.Context) ([]dto.HierarchyResponse, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.HierarchyResponse, 0, len(list))
	for _, h := range list {
		result = append(result, *mapHierarchy(h))
	}
	return result, nil
}

func (s *hierarchyService) Search(ctx context.Context, filter dto.HierarchyFilter) (*dto.HierarchyListResponse, error) {
	clampPaging(&filter.Page, &filter.Limit)
	list, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.HierarchyListResponse{
		Data:  make([]dto.HierarchyResponse, 0, len(list)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, h := range list {
		resp.Data = append(resp.Data, *mapHierarchy(h))
	}
	resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return resp, nil
}

func (s *hierarchyService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateHierarchyRequest) (*dto.HierarchyResponse, error) {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("hierarchy")
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != h.Name {
		existing, err := s.repo.FindByNameCI(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, apierror.Newf(apierror.KindDuplicateKey, "hierarchy named %q already exists", *req.Name)
		}
		h.Name = *req.Name
	}
	if req.Description != nil {
		h.Description = req.Description
	}
	if req.Notes != nil {
		h.Notes = req.Notes
	}
	h.LastModifiedBy = audit.UserID(ctx)
	h.LastModifiedAt = time.Now()

	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return mapHierarchy(*h), nil
}

func (s *hierarchyService) Activate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *hierarchyService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *hierarchyService) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	h, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("hierarchy")
		}
		return err
	}
	// Already in the target state: short-circuit without re-stamping.
	if h.Active == active {
		return nil
	}
	h.Active = active
	h.LastModifiedBy = audit.UserID(ctx)
	h.LastModifiedAt = time.Now()
	return s.repo.Update(ctx, h)
}

func (s *hierarchyService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("hierarchy")
		}
		return err
	}

	refs, err := s.repo.CountRelationReferences(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apierror.New(apierror.KindConflict, "hierarchy is attached to composite products, detach it first")
	}
	return s.repo.Delete(ctx, id)
}

func (s *hierarchyService) AddComponent(ctx context.Context, hierarchyID uuid.UUID, req dto.CreateComponentRequest) (*dto.ComponentResponse, error) {
	if _, err := s.repo.FindByID(ctx, hierarchyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("hierarchy")
		}
		return nil, err
	}

	c := &model.ProductComponent{
		HierarchyID:    hierarchyID,
		Name:           req.Name,
		AdditionalCost: req.AdditionalCost,
		Active:         true,
	}
	if err := s.repo.CreateComponent(ctx, c); err != nil {
		return nil, err
	}
	resp := mapComponent(*c)
	return &resp, nil
}

func (s *hierarchyService) ListComponents(ctx context.Context, hierarchyID uuid.UUID) ([]dto.ComponentResponse, error) {
	list, err := s.repo.ListComponents(ctx, hierarchyID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.ComponentResponse, 0, len(list))
	for _, c := range list {
		result = append(result, mapComponent(c))
	}
	return result, nil
}

func (s *hierarchyService) DeactivateComponent(ctx context.Context, componentID uuid.UUID) error {
	c, err := s.repo.FindComponentByID(ctx, componentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("component")
		}
		return err
	}
	if !c.Active {
		return nil
	}
	c.Active = false
	return s.repo.UpdateComponent(ctx, c)
}

func (s *hierarchyService) UsageCounts(ctx context.Context) ([]dto.HierarchyUsage, error) {
	return s.repo.UsageCounts(ctx)
}

func (s *hierarchyService) TopUsed(ctx context.Context, limit int) ([]dto.HierarchyUsage, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.repo.TopUsed(ctx, limit)
}
