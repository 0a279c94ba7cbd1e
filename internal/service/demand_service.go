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
	"github.com/igor-spalenza/GesN-sub003/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultDemandLead is applied when a demand is created without an expected date.
const defaultDemandLead = 7 * 24 * time.Hour

// DemandService manages the demand lifecycle. Transitions are guarded: an
// illegal step reports Allowed=false and leaves the demand untouched.
type DemandService interface {
	Create(ctx context.Context, req dto.CreateDemandRequest) (*dto.DemandResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.DemandResponse, error)
	List(ctx context.Context, filter dto.DemandFilter) (*dto.DemandListResponse, error)
	ListByStatus(ctx context.Context, status string) ([]dto.DemandResponse, error)
	ListByProductionOrder(ctx context.Context, productionOrderID uuid.UUID) ([]dto.DemandResponse, error)

	Confirm(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error)
	MarkAsProduced(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error)
	MarkAsEnding(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error)
	MarkAsDelivered(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error)

	AttachProductionOrder(ctx context.Context, id uuid.UUID, req dto.AttachProductionOrderRequest) (*dto.DemandResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	ListOverdue(ctx context.Context) ([]dto.DemandResponse, error)
	ListDueSoon(ctx context.Context, window time.Duration) ([]dto.DemandResponse, error)
}

type demandService struct {
	repo                repository.DemandRepository
	productRepo         repository.ProductRepository
	productionOrderRepo repository.ProductionOrderRepository
	dispatcher          *worker.Dispatcher
}

func NewDemandService(
	repo repository.DemandRepository,
	productRepo repository.ProductRepository,
	productionOrderRepo repository.ProductionOrderRepository,
	dispatcher *worker.Dispatcher,
) DemandService {
	return &demandService{
		repo:                repo,
		productRepo:         productRepo,
		productionOrderRepo: productionOrderRepo,
		dispatcher:          dispatcher,
	}
}

func mapDemand(d model.Demand) *dto.DemandResponse {
	resp := &dto.DemandResponse{
		ID:           d.ID.String(),
		OrderItemID:  d.OrderItemID.String(),
		ProductID:    d.ProductID.String(),
		Quantity:     d.Quantity,
		Status:       string(d.Status),
		ExpectedDate: d.ExpectedDate,
		StartedAt:    d.StartedAt,
		CompletedAt:  d.CompletedAt,
		Notes:        d.Notes,
		Active:       d.Active,
	}
	if d.ProductionOrderID != nil {
		s := d.ProductionOrderID.String()
		resp.ProductionOrderID = &s
	}
	return resp
}

func (s *demandService) Create(ctx context.Context, req dto.CreateDemandRequest) (*dto.DemandResponse, error) {
	orderItemID, err := uuid.Parse(req.OrderItemID)
	if err != nil {
		return nil, apierror.Validation([]string{"order_item_id is not a valid uuid"})
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation([]string{"product_id is not a valid uuid"})
	}
	if req.Quantity.Sign() <= 0 {
		return nil, apierror.Validation([]string{"quantity must be positive"})
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product")
		}
		return nil, err
	}

	now := time.Now()
	expected := now.Add(defaultDemandLead)
	if req.ExpectedDate != nil {
		if req.ExpectedDate.Before(now) {
			return nil, apierror.Validation([]string{"expected date cannot be in the past"})
		}
		expected = *req.ExpectedDate
	}

	user := audit.UserID(ctx)
	d := &model.Demand{
		OrderItemID:    orderItemID,
		ProductID:      productID,
		Quantity:       req.Quantity,
		Status:         model.DemandStatusPending,
		ExpectedDate:   expected,
		Notes:          req.Notes,
		Active:         true,
		CreatedBy:      user,
		CreatedAt:      now,
		LastModifiedBy: user,
		LastModifiedAt: now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return mapDemand(*d), nil
}

func (s *demandService) GetByID(ctx context.Context, id uuid.UUID) (*dto.DemandResponse, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapDemand(*d), nil
}

func (s *demandService) find(ctx context.Context, id uuid.UUID) (*model.Demand, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("demand")
		}
		return nil, err
	}
	return d, nil
}

func (s *demandService) List(ctx context.Context, filter dto.DemandFilter) (*dto.DemandListResponse, error) {
	clampPaging(&filter.Page, &filter.Limit)
	demands, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.DemandListResponse{
		Data:  make([]dto.DemandResponse, 0, len(demands)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, d := range demands {
		resp.Data = append(resp.Data, *mapDemand(d))
	}
	resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return resp, nil
}

func (s *demandService) ListByStatus(ctx context.Context, status string) ([]dto.DemandResponse, error) {
	demands, err := s.repo.ListByStatus(ctx, model.DemandStatus(status))
	if err != nil {
		return nil, err
	}
	return mapDemands(demands), nil
}

func (s *demandService) ListByProductionOrder(ctx context.Context, productionOrderID uuid.UUID) ([]dto.DemandResponse, error) {
	demands, err := s.repo.ListByProductionOrder(ctx, productionOrderID)
	if err != nil {
		return nil, err
	}
	return mapDemands(demands), nil
}

func mapDemands(demands []model.Demand) []dto.DemandResponse {
	result := make([]dto.DemandResponse, 0, len(demands))
	for _, d := range demands {
		result = append(result, *mapDemand(d))
	}
	return result
}

// transition runs one guarded step. When the guard refuses, the demand is not
// persisted and the response carries Allowed=false with the unchanged status.
func (s *demandService) transition(ctx context.Context, id uuid.UUID, step func(*model.Demand) bool) (*dto.TransitionResponse, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !step(d) {
		return &dto.TransitionResponse{ID: d.ID.String(), Allowed: false, Status: string(d.Status)}, nil
	}

	d.LastModifiedBy = audit.UserID(ctx)
	d.LastModifiedAt = time.Now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	// The transition is committed; notification is best-effort.
	s.dispatcher.NotifyStatusChange(ctx, worker.StatusChangePayload{
		Entity:    "demand",
		EntityID:  d.ID.String(),
		NewStatus: string(d.Status),
		ChangedBy: d.LastModifiedBy,
		ChangedAt: d.LastModifiedAt,
	})

	return &dto.TransitionResponse{ID: d.ID.String(), Allowed: true, Status: string(d.Status)}, nil
}

func (s *demandService) Confirm(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(d *model.Demand) bool { return d.Confirm() })
}

func (s *demandService) MarkAsProduced(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(d *model.Demand) bool { return d.MarkAsProduced(time.Now()) })
}

func (s *demandService) MarkAsEnding(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(d *model.Demand) bool { return d.MarkAsEnding() })
}

func (s *demandService) MarkAsDelivered(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(d *model.Demand) bool { return d.MarkAsDelivered(time.Now()) })
}

func (s *demandService) AttachProductionOrder(ctx context.Context, id uuid.UUID, req dto.AttachProductionOrderRequest) (*dto.DemandResponse, error) {
	productionOrderID, err := uuid.Parse(req.ProductionOrderID)
	if err != nil {
		return nil, apierror.Validation([]string{"production_order_id is not a valid uuid"})
	}

	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.ProductionOrderID != nil && *d.ProductionOrderID != productionOrderID {
		return nil, apierror.New(apierror.KindConflict, "demand is already attached to another production order")
	}

	po, err := s.productionOrderRepo.FindByID(ctx, productionOrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("production order")
		}
		return nil, err
	}
	if po.IsTerminal() {
		return nil, apierror.New(apierror.KindConflict, "cannot attach a demand to a finished production order")
	}

	d.ProductionOrderID = &productionOrderID
	d.LastModifiedBy = audit.UserID(ctx)
	d.LastModifiedAt = time.Now()
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return mapDemand(*d), nil
}

// Delete is refused for delivered demands; they are part of the fulfillment record.
func (s *demandService) Delete(ctx context.Context, id uuid.UUID) error {
	d, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if d.Status == model.DemandStatusDelivered {
		return apierror.New(apierror.KindConflict, "delivered demands cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func (s *demandService) ListOverdue(ctx context.Context) ([]dto.DemandResponse, error) {
	demands, err := s.repo.ListOverdue(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return mapDemands(demands), nil
}

func (s *demandService) ListDueSoon(ctx context.Context, window time.Duration) ([]dto.DemandResponse, error) {
	if window <= 0 {
		window = 48 * time.Hour
	}
	demands, err := s.repo.ListDueSoon(ctx, time.Now(), window)
	if err != nil {
		return nil, err
	}
	return mapDemands(demands), nil
}
