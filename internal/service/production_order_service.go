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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductionOrderService manages schedulable production work. Lifecycle calls
// share the guarded-transition contract of DemandService.
type ProductionOrderService interface {
	Create(ctx context.Context, req dto.CreateProductionOrderRequest) (*dto.ProductionOrderResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductionOrderResponse, error)
	List(ctx context.Context, filter dto.ProductionOrderFilter) (*dto.ProductionOrderListResponse, error)
	ListByStatus(ctx context.Context, status string) ([]dto.ProductionOrderResponse, error)

	Schedule(ctx context.Context, id uuid.UUID, req dto.ScheduleRequest) (*dto.TransitionResponse, error)
	Start(ctx context.Context, id uuid.UUID, req dto.StartRequest) (*dto.TransitionResponse, error)
	Pause(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error)
	Resume(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error)
	Complete(ctx context.Context, id uuid.UUID, req dto.CompleteRequest) (*dto.TransitionResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req dto.CancelRequest) (*dto.TransitionResponse, error)
	Fail(ctx context.Context, id uuid.UUID, req dto.CancelRequest) (*dto.TransitionResponse, error)

	Delete(ctx context.Context, id uuid.UUID) error

	EfficiencyReport(ctx context.Context, from, to time.Time) (*dto.EfficiencyReport, error)
	ListOverdue(ctx context.Context) ([]dto.ProductionOrderResponse, error)
	ListDueSoon(ctx context.Context, window time.Duration) ([]dto.ProductionOrderResponse, error)
}

type productionOrderService struct {
	repo        repository.ProductionOrderRepository
	productRepo repository.ProductRepository
	dispatcher  *worker.Dispatcher
}

func NewProductionOrderService(
	repo repository.ProductionOrderRepository,
	productRepo repository.ProductRepository,
	dispatcher *worker.Dispatcher,
) ProductionOrderService {
	return &productionOrderService{repo: repo, productRepo: productRepo, dispatcher: dispatcher}
}

func mapProductionOrder(po model.ProductionOrder) *dto.ProductionOrderResponse {
	return &dto.ProductionOrderResponse{
		ID:                 po.ID.String(),
		OrderID:            po.OrderID.String(),
		OrderItemID:        po.OrderItemID.String(),
		ProductID:          po.ProductID.String(),
		Quantity:           po.Quantity,
		Status:             string(po.Status),
		Priority:           string(po.Priority),
		ScheduledStartDate: po.ScheduledStartDate,
		ScheduledEndDate:   po.ScheduledEndDate,
		ActualStartDate:    po.ActualStartDate,
		ActualEndDate:      po.ActualEndDate,
		AssignedTo:         po.AssignedTo,
		EstimatedTime:      po.EstimatedTime,
		ActualTime:         po.ActualTime,
		Notes:              po.Notes,
		Active:             po.Active,
	}
}

func mapProductionOrders(orders []model.ProductionOrder) []dto.ProductionOrderResponse {
	result := make([]dto.ProductionOrderResponse, 0, len(orders))
	for _, po := range orders {
		result = append(result, *mapProductionOrder(po))
	}
	return result
}

func (s *productionOrderService) Create(ctx context.Context, req dto.CreateProductionOrderRequest) (*dto.ProductionOrderResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apierror.Validation([]string{"order_id is not a valid uuid"})
	}
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

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product")
		}
		return nil, err
	}

	// Default estimate: assembly time per unit times quantity, never below one minute.
	estimated := 1
	if req.EstimatedTime != nil {
		estimated = *req.EstimatedTime
	} else if product.AssemblyTimeMinutes > 0 {
		perUnit := decimal.NewFromInt(int64(product.AssemblyTimeMinutes))
		total := perUnit.Mul(req.Quantity).Ceil().IntPart()
		if total > 0 {
			estimated = int(total)
		}
	}

	priority := model.PriorityNormal
	if req.Priority != "" {
		priority = model.ProductionOrderPriority(req.Priority)
	}

	now := time.Now()
	user := audit.UserID(ctx)
	po := &model.ProductionOrder{
		OrderID:        orderID,
		OrderItemID:    orderItemID,
		ProductID:      productID,
		Quantity:       req.Quantity,
		Status:         model.ProductionOrderStatusPending,
		Priority:       priority,
		EstimatedTime:  estimated,
		Notes:          req.Notes,
		Active:         true,
		CreatedBy:      user,
		CreatedAt:      now,
		LastModifiedBy: user,
		LastModifiedAt: now,
	}
	if err := s.repo.Create(ctx, po); err != nil {
		return nil, err
	}
	return mapProductionOrder(*po), nil
}

func (s *productionOrderService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductionOrderResponse, error) {
	po, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapProductionOrder(*po), nil
}

func (s *productionOrderService) find(ctx context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	po, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("production order")
		}
		return nil, err
	}
	return po, nil
}

func (s *productionOrderService) List(ctx context.Context, filter dto.ProductionOrderFilter) (*dto.ProductionOrderListResponse, error) {
	clampPaging(&filter.Page, &filter.Limit)
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductionOrderListResponse{
		Data:  mapProductionOrders(orders),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	resp.TotalPages = int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return resp, nil
}

func (s *productionOrderService) ListByStatus(ctx context.Context, status string) ([]dto.ProductionOrderResponse, error) {
	orders, err := s.repo.ListByStatus(ctx, model.ProductionOrderStatus(status))
	if err != nil {
		return nil, err
	}
	return mapProductionOrders(orders), nil
}

func (s *productionOrderService) transition(ctx context.Context, id uuid.UUID, step func(*model.ProductionOrder) bool) (*dto.TransitionResponse, error) {
	po, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if !step(po) {
		return &dto.TransitionResponse{ID: po.ID.String(), Allowed: false, Status: string(po.Status)}, nil
	}

	po.LastModifiedBy = audit.UserID(ctx)
	po.LastModifiedAt = time.Now()
	if err := s.repo.Update(ctx, po); err != nil {
		return nil, err
	}

	s.dispatcher.NotifyStatusChange(ctx, worker.StatusChangePayload{
		Entity:    "production_order",
		EntityID:  po.ID.String(),
		NewStatus: string(po.Status),
		ChangedBy: po.LastModifiedBy,
		ChangedAt: po.LastModifiedAt,
	})

	return &dto.TransitionResponse{ID: po.ID.String(), Allowed: true, Status: string(po.Status)}, nil
}

// Schedule validates the window before any state is touched.
func (s *productionOrderService) Schedule(ctx context.Context, id uuid.UUID, req dto.ScheduleRequest) (*dto.TransitionResponse, error) {
	if !req.ScheduledEndDate.After(req.ScheduledStartDate) {
		return nil, apierror.Validation([]string{"scheduled end must be after scheduled start"})
	}
	return s.transition(ctx, id, func(po *model.ProductionOrder) bool {
		return po.Schedule(req.ScheduledStartDate, req.ScheduledEndDate)
	})
}

func (s *productionOrderService) Start(ctx context.Context, id uuid.UUID, req dto.StartRequest) (*dto.TransitionResponse, error) {
	assignedTo := req.AssignedTo
	if assignedTo == "" {
		assignedTo = audit.UserID(ctx)
	}
	return s.transition(ctx, id, func(po *model.ProductionOrder) bool {
		return po.Start(time.Now(), assignedTo)
	})
}

func (s *productionOrderService) Pause(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(po *model.ProductionOrder) bool { return po.Pause() })
}

func (s *productionOrderService) Resume(ctx context.Context, id uuid.UUID) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(po *model.ProductionOrder) bool { return po.Resume() })
}

func (s *productionOrderService) Complete(ctx context.Context, id uuid.UUID, req dto.CompleteRequest) (*dto.TransitionResponse, error) {
	if req.ActualTime != nil && *req.ActualTime < 1 {
		return nil, apierror.Validation([]string{"actual time must be at least 1 minute"})
	}
	return s.transition(ctx, id, func(po *model.ProductionOrder) bool {
		return po.Complete(time.Now(), req.ActualTime)
	})
}

func (s *productionOrderService) Cancel(ctx context.Context, id uuid.UUID, req dto.CancelRequest) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(po *model.ProductionOrder) bool { return po.Cancel(req.Reason) })
}

func (s *productionOrderService) Fail(ctx context.Context, id uuid.UUID, req dto.CancelRequest) (*dto.TransitionResponse, error) {
	return s.transition(ctx, id, func(po *model.ProductionOrder) bool { return po.Fail(req.Reason) })
}

// Delete soft-deletes the order; work in progress must be paused, completed or
// cancelled first.
func (s *productionOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	po, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if po.Status == model.ProductionOrderStatusInProgress {
		return apierror.New(apierror.KindConflict, "production order is in progress and cannot be deleted")
	}
	return s.repo.SoftDelete(ctx, id, audit.UserID(ctx))
}

// EfficiencyReport aggregates completed orders in [from, to]. Efficiency is
// total estimated over total actual, zero when no actual time was recorded.
func (s *productionOrderService) EfficiencyReport(ctx context.Context, from, to time.Time) (*dto.EfficiencyReport, error) {
	if !to.After(from) {
		return nil, apierror.Validation([]string{"report window end must be after start"})
	}

	orders, err := s.repo.ListCompletedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := &dto.EfficiencyReport{Efficiency: decimal.Zero}
	for _, po := range orders {
		report.CompletedOrders++
		report.TotalEstimatedTime += po.EstimatedTime
		if po.ActualTime != nil {
			report.TotalActualTime += *po.ActualTime
		}
	}
	if report.TotalActualTime > 0 {
		report.Efficiency = decimal.NewFromInt(int64(report.TotalEstimatedTime)).
			Div(decimal.NewFromInt(int64(report.TotalActualTime))).Round(4)
	}
	return report, nil
}

func (s *productionOrderService) ListOverdue(ctx context.Context) ([]dto.ProductionOrderResponse, error) {
	orders, err := s.repo.ListOverdue(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return mapProductionOrders(orders), nil
}

func (s *productionOrderService) ListDueSoon(ctx context.Context, window time.Duration) ([]dto.ProductionOrderResponse, error) {
	if window <= 0 {
		window = 48 * time.Hour
	}
	orders, err := s.repo.ListDueSoon(ctx, time.Now(), window)
	if err != nil {
		return nil, err
	}
	return mapProductionOrders(orders), nil
}
