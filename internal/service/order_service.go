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

// OrderService is the minimal sales-order intake feeding the production core.
type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, page, limit int) ([]dto.OrderResponse, int64, error)
	// SendItemToProduction creates a pending demand for one order line.
	SendItemToProduction(ctx context.Context, orderItemID uuid.UUID, expectedDate *time.Time) (*dto.DemandResponse, error)
}

type orderService struct {
	repo          repository.OrderRepository
	productRepo   repository.ProductRepository
	demandService DemandService
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	demandService DemandService,
) OrderService {
	return &orderService{repo: repo, productRepo: productRepo, demandService: demandService}
}

func mapOrder(o model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:          o.ID.String(),
		Number:      o.Number,
		CustomerRef: o.CustomerRef,
		Status:      o.Status,
		Items:       make([]dto.OrderItemResponse, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:        item.ID.String(),
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return resp
}

func (s *orderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	existing, err := s.repo.FindByNumber(ctx, req.Number)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apierror.Newf(apierror.KindDuplicateKey, "order number %q already exists", req.Number)
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, apierror.Validation([]string{"items: product_id is not a valid uuid"})
		}
		product, err := s.productRepo.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("product")
			}
			return nil, err
		}
		if !product.Active {
			return nil, apierror.Newf(apierror.KindConflict, "item %d: product %s is inactive", i, product.Code)
		}
		if item.Quantity.Sign() <= 0 {
			return nil, apierror.Validation([]string{"items: quantity must be positive"})
		}
		items = append(items, model.OrderItem{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	now := time.Now()
	user := audit.UserID(ctx)
	o := &model.Order{
		Number:         req.Number,
		CustomerRef:    req.CustomerRef,
		Status:         "open",
		Active:         true,
		Items:          items,
		CreatedBy:      user,
		CreatedAt:      now,
		LastModifiedBy: user,
		LastModifiedAt: now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return mapOrder(*o), nil
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("order")
		}
		return nil, err
	}
	return mapOrder(*o), nil
}

// clampPaging normalizes page/limit for callers that bypass the HTTP binding
// defaults, keeping the TotalPages math safe from a zero limit.
func clampPaging(page, limit *int) {
	if *page < 1 {
		*page = 1
	}
	if *limit < 1 || *limit > 100 {
		*limit = 20
	}
}

func (s *orderService) List(ctx context.Context, page, limit int) ([]dto.OrderResponse, int64, error) {
	clampPaging(&page, &limit)
	orders, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	result := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		result = append(result, *mapOrder(o))
	}
	return result, total, nil
}

func (s *orderService) SendItemToProduction(ctx context.Context, orderItemID uuid.UUID, expectedDate *time.Time) (*dto.DemandResponse, error) {
	item, err := s.repo.FindItemByID(ctx, orderItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("order item")
		}
		return nil, err
	}

	return s.demandService.Create(ctx, dto.CreateDemandRequest{
		OrderItemID:  item.ID.String(),
		ProductID:    item.ProductID.String(),
		Quantity:     item.Quantity,
		ExpectedDate: expectedDate,
	})
}
