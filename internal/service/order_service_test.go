package service

import (
	"context"
	"testing"

	"github.com/igor-spalenza/GesN-sub003/internal/apierror"
	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	svc         OrderService
	repo        *stubOrderRepo
	productRepo *stubProductRepo
	demandRepo  *stubDemandRepo
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo:        newStubOrderRepo(),
		productRepo: newStubProductRepo(),
		demandRepo:  newStubDemandRepo(),
	}
	demandSvc := NewDemandService(f.demandRepo, f.productRepo, newStubProductionOrderRepo(), nil)
	f.svc = NewOrderService(f.repo, f.productRepo, demandSvc)
	return f
}

func (f *orderFixture) product(active bool) *model.Product {
	return f.productRepo.add(&model.Product{
		Code: "CAKE-01", Name: "Cake", ProductType: model.ProductTypeSimple,
		UnitPrice: decimal.NewFromInt(100), Active: active,
	})
}

func TestOrderCreate_DuplicateNumberRejected(t *testing.T) {
	f := newOrderFixture()
	p := f.product(true)

	req := dto.CreateOrderRequest{
		Number: "ORD-100",
		Items: []dto.CreateOrderItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
		},
	}
	_, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindDuplicateKey))
}

func TestOrderCreate_InactiveProductRejected(t *testing.T) {
	f := newOrderFixture()
	p := f.product(false)

	_, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		Number: "ORD-101",
		Items: []dto.CreateOrderItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}

func TestSendItemToProduction_CreatesPendingDemand(t *testing.T) {
	f := newOrderFixture()
	p := f.product(true)

	order, err := f.svc.Create(context.Background(), dto.CreateOrderRequest{
		Number: "ORD-102",
		Items: []dto.CreateOrderItemRequest{
			{ProductID: p.ID.String(), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	itemID := uuid.MustParse(order.Items[0].ID)
	demand, err := f.svc.SendItemToProduction(context.Background(), itemID, nil)
	require.NoError(t, err)
	assert.Equal(t, "pending", demand.Status)
	assert.Equal(t, order.Items[0].ID, demand.OrderItemID)
	assert.True(t, demand.Quantity.Equal(decimal.NewFromInt(2)))
}

func TestSendItemToProduction_UnknownItem(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.SendItemToProduction(context.Background(), uuid.New(), nil)
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindNotFound))
}
