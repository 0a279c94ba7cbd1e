package service

import (
	"context"
	"testing"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/apierror"
	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type demandFixture struct {
	svc         DemandService
	repo        *stubDemandRepo
	productRepo *stubProductRepo
	poRepo      *stubProductionOrderRepo
}

func newDemandFixture() *demandFixture {
	f := &demandFixture{
		repo:        newStubDemandRepo(),
		productRepo: newStubProductRepo(),
		poRepo:      newStubProductionOrderRepo(),
	}
	f.svc = NewDemandService(f.repo, f.productRepo, f.poRepo, nil)
	return f
}

func (f *demandFixture) product() *model.Product {
	return f.productRepo.add(&model.Product{
		Code: "CAKE-01", Name: "Cake", ProductType: model.ProductTypeSimple,
		UnitPrice: decimal.NewFromInt(100), Active: true,
	})
}

func (f *demandFixture) demand(status model.DemandStatus) *model.Demand {
	d := &model.Demand{
		ID:           uuid.New(),
		OrderItemID:  uuid.New(),
		ProductID:    f.product().ID,
		Quantity:     decimal.NewFromInt(1),
		Status:       status,
		ExpectedDate: time.Now().Add(48 * time.Hour),
		Active:       true,
	}
	_ = f.repo.Create(context.Background(), d)
	return d
}

func TestDemandCreate_DefaultExpectedDate(t *testing.T) {
	f := newDemandFixture()
	p := f.product()

	before := time.Now()
	resp, err := f.svc.Create(context.Background(), dto.CreateDemandRequest{
		OrderItemID: uuid.NewString(),
		ProductID:   p.ID.String(),
		Quantity:    decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	// Defaults to one week out.
	expectedMin := before.Add(7 * 24 * time.Hour).Add(-time.Minute)
	expectedMax := time.Now().Add(7 * 24 * time.Hour).Add(time.Minute)
	assert.True(t, resp.ExpectedDate.After(expectedMin))
	assert.True(t, resp.ExpectedDate.Before(expectedMax))
	assert.Equal(t, "pending", resp.Status)
}

func TestDemandCreate_PastExpectedDateRejected(t *testing.T) {
	f := newDemandFixture()
	p := f.product()

	past := time.Now().Add(-time.Hour)
	_, err := f.svc.Create(context.Background(), dto.CreateDemandRequest{
		OrderItemID:  uuid.NewString(),
		ProductID:    p.ID.String(),
		Quantity:     decimal.NewFromInt(1),
		ExpectedDate: &past,
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidationFailed))
}

func TestDemandLifecycle_HappyPath(t *testing.T) {
	f := newDemandFixture()
	d := f.demand(model.DemandStatusPending)

	steps := []func(context.Context, uuid.UUID) (*dto.TransitionResponse, error){
		f.svc.Confirm, f.svc.MarkAsProduced, f.svc.MarkAsEnding, f.svc.MarkAsDelivered,
	}
	want := []string{"confirmed", "produced", "ending", "delivered"}

	for i, step := range steps {
		resp, err := step(context.Background(), d.ID)
		require.NoError(t, err)
		assert.True(t, resp.Allowed)
		assert.Equal(t, want[i], resp.Status)
	}

	final, err := f.repo.FindByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.NotNil(t, final.StartedAt)
	assert.NotNil(t, final.CompletedAt)
}

func TestDemandTransition_SkippingAStageRefused(t *testing.T) {
	f := newDemandFixture()
	d := f.demand(model.DemandStatusPending)

	// Pending → Produced skips Confirmed: refused, status untouched.
	resp, err := f.svc.MarkAsProduced(context.Background(), d.ID)
	require.NoError(t, err)
	assert.False(t, resp.Allowed)
	assert.Equal(t, "pending", resp.Status)

	stored, err := f.repo.FindByID(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DemandStatusPending, stored.Status)
	assert.Nil(t, stored.StartedAt)
}

func TestDemandList_ZeroFilterGetsDefaults(t *testing.T) {
	f := newDemandFixture()
	f.demand(model.DemandStatusPending)

	// A direct call with an unbound filter must not divide by a zero limit.
	resp, err := f.svc.List(context.Background(), dto.DemandFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestDemandDelete_DeliveredRefused(t *testing.T) {
	f := newDemandFixture()
	d := f.demand(model.DemandStatusDelivered)

	err := f.svc.Delete(context.Background(), d.ID)
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))

	pending := f.demand(model.DemandStatusPending)
	require.NoError(t, f.svc.Delete(context.Background(), pending.ID))
}

func TestDemandAttachProductionOrder(t *testing.T) {
	f := newDemandFixture()
	d := f.demand(model.DemandStatusConfirmed)

	po := &model.ProductionOrder{
		ID: uuid.New(), OrderID: uuid.New(), OrderItemID: d.OrderItemID,
		ProductID: d.ProductID, Quantity: d.Quantity,
		Status: model.ProductionOrderStatusPending, Active: true,
	}
	_ = f.poRepo.Create(context.Background(), po)

	resp, err := f.svc.AttachProductionOrder(context.Background(), d.ID, dto.AttachProductionOrderRequest{
		ProductionOrderID: po.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.ProductionOrderID)
	assert.Equal(t, po.ID.String(), *resp.ProductionOrderID)

	// Re-attaching to a different order is refused.
	other := &model.ProductionOrder{
		ID: uuid.New(), OrderID: uuid.New(), OrderItemID: uuid.New(),
		ProductID: d.ProductID, Quantity: d.Quantity,
		Status: model.ProductionOrderStatusPending, Active: true,
	}
	_ = f.poRepo.Create(context.Background(), other)

	_, err = f.svc.AttachProductionOrder(context.Background(), d.ID, dto.AttachProductionOrderRequest{
		ProductionOrderID: other.ID.String(),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}

func TestDemandAttach_TerminalProductionOrderRefused(t *testing.T) {
	f := newDemandFixture()
	d := f.demand(model.DemandStatusConfirmed)

	po := &model.ProductionOrder{
		ID: uuid.New(), OrderID: uuid.New(), OrderItemID: d.OrderItemID,
		ProductID: d.ProductID, Quantity: d.Quantity,
		Status: model.ProductionOrderStatusCancelled, Active: true,
	}
	_ = f.poRepo.Create(context.Background(), po)

	_, err := f.svc.AttachProductionOrder(context.Background(), d.ID, dto.AttachProductionOrderRequest{
		ProductionOrderID: po.ID.String(),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}
