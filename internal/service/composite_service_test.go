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

type compositeFixture struct {
	svc           CompositeService
	repo          *stubCompositeRepo
	productRepo   *stubProductRepo
	hierarchyRepo *stubHierarchyRepo
}

func newCompositeFixture() *compositeFixture {
	f := &compositeFixture{
		repo:          newStubCompositeRepo(),
		productRepo:   newStubProductRepo(),
		hierarchyRepo: newStubHierarchyRepo(),
	}
	f.svc = NewCompositeService(f.repo, f.productRepo, f.hierarchyRepo)
	return f
}

func (f *compositeFixture) composite(code string) *model.Product {
	return f.productRepo.add(&model.Product{
		Code: code, Name: code, ProductType: model.ProductTypeComposite,
		UnitPrice: decimal.NewFromInt(100), Active: true,
	})
}

func (f *compositeFixture) simple(code string) *model.Product {
	return f.productRepo.add(&model.Product{
		Code: code, Name: code, ProductType: model.ProductTypeSimple,
		UnitPrice: decimal.NewFromInt(10), Active: true,
	})
}

func (f *compositeFixture) hierarchy(name string) *model.ProductComponentHierarchy {
	return f.hierarchyRepo.add(&model.ProductComponentHierarchy{Name: name, Active: true})
}

func (f *compositeFixture) link(from, to uuid.UUID) {
	_ = f.repo.CreateLink(context.Background(), &model.ProductComponentLink{
		CompositeProductID: from,
		ComponentProductID: to,
		Quantity:           decimal.NewFromInt(1),
		AssemblyOrder:      1,
		Active:             true,
	})
}

func TestCreateRelation_AllocatesNextAssemblyOrder(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	fillings := f.hierarchy("Fillings")
	toppings := f.hierarchy("Toppings")

	first, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(),
		MinQuantity: 1, AssemblyOrder: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, first.AssemblyOrder)

	// Order 0 requests the next free position: max(5)+1.
	second, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: toppings.ID.String(),
		MinQuantity: 1, AssemblyOrder: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, 6, second.AssemblyOrder)
}

func TestCreateRelation_DuplicatePairRejected(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	fillings := f.hierarchy("Fillings")

	_, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(), MinQuantity: 1,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(), MinQuantity: 2,
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}

func TestCreateRelation_AssemblyOrderCollisionRejected(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	fillings := f.hierarchy("Fillings")
	toppings := f.hierarchy("Toppings")

	_, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(),
		MinQuantity: 1, AssemblyOrder: 3,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: toppings.ID.String(),
		MinQuantity: 1, AssemblyOrder: 3,
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}

func TestCreateRelation_QuantityViolationsCollected(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	fillings := f.hierarchy("Fillings")

	_, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(),
		MinQuantity: 0, MaxQuantity: -1,
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindValidationFailed))

	var e *apierror.Error
	require.ErrorAs(t, err, &e)
	assert.Len(t, e.Reasons, 1) // max -1 is treated as unbounded-invalid only via min check

	// min=2, max=1: the range violation is reported.
	_, err = f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(),
		MinQuantity: 2, MaxQuantity: 1,
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &e)
	assert.Contains(t, e.Reasons[0], "below min quantity")
}

func TestCreateRelation_NonCompositeRejected(t *testing.T) {
	f := newCompositeFixture()
	sugar := f.simple("SUGAR-01")
	fillings := f.hierarchy("Fillings")

	_, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: sugar.ID.String(), HierarchyID: fillings.ID.String(), MinQuantity: 1,
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}

func TestUpdateRelation_OrderCollisionExcludesSelf(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	fillings := f.hierarchy("Fillings")
	toppings := f.hierarchy("Toppings")

	first, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(),
		MinQuantity: 1, AssemblyOrder: 1,
	})
	require.NoError(t, err)
	_, err = f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: toppings.ID.String(),
		MinQuantity: 1, AssemblyOrder: 2,
	})
	require.NoError(t, err)

	// Moving onto the sibling's order collides.
	two := 2
	_, err = f.svc.UpdateRelation(context.Background(), first.ID, dto.UpdateRelationRequest{AssemblyOrder: &two})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))

	// Re-asserting its own order does not.
	one := 1
	resp, err := f.svc.UpdateRelation(context.Background(), first.ID, dto.UpdateRelationRequest{AssemblyOrder: &one})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.AssemblyOrder)
}

func TestAddComponentLink_SelfReferenceRejected(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")

	_, err := f.svc.AddComponentLink(context.Background(), dto.CreateComponentLinkRequest{
		CompositeProductID: box.ID.String(),
		ComponentProductID: box.ID.String(),
		Quantity:           decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindCircularDependency))
}

func TestAddComponentLink_DirectCycleRejected(t *testing.T) {
	f := newCompositeFixture()
	a := f.composite("A")
	b := f.composite("B")
	f.link(a.ID, b.ID) // A contains B

	_, err := f.svc.AddComponentLink(context.Background(), dto.CreateComponentLinkRequest{
		CompositeProductID: b.ID.String(),
		ComponentProductID: a.ID.String(),
		Quantity:           decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindCircularDependency))
}

func TestAddComponentLink_TransitiveCycleRejected(t *testing.T) {
	f := newCompositeFixture()
	a := f.composite("A")
	b := f.composite("B")
	c := f.composite("C")
	f.link(a.ID, b.ID) // A → B
	f.link(b.ID, c.ID) // B → C

	// C → A would close the loop through two hops.
	_, err := f.svc.AddComponentLink(context.Background(), dto.CreateComponentLinkRequest{
		CompositeProductID: c.ID.String(),
		ComponentProductID: a.ID.String(),
		Quantity:           decimal.NewFromInt(1),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindCircularDependency))
}

func TestAddComponentLink_AcyclicEdgeAccepted(t *testing.T) {
	f := newCompositeFixture()
	a := f.composite("A")
	b := f.composite("B")
	flour := f.simple("FLOUR-01")
	sugar := f.simple("SUGAR-01")
	f.link(a.ID, b.ID)
	f.link(b.ID, flour.ID)

	resp, err := f.svc.AddComponentLink(context.Background(), dto.CreateComponentLinkRequest{
		CompositeProductID: b.ID.String(),
		ComponentProductID: sugar.ID.String(),
		Quantity:           decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	assert.Equal(t, sugar.ID.String(), resp.ComponentProductID)
	assert.Equal(t, 2, resp.AssemblyOrder) // next after the existing link
}

func TestValidateConfiguration_CollectsEveryViolation(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	fillings := f.hierarchy("Fillings")
	toppings := f.hierarchy("Toppings")

	// Two inactive relations sharing an assembly order, one with a broken range.
	_ = f.repo.CreateRelation(context.Background(), &model.CompositeProductXHierarchy{
		ProductID: box.ID, HierarchyID: fillings.ID,
		MinQuantity: 2, MaxQuantity: 1, AssemblyOrder: 1, Active: false,
	})
	_ = f.repo.CreateRelation(context.Background(), &model.CompositeProductXHierarchy{
		ProductID: box.ID, HierarchyID: toppings.ID,
		MinQuantity: 1, AssemblyOrder: 1, Active: false,
	})

	report, err := f.svc.ValidateHierarchyConfiguration(context.Background(), box.ID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	// Broken range + shared order + no active relation.
	assert.Len(t, report.Violations, 3)
}

func TestValidateConfiguration_CleanSetupIsValid(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	fillings := f.hierarchy("Fillings")

	_, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: box.ID.String(), HierarchyID: fillings.ID.String(),
		MinQuantity: 1, MaxQuantity: 3,
	})
	require.NoError(t, err)

	report, err := f.svc.ValidateHierarchyConfiguration(context.Background(), box.ID)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Violations)
}

func TestDuplicateConfiguration_CopiesActiveRelations(t *testing.T) {
	f := newCompositeFixture()
	source := f.composite("BOX-01")
	target := f.composite("BOX-02")
	fillings := f.hierarchy("Fillings")
	toppings := f.hierarchy("Toppings")

	_, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
		ProductID: source.ID.String(), HierarchyID: fillings.ID.String(),
		MinQuantity: 1, MaxQuantity: 2, AssemblyOrder: 1,
	})
	require.NoError(t, err)
	// An inactive relation must not travel.
	_ = f.repo.CreateRelation(context.Background(), &model.CompositeProductXHierarchy{
		ProductID: source.ID, HierarchyID: toppings.ID,
		MinQuantity: 1, AssemblyOrder: 2, Active: false,
	})

	copies, err := f.svc.DuplicateConfiguration(context.Background(), dto.DuplicateConfigurationRequest{
		SourceProductID: source.ID.String(),
		TargetProductID: target.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Equal(t, target.ID.String(), copies[0].ProductID)
	assert.Equal(t, 1, copies[0].AssemblyOrder)
	assert.Equal(t, 2, copies[0].MaxQuantity)
}

func TestDuplicateConfiguration_OccupiedTargetRejected(t *testing.T) {
	f := newCompositeFixture()
	source := f.composite("BOX-01")
	target := f.composite("BOX-02")
	fillings := f.hierarchy("Fillings")

	for _, p := range []uuid.UUID{source.ID, target.ID} {
		_, err := f.svc.CreateRelation(context.Background(), dto.CreateRelationRequest{
			ProductID: p.String(), HierarchyID: fillings.ID.String(),
			MinQuantity: 1, AssemblyOrder: 1,
		})
		require.NoError(t, err)
	}

	_, err := f.svc.DuplicateConfiguration(context.Background(), dto.DuplicateConfigurationRequest{
		SourceProductID: source.ID.String(),
		TargetProductID: target.ID.String(),
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}

func TestBatchCreate_AutoOrdersDoNotCollide(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	h1 := f.hierarchy("Fillings")
	h2 := f.hierarchy("Toppings")
	h3 := f.hierarchy("Decorations")

	resp, err := f.svc.CreateRelationsBatch(context.Background(), dto.BatchCreateRelationsRequest{
		Relations: []dto.CreateRelationRequest{
			{ProductID: box.ID.String(), HierarchyID: h1.ID.String(), MinQuantity: 1},
			{ProductID: box.ID.String(), HierarchyID: h2.ID.String(), MinQuantity: 1},
			{ProductID: box.ID.String(), HierarchyID: h3.ID.String(), MinQuantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp, 3)

	seen := map[int]bool{}
	for _, rel := range resp {
		assert.False(t, seen[rel.AssemblyOrder], "assembly order %d assigned twice", rel.AssemblyOrder)
		seen[rel.AssemblyOrder] = true
	}
}

func TestBatchCreate_ExplicitDuplicateOrderRejected(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	h1 := f.hierarchy("Fillings")
	h2 := f.hierarchy("Toppings")

	// Two rows both asking for order 2 must fail, not be renumbered.
	_, err := f.svc.CreateRelationsBatch(context.Background(), dto.BatchCreateRelationsRequest{
		Relations: []dto.CreateRelationRequest{
			{ProductID: box.ID.String(), HierarchyID: h1.ID.String(), MinQuantity: 1, AssemblyOrder: 2},
			{ProductID: box.ID.String(), HierarchyID: h2.ID.String(), MinQuantity: 1, AssemblyOrder: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, apierror.Is(err, apierror.KindConflict))
}

func TestBatchCreate_AutoOrderSkipsExplicitClaim(t *testing.T) {
	f := newCompositeFixture()
	box := f.composite("BOX-01")
	h1 := f.hierarchy("Fillings")
	h2 := f.hierarchy("Toppings")

	resp, err := f.svc.CreateRelationsBatch(context.Background(), dto.BatchCreateRelationsRequest{
		Relations: []dto.CreateRelationRequest{
			{ProductID: box.ID.String(), HierarchyID: h1.ID.String(), MinQuantity: 1, AssemblyOrder: 1},
			{ProductID: box.ID.String(), HierarchyID: h2.ID.String(), MinQuantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, 1, resp[0].AssemblyOrder)
	assert.Equal(t, 2, resp[1].AssemblyOrder)
}
