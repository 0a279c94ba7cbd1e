package service

// In-memory repository stubs shared by the service tests. Every stub honors
// the gorm.ErrRecordNotFound contract the services check against.

import (
	"context"
	"strings"
	"time"

	"github.com/igor-spalenza/GesN-sub003/internal/dto"
	"github.com/igor-spalenza/GesN-sub003/internal/model"
	"github.com/igor-spalenza/GesN-sub003/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── products ──

type stubProductRepo struct {
	products      map[uuid.UUID]*model.Product
	componentRefs map[uuid.UUID]int64
	orderItemRefs map[uuid.UUID]int64
	groupItems    map[uuid.UUID][]model.ProductGroupItem
	exchangeRules map[uuid.UUID][]model.ProductGroupExchangeRule
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:      make(map[uuid.UUID]*model.Product),
		componentRefs: make(map[uuid.UUID]int64),
		orderItemRefs: make(map[uuid.UUID]int64),
		groupItems:    make(map[uuid.UUID][]model.ProductGroupItem),
		exchangeRules: make(map[uuid.UUID][]model.ProductGroupExchangeRule),
	}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) FindByType(_ context.Context, t model.ProductType) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.ProductType == t && p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) SoftDelete(_ context.Context, id uuid.UUID, modifiedBy string) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
		p.LastModifiedBy = modifiedBy
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID, modifiedBy string) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
		p.LastModifiedBy = modifiedBy
	}
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) CountComponentReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return r.componentRefs[id], nil
}

func (r *stubProductRepo) CountOrderItemReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return r.orderItemRefs[id], nil
}

func (r *stubProductRepo) AddGroupItem(_ context.Context, item *model.ProductGroupItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	r.groupItems[item.GroupProductID] = append(r.groupItems[item.GroupProductID], *item)
	return nil
}

func (r *stubProductRepo) ListGroupItems(_ context.Context, groupProductID uuid.UUID) ([]model.ProductGroupItem, error) {
	return r.groupItems[groupProductID], nil
}

func (r *stubProductRepo) AddExchangeRule(_ context.Context, rule *model.ProductGroupExchangeRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	r.exchangeRules[rule.GroupProductID] = append(r.exchangeRules[rule.GroupProductID], *rule)
	return nil
}

func (r *stubProductRepo) ListExchangeRules(_ context.Context, groupProductID uuid.UUID) ([]model.ProductGroupExchangeRule, error) {
	return r.exchangeRules[groupProductID], nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── hierarchies ──

type stubHierarchyRepo struct {
	hierarchies  map[uuid.UUID]*model.ProductComponentHierarchy
	components   map[uuid.UUID]*model.ProductComponent
	relationRefs map[uuid.UUID]int64
}

func newStubHierarchyRepo() *stubHierarchyRepo {
	return &stubHierarchyRepo{
		hierarchies:  make(map[uuid.UUID]*model.ProductComponentHierarchy),
		components:   make(map[uuid.UUID]*model.ProductComponent),
		relationRefs: make(map[uuid.UUID]int64),
	}
}

func (r *stubHierarchyRepo) add(h *model.ProductComponentHierarchy) *model.ProductComponentHierarchy {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	r.hierarchies[h.ID] = h
	return h
}

func (r *stubHierarchyRepo) Create(_ context.Context, h *model.ProductComponentHierarchy) error {
	r.add(h)
	return nil
}

func (r *stubHierarchyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductComponentHierarchy, error) {
	h, ok := r.hierarchies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return h, nil
}

func (r *stubHierarchyRepo) FindByNameCI(_ context.Context, name string) (*model.ProductComponentHierarchy, error) {
	for _, h := range r.hierarchies {
		if strings.EqualFold(h.Name, name) {
			return h, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubHierarchyRepo) ListActive(_ context.Context) ([]model.ProductComponentHierarchy, error) {
	var out []model.ProductComponentHierarchy
	for _, h := range r.hierarchies {
		if h.Active {
			out = append(out, *h)
		}
	}
	return out, nil
}

func (r *stubHierarchyRepo) Search(_ context.Context, _ dto.HierarchyFilter) ([]model.ProductComponentHierarchy, int64, error) {
	var out []model.ProductComponentHierarchy
	for _, h := range r.hierarchies {
		out = append(out, *h)
	}
	return out, int64(len(out)), nil
}

func (r *stubHierarchyRepo) Update(_ context.Context, h *model.ProductComponentHierarchy) error {
	r.hierarchies[h.ID] = h
	return nil
}

func (r *stubHierarchyRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.hierarchies, id)
	return nil
}

func (r *stubHierarchyRepo) CountRelationReferences(_ context.Context, id uuid.UUID) (int64, error) {
	return r.relationRefs[id], nil
}

func (r *stubHierarchyRepo) UsageCounts(_ context.Context) ([]dto.HierarchyUsage, error) {
	return nil, nil
}

func (r *stubHierarchyRepo) TopUsed(_ context.Context, _ int) ([]dto.HierarchyUsage, error) {
	return nil, nil
}

func (r *stubHierarchyRepo) CreateComponent(_ context.Context, c *model.ProductComponent) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.components[c.ID] = c
	return nil
}

func (r *stubHierarchyRepo) FindComponentByID(_ context.Context, id uuid.UUID) (*model.ProductComponent, error) {
	c, ok := r.components[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubHierarchyRepo) ListComponents(_ context.Context, hierarchyID uuid.UUID) ([]model.ProductComponent, error) {
	var out []model.ProductComponent
	for _, c := range r.components {
		if c.HierarchyID == hierarchyID && c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubHierarchyRepo) UpdateComponent(_ context.Context, c *model.ProductComponent) error {
	r.components[c.ID] = c
	return nil
}

var _ repository.HierarchyRepository = (*stubHierarchyRepo)(nil)

// ── composite relations and links ──

type stubCompositeRepo struct {
	relations map[int64]*model.CompositeProductXHierarchy
	links     map[uuid.UUID]*model.ProductComponentLink
	seq       int64
}

func newStubCompositeRepo() *stubCompositeRepo {
	return &stubCompositeRepo{
		relations: make(map[int64]*model.CompositeProductXHierarchy),
		links:     make(map[uuid.UUID]*model.ProductComponentLink),
	}
}

func (r *stubCompositeRepo) CreateRelation(_ context.Context, rel *model.CompositeProductXHierarchy) error {
	r.seq++
	rel.ID = r.seq
	stored := *rel
	r.relations[rel.ID] = &stored
	return nil
}

func (r *stubCompositeRepo) FindRelationByID(_ context.Context, id int64) (*model.CompositeProductXHierarchy, error) {
	rel, ok := r.relations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *rel
	return &copied, nil
}

func (r *stubCompositeRepo) PairExists(_ context.Context, productID, hierarchyID uuid.UUID, excludeID int64) (bool, error) {
	for _, rel := range r.relations {
		if rel.ID != excludeID && rel.ProductID == productID && rel.HierarchyID == hierarchyID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCompositeRepo) AssemblyOrderExists(_ context.Context, productID uuid.UUID, order int, excludeID int64) (bool, error) {
	for _, rel := range r.relations {
		if rel.ID != excludeID && rel.ProductID == productID && rel.AssemblyOrder == order {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubCompositeRepo) NextAssemblyOrder(_ context.Context, productID uuid.UUID) (int, error) {
	next := 1
	for _, rel := range r.relations {
		if rel.ProductID == productID && rel.AssemblyOrder >= next {
			next = rel.AssemblyOrder + 1
		}
	}
	return next, nil
}

func (r *stubCompositeRepo) ListRelationsByProduct(_ context.Context, productID uuid.UUID) ([]model.CompositeProductXHierarchy, error) {
	var out []model.CompositeProductXHierarchy
	for _, rel := range r.relations {
		if rel.ProductID == productID {
			out = append(out, *rel)
		}
	}
	return out, nil
}

func (r *stubCompositeRepo) SearchRelations(_ context.Context, _ dto.RelationFilter) ([]model.CompositeProductXHierarchy, int64, error) {
	var out []model.CompositeProductXHierarchy
	for _, rel := range r.relations {
		out = append(out, *rel)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompositeRepo) UpdateRelation(_ context.Context, rel *model.CompositeProductXHierarchy) error {
	stored := *rel
	r.relations[rel.ID] = &stored
	return nil
}

func (r *stubCompositeRepo) DeleteRelation(_ context.Context, id int64) error {
	delete(r.relations, id)
	return nil
}

func (r *stubCompositeRepo) CreateRelationsBatch(ctx context.Context, rels []model.CompositeProductXHierarchy) error {
	for i := range rels {
		if err := r.CreateRelation(ctx, &rels[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubCompositeRepo) UpdateRelationStatusBatch(_ context.Context, ids []int64, active bool, modifiedBy string) error {
	for _, id := range ids {
		if rel, ok := r.relations[id]; ok {
			rel.Active = active
			rel.LastModifiedBy = modifiedBy
		}
	}
	return nil
}

func (r *stubCompositeRepo) DeleteRelationsBatch(_ context.Context, ids []int64) error {
	for _, id := range ids {
		delete(r.relations, id)
	}
	return nil
}

func (r *stubCompositeRepo) CreateLink(_ context.Context, link *model.ProductComponentLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	stored := *link
	r.links[link.ID] = &stored
	return nil
}

func (r *stubCompositeRepo) FindLinkByID(_ context.Context, id uuid.UUID) (*model.ProductComponentLink, error) {
	link, ok := r.links[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *stubCompositeRepo) ListLinksByComposite(_ context.Context, compositeID uuid.UUID) ([]model.ProductComponentLink, error) {
	var out []model.ProductComponentLink
	for _, link := range r.links {
		if link.CompositeProductID == compositeID && link.Active {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (r *stubCompositeRepo) DeleteLink(_ context.Context, id uuid.UUID) error {
	delete(r.links, id)
	return nil
}

var _ repository.CompositeRepository = (*stubCompositeRepo)(nil)

// ── demands ──

type stubDemandRepo struct {
	demands map[uuid.UUID]*model.Demand
}

func newStubDemandRepo() *stubDemandRepo {
	return &stubDemandRepo{demands: make(map[uuid.UUID]*model.Demand)}
}

func (r *stubDemandRepo) Create(_ context.Context, d *model.Demand) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	stored := *d
	r.demands[d.ID] = &stored
	return nil
}

func (r *stubDemandRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Demand, error) {
	d, ok := r.demands[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *stubDemandRepo) List(_ context.Context, _ dto.DemandFilter) ([]model.Demand, int64, error) {
	var out []model.Demand
	for _, d := range r.demands {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *stubDemandRepo) ListByStatus(_ context.Context, status model.DemandStatus) ([]model.Demand, error) {
	var out []model.Demand
	for _, d := range r.demands {
		if d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDemandRepo) ListByProductionOrder(_ context.Context, id uuid.UUID) ([]model.Demand, error) {
	var out []model.Demand
	for _, d := range r.demands {
		if d.ProductionOrderID != nil && *d.ProductionOrderID == id {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDemandRepo) Update(_ context.Context, d *model.Demand) error {
	stored := *d
	r.demands[d.ID] = &stored
	return nil
}

func (r *stubDemandRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.demands, id)
	return nil
}

func (r *stubDemandRepo) ListOverdue(_ context.Context, now time.Time) ([]model.Demand, error) {
	var out []model.Demand
	for _, d := range r.demands {
		if d.ExpectedDate.Before(now) && d.Status != model.DemandStatusDelivered {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *stubDemandRepo) ListDueSoon(_ context.Context, now time.Time, window time.Duration) ([]model.Demand, error) {
	var out []model.Demand
	for _, d := range r.demands {
		if d.ExpectedDate.After(now) && d.ExpectedDate.Before(now.Add(window)) && d.Status != model.DemandStatusDelivered {
			out = append(out, *d)
		}
	}
	return out, nil
}

var _ repository.DemandRepository = (*stubDemandRepo)(nil)

// ── production orders ──

type stubProductionOrderRepo struct {
	orders map[uuid.UUID]*model.ProductionOrder
}

func newStubProductionOrderRepo() *stubProductionOrderRepo {
	return &stubProductionOrderRepo{orders: make(map[uuid.UUID]*model.ProductionOrder)}
}

func (r *stubProductionOrderRepo) Create(_ context.Context, po *model.ProductionOrder) error {
	if po.ID == uuid.Nil {
		po.ID = uuid.New()
	}
	stored := *po
	r.orders[po.ID] = &stored
	return nil
}

func (r *stubProductionOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductionOrder, error) {
	po, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *po
	return &copied, nil
}

func (r *stubProductionOrderRepo) List(_ context.Context, _ dto.ProductionOrderFilter) ([]model.ProductionOrder, int64, error) {
	var out []model.ProductionOrder
	for _, po := range r.orders {
		out = append(out, *po)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductionOrderRepo) ListByStatus(_ context.Context, status model.ProductionOrderStatus) ([]model.ProductionOrder, error) {
	var out []model.ProductionOrder
	for _, po := range r.orders {
		if po.Status == status {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (r *stubProductionOrderRepo) Update(_ context.Context, po *model.ProductionOrder) error {
	stored := *po
	r.orders[po.ID] = &stored
	return nil
}

func (r *stubProductionOrderRepo) SoftDelete(_ context.Context, id uuid.UUID, modifiedBy string) error {
	if po, ok := r.orders[id]; ok {
		po.Active = false
		po.LastModifiedBy = modifiedBy
	}
	return nil
}

func (r *stubProductionOrderRepo) ListCompletedBetween(_ context.Context, from, to time.Time) ([]model.ProductionOrder, error) {
	var out []model.ProductionOrder
	for _, po := range r.orders {
		if po.Status == model.ProductionOrderStatusCompleted &&
			po.ActualEndDate != nil && !po.ActualEndDate.Before(from) && !po.ActualEndDate.After(to) {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (r *stubProductionOrderRepo) ListOverdue(_ context.Context, now time.Time) ([]model.ProductionOrder, error) {
	var out []model.ProductionOrder
	for _, po := range r.orders {
		if po.ScheduledEndDate != nil && po.ScheduledEndDate.Before(now) && !po.IsTerminal() {
			out = append(out, *po)
		}
	}
	return out, nil
}

func (r *stubProductionOrderRepo) ListDueSoon(_ context.Context, now time.Time, window time.Duration) ([]model.ProductionOrder, error) {
	var out []model.ProductionOrder
	for _, po := range r.orders {
		if po.ScheduledEndDate != nil && po.ScheduledEndDate.After(now) &&
			po.ScheduledEndDate.Before(now.Add(window)) && !po.IsTerminal() {
			out = append(out, *po)
		}
	}
	return out, nil
}

var _ repository.ProductionOrderRepository = (*stubProductionOrderRepo)(nil)

// ── orders ──

type stubOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	items  map[uuid.UUID]*model.OrderItem
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{
		orders: make(map[uuid.UUID]*model.Order),
		items:  make(map[uuid.UUID]*model.OrderItem),
	}
}

func (r *stubOrderRepo) Create(_ context.Context, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
		item := o.Items[i]
		r.items[item.ID] = &item
	}
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) FindByNumber(_ context.Context, number string) (*model.Order, error) {
	for _, o := range r.orders {
		if o.Number == number {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) FindItemByID(_ context.Context, id uuid.UUID) (*model.OrderItem, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (r *stubOrderRepo) List(_ context.Context, _, _ int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

var _ repository.OrderRepository = (*stubOrderRepo)(nil)
