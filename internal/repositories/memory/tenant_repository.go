package memory

import (
	"context"
	"sort"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
)

type tenantRepository struct {
	store *Store
}

func NewTenantRepository(store *Store) interfaces.TenantRepository {
	return &tenantRepository{store: store}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.tenants[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &t, nil
}

func (r *tenantRepository) Upsert(ctx context.Context, tenant *models.Tenant) error {
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tenants[tenant.ID] = *tenant
	return nil
}

type planRepository struct {
	store *Store
}

func NewPlanRepository(store *Store) interfaces.PlanRepository {
	return &planRepository{store: store}
}

func (r *planRepository) GetByName(ctx context.Context, name string) (*models.Plan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.plans[name]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*models.Plan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	plans := make([]*models.Plan, 0, len(r.store.plans))
	for _, p := range r.store.plans {
		p := p
		plans = append(plans, &p)
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Name < plans[j].Name })
	return plans, nil
}

func (r *planRepository) Upsert(ctx context.Context, plan *models.Plan) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.plans[plan.Name] = *plan
	return nil
}
