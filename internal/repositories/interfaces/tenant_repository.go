package interfaces

import (
	"context"
	"time"

	"loyaltycard/internal/models"
)

type TenantRepository interface {
	GetByID(ctx context.Context, id string) (*models.Tenant, error)
	Upsert(ctx context.Context, tenant *models.Tenant) error
}

type PlanRepository interface {
	GetByName(ctx context.Context, name string) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
	Upsert(ctx context.Context, plan *models.Plan) error
}

// CounterRepository owns the per-tenant usage document. Increments must run
// inside a Transactor callback so the check and the write see the same state.
type CounterRepository interface {
	Get(ctx context.Context, tenantID string) (*models.TenantCounter, error)
	IncrementIfUnderLimit(ctx context.Context, tenantID string, limits *models.PlanLimits, now time.Time) (*models.TenantCounter, error)
	IncrementNotifications(ctx context.Context, tenantID string, limits *models.PlanLimits, now time.Time) (*models.TenantCounter, error)
	ResetMonthlyIfStale(ctx context.Context, tenantID string, now time.Time) (*models.TenantCounter, error)
}

// Transactor runs fn atomically. Repository calls made with the ctx passed to
// fn take part in the transaction. fn may be invoked more than once.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
