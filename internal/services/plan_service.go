package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/internal/utils"
	"loyaltycard/pkg/cache"
	"loyaltycard/pkg/logger"
)

type PlanService interface {
	// ResolveLimits returns nil limits, and no error, when the tenant's plan
	// cannot be determined. Callers treat that as "do not block".
	ResolveLimits(ctx context.Context, tenantID string) (*models.PlanLimits, error)
	GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error)
}

type planService struct {
	tenantRepo interfaces.TenantRepository
	planRepo   interfaces.PlanRepository
	cache      CacheService
	cacheTTL   time.Duration
	logger     *logger.Logger
}

func NewPlanService(
	tenantRepo interfaces.TenantRepository,
	planRepo interfaces.PlanRepository,
	cacheService CacheService,
	cacheTTL time.Duration,
	logger *logger.Logger,
) PlanService {
	return &planService{
		tenantRepo: tenantRepo,
		planRepo:   planRepo,
		cache:      cacheService,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func (s *planService) GetTenant(ctx context.Context, tenantID string) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return tenant, nil
}

func (s *planService) ResolveLimits(ctx context.Context, tenantID string) (*models.PlanLimits, error) {
	log := s.logger.WithTenantID(tenantID)

	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			log.WithField("limits_known", false).Warn("Plan limits unknown: tenant not found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	planName := strings.TrimSpace(tenant.PlanName)
	if planName == "" {
		log.WithField("limits_known", false).Warn("Plan limits unknown: tenant has no plan")
		return nil, nil
	}

	// Keyed by the exact name: plans differing only in case are distinct.
	cacheKey := utils.CachePlanLimitsPrefix + planName
	if s.cache != nil {
		var cached models.PlanLimits
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.WithError(err).Warn("Plan cache read failed")
		}
	}

	plan, err := s.findPlan(ctx, planName)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		log.WithFields(map[string]interface{}{
			"plan_name":    planName,
			"limits_known": false,
		}).Warn("Plan limits unknown: no plan with that name")
		return nil, nil
	}

	limits := plan.Limits()
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, limits, s.cacheTTL); err != nil {
			log.WithError(err).Warn("Plan cache write failed")
		}
	}

	return limits, nil
}

// findPlan tries the exact name first, then a case-insensitive match.
func (s *planService) findPlan(ctx context.Context, name string) (*models.Plan, error) {
	plan, err := s.planRepo.GetByName(ctx, name)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	for _, p := range plans {
		if strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return p, nil
		}
	}
	return nil, nil
}
