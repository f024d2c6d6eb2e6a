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

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CustomerService interface {
	// Dashboard
	ListCustomers(ctx context.Context, tenantID string, filter *models.CustomerFilter, params *utils.PaginationParams) ([]*models.Customer, int64, error)
	GetCustomer(ctx context.Context, tenantID, customerID string) (*models.Customer, error)
	GetStats(ctx context.Context, tenantID string) (*models.CustomerStats, error)
	EnrollmentLink(ctx context.Context, tenantID string) (string, error)

	// Lifecycle
	Deactivate(ctx context.Context, tenantID, customerID string) (*models.Customer, error)
	Reactivate(ctx context.Context, tenantID, customerID string) (*models.Customer, error)

	// Apple Wallet device registrations. The serial number is the customer ID.
	RegisterPassDevice(ctx context.Context, serial, deviceID, pushToken string) (bool, error)
	UnregisterPassDevice(ctx context.Context, serial, deviceID string) error
}

type customerService struct {
	customerRepo interfaces.CustomerRepository
	counterRepo  interfaces.CounterRepository
	planService  PlanService
	cache        CacheService
	publicURL    string
	logger       *logger.Logger
	now          func() time.Time
}

func NewCustomerService(
	customerRepo interfaces.CustomerRepository,
	counterRepo interfaces.CounterRepository,
	planService PlanService,
	cacheService CacheService,
	publicURL string,
	logger *logger.Logger,
) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		counterRepo:  counterRepo,
		planService:  planService,
		cache:        cacheService,
		publicURL:    strings.TrimRight(publicURL, "/"),
		logger:       logger,
		now:          time.Now,
	}
}

func parseCustomerID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func mapRepoError(err error, action string) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func (s *customerService) ListCustomers(ctx context.Context, tenantID string, filter *models.CustomerFilter, params *utils.PaginationParams) ([]*models.Customer, int64, error) {
	if params == nil {
		params = utils.NewPaginationParams(1, utils.DefaultPageSize, "desc")
	}

	customers, total, err := s.customerRepo.List(ctx, tenantID, filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

func (s *customerService) GetCustomer(ctx context.Context, tenantID, customerID string) (*models.Customer, error) {
	id, err := parseCustomerID(customerID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapRepoError(err, "get customer")
	}
	return customer, nil
}

func (s *customerService) Deactivate(ctx context.Context, tenantID, customerID string) (*models.Customer, error) {
	return s.setActive(ctx, tenantID, customerID, false)
}

// Reactivate restores a deactivated customer with their counters intact.
func (s *customerService) Reactivate(ctx context.Context, tenantID, customerID string) (*models.Customer, error) {
	return s.setActive(ctx, tenantID, customerID, true)
}

// setActive takes the scan lock so a state change never interleaves with an
// accrual for the same customer. Repeating the current state is a no-op.
func (s *customerService) setActive(ctx context.Context, tenantID, customerID string, active bool) (*models.Customer, error) {
	id, err := parseCustomerID(customerID)
	if err != nil {
		return nil, err
	}

	var customer *models.Customer
	err = s.cache.WithLock(ctx, utils.CacheScanLockPrefix+id.Hex(), func(ctx context.Context) error {
		current, err := s.customerRepo.GetByID(ctx, tenantID, id)
		if err != nil {
			return mapRepoError(err, "get customer")
		}
		if current.Active == active {
			customer = current
			return nil
		}

		customer, err = s.customerRepo.SetActive(ctx, tenantID, id, active, s.now())
		if err != nil {
			return mapRepoError(err, "update customer")
		}

		event := utils.EventCustomerDeactivated
		if active {
			event = utils.EventCustomerReactivated
		}
		s.logger.LogEnrollmentEvent(tenantID, id.Hex(), event, nil)
		return nil
	})
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return nil, ErrScanInProgress
		}
		return nil, err
	}

	return customer, nil
}

func (s *customerService) GetStats(ctx context.Context, tenantID string) (*models.CustomerStats, error) {
	stats, err := s.customerRepo.GetStats(ctx, tenantID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get customer stats: %w", err)
	}

	// Reading the usage counters is a touch: a stale month is rolled over
	// here so the dashboard never shows last month's quota usage.
	counter, err := s.counterRepo.ResetMonthlyIfStale(ctx, tenantID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant counter: %w", err)
	}
	if counter.TotalCustomers > 0 {
		stats.TotalCustomers = counter.TotalCustomers
	}
	stats.NotificationsThisMonth = counter.NotificationsThisMonth

	limits, err := s.planService.ResolveLimits(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	stats.LimitsKnown = limits != nil
	if limits != nil && limits.MaxCustomers != nil {
		stats.MaxCustomers = limits.MaxCustomers
		stats.AtLimit = stats.TotalCustomers >= int64(*limits.MaxCustomers)
	}
	if limits != nil {
		stats.MaxNotificationsPerMonth = limits.MaxNotificationsPerMonth
	}

	return stats, nil
}

func (s *customerService) EnrollmentLink(ctx context.Context, tenantID string) (string, error) {
	base := s.publicURL

	tenant, err := s.planService.GetTenant(ctx, tenantID)
	switch {
	case err == nil:
		if override := strings.TrimRight(tenant.EnrollmentBaseURL, "/"); override != "" {
			base = override
		}
	case errors.Is(err, ErrTenantNotFound):
	default:
		return "", err
	}

	return base + utils.EnrollmentPath + tenantID, nil
}

func (s *customerService) RegisterPassDevice(ctx context.Context, serial, deviceID, pushToken string) (bool, error) {
	id, err := parseCustomerID(serial)
	if err != nil {
		return false, err
	}

	created, err := s.customerRepo.AddPassRegistration(ctx, id, deviceID, pushToken)
	if err != nil {
		return false, mapRepoError(err, "register pass device")
	}

	s.logger.WithCustomerID(id.Hex()).
		WithField("device_id", deviceID).
		WithField("push_token", utils.HashToken(pushToken)).
		WithField("created", created).
		Info("Pass device registered")
	return created, nil
}

func (s *customerService) UnregisterPassDevice(ctx context.Context, serial, deviceID string) error {
	id, err := parseCustomerID(serial)
	if err != nil {
		return err
	}

	if err := s.customerRepo.RemovePassRegistration(ctx, id, deviceID); err != nil {
		return mapRepoError(err, "unregister pass device")
	}

	s.logger.WithCustomerID(id.Hex()).
		WithField("device_id", deviceID).
		Info("Pass device unregistered")
	return nil
}
