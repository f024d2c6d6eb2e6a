package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/internal/utils"
	"loyaltycard/pkg/logger"
)

type MessagingService interface {
	// NotifyCustomer shows a message on the customer's wallet pass. It counts
	// against the tenant's monthly notification quota only when delivered.
	NotifyCustomer(ctx context.Context, tenantID, customerID, message string) (*models.TenantCounter, error)
}

type messagingService struct {
	customerRepo interfaces.CustomerRepository
	counterRepo  interfaces.CounterRepository
	transactor   interfaces.Transactor
	planService  PlanService
	wallets      WalletRegistry
	logger       *logger.Logger
	now          func() time.Time
}

func NewMessagingService(
	customerRepo interfaces.CustomerRepository,
	counterRepo interfaces.CounterRepository,
	transactor interfaces.Transactor,
	planService PlanService,
	wallets WalletRegistry,
	logger *logger.Logger,
) MessagingService {
	return &messagingService{
		customerRepo: customerRepo,
		counterRepo:  counterRepo,
		transactor:   transactor,
		planService:  planService,
		wallets:      wallets,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *messagingService) NotifyCustomer(ctx context.Context, tenantID, customerID, message string) (*models.TenantCounter, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrValidation)
	}

	id, err := parseCustomerID(customerID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, mapRepoError(err, "get customer")
	}
	if !customer.Active {
		return nil, ErrInactive
	}

	limits, err := s.planService.ResolveLimits(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan limits: %w", err)
	}

	provider := s.wallets.For(string(customer.OSFamily))

	var counter *models.TenantCounter
	err = s.transactor.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		counter, err = s.counterRepo.IncrementNotifications(txCtx, tenantID, limits, s.now())
		if err != nil {
			return err
		}
		if err := provider.Notify(txCtx, id.Hex(), message); err != nil {
			return walletError(ErrWalletProvider, provider.Name()+" notify", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrQuotaExceeded) {
			return nil, ErrNotificationLimitReached
		}
		if errors.Is(err, ErrWalletProvider) {
			s.logger.WithTenantID(tenantID).WithCustomerID(id.Hex()).WithError(err).Error("Wallet notification failed")
			return nil, err
		}
		return nil, fmt.Errorf("failed to notify customer: %w", err)
	}

	s.logger.LogEnrollmentEvent(tenantID, id.Hex(), utils.EventNotificationSent, map[string]interface{}{
		"provider":                 provider.Name(),
		"notifications_this_month": counter.NotificationsThisMonth,
	})
	return counter, nil
}
