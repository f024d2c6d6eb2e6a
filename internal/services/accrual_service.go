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
	"loyaltycard/pkg/wallet"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccrualService interface {
	// ProcessScan credits a visit or redeems a reward for the scanned
	// customer and keeps their wallet pass in step. The record is written
	// only after the wallet accepted the change.
	ProcessScan(ctx context.Context, tenantID string, payload *models.ScanPayload, mode models.ScanMode) (*models.AccrualResult, error)
	ProcessRawScan(ctx context.Context, tenantID, raw string, mode models.ScanMode) (*models.AccrualResult, error)
}

type accrualService struct {
	customerRepo interfaces.CustomerRepository
	cache        CacheService
	wallets      WalletRegistry
	logger       *logger.Logger
	now          func() time.Time
}

func NewAccrualService(
	customerRepo interfaces.CustomerRepository,
	cacheService CacheService,
	wallets WalletRegistry,
	logger *logger.Logger,
) AccrualService {
	return &accrualService{
		customerRepo: customerRepo,
		cache:        cacheService,
		wallets:      wallets,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *accrualService) ProcessRawScan(ctx context.Context, tenantID, raw string, mode models.ScanMode) (*models.AccrualResult, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrMalformedPayload
	}
	parsed := models.ParseScanPayload(raw)
	return s.ProcessScan(ctx, tenantID, &parsed.Payload, mode)
}

func (s *accrualService) ProcessScan(ctx context.Context, tenantID string, payload *models.ScanPayload, mode models.ScanMode) (*models.AccrualResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown scan mode %q", ErrValidation, mode)
	}
	if payload == nil || strings.TrimSpace(payload.CustomerID) == "" {
		return nil, ErrMalformedPayload
	}
	if payload.TenantID != "" && payload.TenantID != tenantID {
		s.logger.WithTenantID(tenantID).
			WithField("payload_tenant_id", payload.TenantID).
			Warn("Scan rejected: pass belongs to another tenant")
		return nil, ErrTenantMismatch
	}

	customerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(payload.CustomerID))
	if err != nil {
		return nil, ErrNotFound
	}

	var (
		result  *models.AccrualResult
		updated *models.Customer
	)
	err = s.cache.WithLock(ctx, utils.CacheScanLockPrefix+customerID.Hex(), func(ctx context.Context) error {
		var err error
		result, updated, err = s.apply(ctx, tenantID, customerID, payload, mode)
		return err
	})
	if err != nil {
		if errors.Is(err, cache.ErrLockTimeout) {
			return nil, ErrScanInProgress
		}
		return nil, err
	}

	s.refreshPass(context.WithoutCancel(ctx), updated)
	return result, nil
}

// apply runs with the customer's scan lock held.
func (s *accrualService) apply(ctx context.Context, tenantID string, id primitive.ObjectID, payload *models.ScanPayload, mode models.ScanMode) (*models.AccrualResult, *models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if !customer.Active {
		return nil, nil, ErrInactive
	}

	current := customer.LoyaltyState()
	var next models.LoyaltyState
	var rewardGranted bool
	switch mode {
	case models.ScanModeRedemption:
		if !current.CanRedeem() {
			return nil, nil, ErrNoRewardsAvailable
		}
		next = models.ApplyRedemption(current)
	default:
		next, rewardGranted = models.ApplyVisit(current)
	}

	if err := s.syncWallet(ctx, customer, next, payload, mode); err != nil {
		s.logger.WithTenantID(tenantID).
			WithCustomerID(id.Hex()).
			WithError(err).
			Error("Wallet sync failed, scan not recorded")
		return nil, nil, err
	}

	// The wallet already shows the new state, so the write must not be
	// skipped because the caller went away.
	updated, err := s.customerRepo.UpdateLoyalty(context.WithoutCancel(ctx), tenantID, id, customer.Version, next, s.now())
	if err != nil {
		switch {
		case errors.Is(err, interfaces.ErrVersionConflict):
			s.logger.WithTenantID(tenantID).
				WithCustomerID(id.Hex()).
				Error("Customer changed during scan; wallet pass may be ahead of the record")
			return nil, nil, ErrConcurrentModification
		case errors.Is(err, interfaces.ErrNotFound):
			return nil, nil, ErrNotFound
		default:
			return nil, nil, fmt.Errorf("failed to update customer: %w", err)
		}
	}

	event := utils.EventVisitRegistered
	if mode == models.ScanModeRedemption {
		event = utils.EventRewardRedeemed
	}
	s.logger.LogScanEvent(tenantID, id.Hex(), string(mode), map[string]interface{}{
		"event":             event,
		"visits_total":      next.VisitsTotal,
		"cycle_visits":      next.CycleVisits,
		"rewards_available": next.RewardsAvailable,
		"reward_granted":    rewardGranted,
	})

	return models.NewAccrualResult(updated, mode, updated.LoyaltyState(), rewardGranted), updated, nil
}

// syncWallet pushes the new state to the customer's pass. Apple passes show
// the counters themselves; Google passes carry a points balance that moves
// by the scanned hint.
func (s *accrualService) syncWallet(ctx context.Context, customer *models.Customer, next models.LoyaltyState, payload *models.ScanPayload, mode models.ScanMode) error {
	provider := s.wallets.For(string(customer.OSFamily))

	if customer.OSFamily.UsesEmbeddedCounters() {
		err := provider.UpdatePassCounters(ctx, &wallet.CounterUpdate{
			CustomerID:       customer.ID.Hex(),
			CycleVisits:      next.CycleVisits,
			RewardsAvailable: next.RewardsAvailable,
		})
		if err != nil {
			return walletError(ErrWalletSync, provider.Name()+" update counters", err)
		}
		return nil
	}

	delta := payload.Points()
	if mode == models.ScanModeRedemption {
		delta = -delta
	}
	if err := provider.AdjustPoints(ctx, customer.ID.Hex(), delta); err != nil {
		return walletError(ErrWalletSync, provider.Name()+" adjust points", err)
	}
	return nil
}

// refreshPass tells the customer's devices to reload a counter-carrying pass.
// It runs after the scan lock is released and never fails the scan. Devices
// the push service no longer knows are unregistered.
func (s *accrualService) refreshPass(ctx context.Context, customer *models.Customer) {
	if customer == nil || !customer.OSFamily.UsesEmbeddedCounters() {
		return
	}
	tokens := customer.PassPushTokens()
	if len(tokens) == 0 {
		return
	}
	refresher, ok := s.wallets.For(string(customer.OSFamily)).(wallet.PassRefresher)
	if !ok {
		return
	}

	for _, token := range refresher.RefreshPass(ctx, customer.ID.Hex(), tokens) {
		for _, deviceID := range customer.DevicesForPushToken(token) {
			if err := s.customerRepo.RemovePassRegistration(ctx, customer.ID, deviceID); err != nil && !errors.Is(err, interfaces.ErrNotFound) {
				s.logger.WithCustomerID(customer.ID.Hex()).
					WithError(err).
					Warn("Failed to drop unregistered pass device")
				continue
			}
			s.logger.WithCustomerID(customer.ID.Hex()).
				WithField("device_id", deviceID).
				Info("Dropped pass device no longer registered with APNs")
		}
	}
}
