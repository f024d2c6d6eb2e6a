package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/internal/utils"
	"loyaltycard/internal/validators"
	"loyaltycard/pkg/logger"
	"loyaltycard/pkg/wallet"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EnrollmentService interface {
	Enroll(ctx context.Context, tenantID string, request *validators.EnrollmentRequest) (*EnrollmentResult, error)
}

type EnrollmentResult struct {
	Customer    *models.Customer      `json:"customer"`
	Pass        *wallet.PassReference `json:"pass"`
	LimitsKnown bool                  `json:"limits_known"`
}

type enrollmentService struct {
	customerRepo interfaces.CustomerRepository
	counterRepo  interfaces.CounterRepository
	transactor   interfaces.Transactor
	planService  PlanService
	wallets      WalletRegistry
	logger       *logger.Logger
	now          func() time.Time
}

func NewEnrollmentService(
	customerRepo interfaces.CustomerRepository,
	counterRepo interfaces.CounterRepository,
	transactor interfaces.Transactor,
	planService PlanService,
	wallets WalletRegistry,
	logger *logger.Logger,
) EnrollmentService {
	return &enrollmentService{
		customerRepo: customerRepo,
		counterRepo:  counterRepo,
		transactor:   transactor,
		planService:  planService,
		wallets:      wallets,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *enrollmentService) Enroll(ctx context.Context, tenantID string, request *validators.EnrollmentRequest) (*EnrollmentResult, error) {
	if request == nil {
		return nil, fmt.Errorf("%w: empty request", ErrValidation)
	}
	if errs := validators.ValidateEnrollment(request); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, errs)
	}

	birthDate, err := utils.ParseDate(request.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("%w: birth_date: %v", ErrValidation, err)
	}

	limits, err := s.planService.ResolveLimits(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve plan limits: %w", err)
	}

	// Cheap early rejection so a full tenant does not mint wallet passes.
	// The authoritative check runs again inside the transaction.
	counter, err := s.counterRepo.Get(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant counter: %w", err)
	}
	if !counter.CanEnroll(limits) {
		s.logger.LogEnrollmentEvent(tenantID, "", utils.EventEnrollmentRejected, map[string]interface{}{
			"total_customers": counter.TotalCustomers,
			"max_customers":   *limits.MaxCustomers,
		})
		return nil, ErrLimitReached
	}

	customerID := primitive.NewObjectID()
	osFamily := models.NormalizeOSFamily(request.OS)
	provider := s.wallets.For(string(osFamily))

	pass, err := provider.CreatePass(ctx, &wallet.PassRequest{
		CustomerID: customerID.Hex(),
		Name:       request.Name,
		Surname:    request.Surname,
	})
	if err != nil {
		s.logger.WithTenantID(tenantID).
			WithField("provider", provider.Name()).
			WithError(err).
			Error("Wallet pass creation failed")
		return nil, walletError(ErrWalletProvider, provider.Name()+" create pass", err)
	}

	now := s.now()
	initial := models.InitialLoyaltyState()
	customer := &models.Customer{
		ID:                  customerID,
		TenantID:            tenantID,
		Name:                request.Name,
		Surname:             request.Surname,
		Email:               utils.NormalizeEmail(request.Email),
		Phone:               utils.NormalizePhone(request.Phone),
		BirthDate:           birthDate,
		OSFamily:            osFamily,
		UserAgent:           request.UserAgent,
		Active:              true,
		VisitsTotal:         initial.VisitsTotal,
		CycleVisits:         initial.CycleVisits,
		RewardsAvailable:    initial.RewardsAvailable,
		RewardsRedeemed:     initial.RewardsRedeemed,
		WalletPassReference: pass.URL,
		CreatedAt:           now,
		LastVisitAt:         now,
	}

	err = s.transactor.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.counterRepo.IncrementIfUnderLimit(txCtx, tenantID, limits, now); err != nil {
			return err
		}
		return s.customerRepo.Create(txCtx, customer)
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrQuotaExceeded) {
			s.logger.LogEnrollmentEvent(tenantID, customerID.Hex(), utils.EventWalletPassOrphaned, map[string]interface{}{
				"provider": provider.Name(),
				"pass_url": pass.URL,
			})
			return nil, ErrLimitReached
		}
		return nil, fmt.Errorf("failed to enroll customer: %w", err)
	}

	s.logger.LogEnrollmentEvent(tenantID, customerID.Hex(), utils.EventCustomerEnrolled, map[string]interface{}{
		"os_family":    osFamily,
		"provider":     provider.Name(),
		"email":        utils.MaskEmail(customer.Email),
		"phone":        utils.MaskPhone(customer.Phone),
		"limits_known": limits != nil,
	})

	return &EnrollmentResult{
		Customer:    customer,
		Pass:        pass,
		LimitsKnown: limits != nil,
	}, nil
}
