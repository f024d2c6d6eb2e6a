package interfaces

import (
	"context"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CustomerRepository interface {
	// Basic operations. Every lookup is scoped by tenant.
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID string, id primitive.ObjectID) (*models.Customer, error)

	// Loyalty counters
	UpdateLoyalty(ctx context.Context, tenantID string, id primitive.ObjectID, expectedVersion int64, state models.LoyaltyState, visitedAt time.Time) (*models.Customer, error)

	// Lifecycle
	SetActive(ctx context.Context, tenantID string, id primitive.ObjectID, active bool, at time.Time) (*models.Customer, error)

	// Apple Wallet device registrations. Serial numbers are customer IDs, so
	// these are not tenant scoped. AddPassRegistration reports whether the
	// device is new; a known device gets its push token replaced.
	AddPassRegistration(ctx context.Context, id primitive.ObjectID, deviceID, pushToken string) (bool, error)
	RemovePassRegistration(ctx context.Context, id primitive.ObjectID, deviceID string) error

	// Search and listing
	List(ctx context.Context, tenantID string, filter *models.CustomerFilter, params *utils.PaginationParams) ([]*models.Customer, int64, error)

	// Analytics
	Count(ctx context.Context, tenantID string) (int64, error)
	GetStats(ctx context.Context, tenantID string, now time.Time) (*models.CustomerStats, error)
}
