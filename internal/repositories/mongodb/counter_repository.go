package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyaltycard/internal/models"
	"loyaltycard/internal/repositories/interfaces"
	"loyaltycard/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type counterRepository struct {
	collection *mongo.Collection
}

func NewCounterRepository(db *mongo.Database) interfaces.CounterRepository {
	return &counterRepository{
		collection: db.Collection(database.CollectionTenantCounters),
	}
}

func (r *counterRepository) Get(ctx context.Context, tenantID string) (*models.TenantCounter, error) {
	counter, _, err := r.load(ctx, tenantID)
	return counter, err
}

func (r *counterRepository) load(ctx context.Context, tenantID string) (*models.TenantCounter, bool, error) {
	var counter models.TenantCounter
	err := r.collection.FindOne(ctx, bson.M{"_id": tenantID}).Decode(&counter)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &models.TenantCounter{TenantID: tenantID}, false, nil
		}
		return nil, false, fmt.Errorf("failed to get tenant counter: %w", err)
	}

	return &counter, true, nil
}

// IncrementIfUnderLimit reads and rewrites the counter document. Inside a
// transaction a concurrent writer causes a write conflict and the whole
// callback is retried against the fresh value.
func (r *counterRepository) IncrementIfUnderLimit(ctx context.Context, tenantID string, limits *models.PlanLimits, now time.Time) (*models.TenantCounter, error) {
	return r.update(ctx, tenantID, now, func(c *models.TenantCounter) error {
		if !c.CanEnroll(limits) {
			return interfaces.ErrQuotaExceeded
		}
		c.TotalCustomers++
		return nil
	})
}

func (r *counterRepository) IncrementNotifications(ctx context.Context, tenantID string, limits *models.PlanLimits, now time.Time) (*models.TenantCounter, error) {
	return r.update(ctx, tenantID, now, func(c *models.TenantCounter) error {
		if !c.CanNotify(limits) {
			return interfaces.ErrQuotaExceeded
		}
		c.NotificationsThisMonth++
		return nil
	})
}

// ResetMonthlyIfStale is a single conditional update, safe outside a
// transaction.
func (r *counterRepository) ResetMonthlyIfStale(ctx context.Context, tenantID string, now time.Time) (*models.TenantCounter, error) {
	key := models.MonthKey(now)

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": tenantID, "month_key": bson.M{"$ne": key}},
		bson.M{"$set": bson.M{
			"notifications_this_month": 0,
			"emails_this_month":        0,
			"month_key":                key,
			"updated_at":               now,
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reset tenant counter: %w", err)
	}

	return r.Get(ctx, tenantID)
}

// update creates a missing document with an insert. Two first writes for the
// same tenant racing in separate transactions then surface as ErrWriteConflict,
// which the transactor retries, instead of a raw duplicate key error.
func (r *counterRepository) update(ctx context.Context, tenantID string, now time.Time, fn func(c *models.TenantCounter) error) (*models.TenantCounter, error) {
	counter, found, err := r.load(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	counter.ResetMonthlyIfStale(now)
	if err := fn(counter); err != nil {
		return nil, err
	}
	counter.UpdatedAt = now

	if found {
		_, err = r.collection.ReplaceOne(ctx, bson.M{"_id": tenantID}, counter)
	} else {
		_, err = r.collection.InsertOne(ctx, counter)
	}
	if err != nil {
		return nil, counterWriteError(err)
	}

	return counter, nil
}

func counterWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("tenant counter created concurrently: %w", interfaces.ErrWriteConflict)
	}
	return fmt.Errorf("failed to write tenant counter: %w", err)
}
