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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type tenantRepository struct {
	collection *mongo.Collection
}

func NewTenantRepository(db *mongo.Database) interfaces.TenantRepository {
	return &tenantRepository{
		collection: db.Collection(database.CollectionTenants),
	}
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tenant)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}

	return &tenant, nil
}

func (r *tenantRepository) Upsert(ctx context.Context, tenant *models.Tenant) error {
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}

	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": tenant.ID}, tenant, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert tenant: %w", err)
	}

	return nil
}

type planRepository struct {
	collection *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) interfaces.PlanRepository {
	return &planRepository{
		collection: db.Collection(database.CollectionPlans),
	}
}

func (r *planRepository) GetByName(ctx context.Context, name string) (*models.Plan, error) {
	var plan models.Plan
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return &plan, nil
}

func (r *planRepository) List(ctx context.Context) ([]*models.Plan, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer cursor.Close(ctx)

	plans := make([]*models.Plan, 0)
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}

	return plans, nil
}

func (r *planRepository) Upsert(ctx context.Context, plan *models.Plan) error {
	update := bson.M{"$set": bson.M{
		"name":                        plan.Name,
		"max_customers":               plan.MaxCustomers,
		"max_notifications_per_month": plan.MaxNotificationsPerMonth,
		"max_emails_per_month":        plan.MaxEmailsPerMonth,
		"price":                       plan.Price,
	}}

	_, err := r.collection.UpdateOne(ctx, bson.M{"name": plan.Name}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert plan: %w", err)
	}

	return nil
}
