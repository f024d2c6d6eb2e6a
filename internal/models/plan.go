package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plan is read-only reference data keyed by name. Missing numeric fields mean
// the plan does not define that ceiling.
type Plan struct {
	ID                       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                     string             `json:"name" bson:"name"`
	MaxCustomers             *int               `json:"max_customers,omitempty" bson:"max_customers,omitempty"`
	MaxNotificationsPerMonth *int               `json:"max_notifications_per_month,omitempty" bson:"max_notifications_per_month,omitempty"`
	MaxEmailsPerMonth        *int               `json:"max_emails_per_month,omitempty" bson:"max_emails_per_month,omitempty"`
	Price                    float64            `json:"price" bson:"price"`
}

// PlanLimits are the effective ceilings of a tenant. A nil *PlanLimits means
// the plan could not be resolved.
type PlanLimits struct {
	PlanName                 string `json:"plan_name"`
	MaxCustomers             *int   `json:"max_customers,omitempty"`
	MaxNotificationsPerMonth *int   `json:"max_notifications_per_month,omitempty"`
	MaxEmailsPerMonth        *int   `json:"max_emails_per_month,omitempty"`
}

func (p *Plan) Limits() *PlanLimits {
	return &PlanLimits{
		PlanName:                 p.Name,
		MaxCustomers:             p.MaxCustomers,
		MaxNotificationsPerMonth: p.MaxNotificationsPerMonth,
		MaxEmailsPerMonth:        p.MaxEmailsPerMonth,
	}
}
