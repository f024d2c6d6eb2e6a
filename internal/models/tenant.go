package models

import (
	"fmt"
	"time"
)

// Tenant is a business using the platform. Profile CRUD lives outside this
// service; only the plan name is read here.
type Tenant struct {
	ID                string    `json:"id" bson:"_id"`
	Name              string    `json:"name" bson:"name"`
	PlanName          string    `json:"plan_name" bson:"plan_name"`
	EnrollmentBaseURL string    `json:"enrollment_base_url,omitempty" bson:"enrollment_base_url,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
}

// TenantCounter holds per-tenant usage counters enforced against the plan.
type TenantCounter struct {
	TenantID               string    `json:"tenant_id" bson:"_id"`
	TotalCustomers         int64     `json:"total_customers" bson:"total_customers"`
	NotificationsThisMonth int64     `json:"notifications_this_month" bson:"notifications_this_month"`
	EmailsThisMonth        int64     `json:"emails_this_month" bson:"emails_this_month"`
	MonthKey               string    `json:"month_key" bson:"month_key"`
	UpdatedAt              time.Time `json:"updated_at" bson:"updated_at"`
}

// MonthKey formats t as YYYY-MM in UTC.
func MonthKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ResetMonthlyIfStale zeroes the monthly counters when the stored month key
// is not the month of now. Reports whether a reset happened.
func (c *TenantCounter) ResetMonthlyIfStale(now time.Time) bool {
	key := MonthKey(now)
	if c.MonthKey == key {
		return false
	}
	c.NotificationsThisMonth = 0
	c.EmailsThisMonth = 0
	c.MonthKey = key
	return true
}

// CanEnroll reports whether one more customer fits. Unknown limits never block.
func (c *TenantCounter) CanEnroll(limits *PlanLimits) bool {
	if limits == nil || limits.MaxCustomers == nil {
		return true
	}
	return c.TotalCustomers < int64(*limits.MaxCustomers)
}

// CanNotify reports whether one more wallet notification fits this month.
func (c *TenantCounter) CanNotify(limits *PlanLimits) bool {
	if limits == nil || limits.MaxNotificationsPerMonth == nil {
		return true
	}
	return c.NotificationsThisMonth < int64(*limits.MaxNotificationsPerMonth)
}
