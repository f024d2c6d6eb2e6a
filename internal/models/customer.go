package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OSFamily string

const (
	OSFamilyIOS     OSFamily = "ios"
	OSFamilyAndroid OSFamily = "android"
)

// NormalizeOSFamily lower-cases and trims the value reported by the
// enrollment client. Unknown values are kept as-is.
func NormalizeOSFamily(os string) OSFamily {
	return OSFamily(strings.ToLower(strings.TrimSpace(os)))
}

// UsesEmbeddedCounters reports whether the wallet pass for this family
// carries the cycle and reward counters itself (Apple Wallet) rather than a
// points balance (Google Wallet).
func (o OSFamily) UsesEmbeddedCounters() bool {
	return o == OSFamilyIOS
}

// CycleLength is the number of visits in one reward cycle.
const CycleLength = 10

type Customer struct {
	ID       primitive.ObjectID `json:"id" bson:"_id"`
	TenantID string             `json:"tenant_id" bson:"tenant_id"`

	Name      string    `json:"name" bson:"name"`
	Surname   string    `json:"surname" bson:"surname"`
	Email     string    `json:"email" bson:"email"`
	Phone     string    `json:"phone" bson:"phone"`
	BirthDate time.Time `json:"birth_date" bson:"birth_date"`
	OSFamily  OSFamily  `json:"os_family" bson:"os_family"`
	UserAgent string    `json:"user_agent,omitempty" bson:"user_agent,omitempty"`

	Active           bool  `json:"active" bson:"active"`
	VisitsTotal      int64 `json:"visits_total" bson:"visits_total"`
	CycleVisits      int   `json:"cycle_visits" bson:"cycle_visits"`
	RewardsAvailable int64 `json:"rewards_available" bson:"rewards_available"`
	RewardsRedeemed  int64 `json:"rewards_redeemed" bson:"rewards_redeemed"`

	WalletPassReference string             `json:"wallet_pass_reference" bson:"wallet_pass_reference"`
	PassRegistrations   []PassRegistration `json:"-" bson:"pass_registrations,omitempty"`

	CreatedAt     time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
	LastVisitAt   time.Time  `json:"last_visit_at" bson:"last_visit_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty" bson:"deactivated_at,omitempty"`

	Version int64 `json:"-" bson:"version"`
}

// PassRegistration links an Apple Wallet device to the customer's pass so the
// device can be told when the pass changes.
type PassRegistration struct {
	DeviceID  string `json:"device_id" bson:"device_id"`
	PushToken string `json:"push_token" bson:"push_token"`
}

func (c *Customer) PassPushTokens() []string {
	tokens := make([]string, 0, len(c.PassRegistrations))
	for _, r := range c.PassRegistrations {
		if r.PushToken != "" {
			tokens = append(tokens, r.PushToken)
		}
	}
	return tokens
}

// DevicesForPushToken returns the registered devices using token.
func (c *Customer) DevicesForPushToken(token string) []string {
	var devices []string
	for _, r := range c.PassRegistrations {
		if r.PushToken == token {
			devices = append(devices, r.DeviceID)
		}
	}
	return devices
}

func (c *Customer) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(c.Name) + " " + strings.TrimSpace(c.Surname))
	if name == "" {
		return "--"
	}
	return name
}

// LoyaltyState is the mutable part of a customer touched by the accrual engine.
type LoyaltyState struct {
	VisitsTotal      int64 `json:"visits_total" bson:"visits_total"`
	CycleVisits      int   `json:"cycle_visits" bson:"cycle_visits"`
	RewardsAvailable int64 `json:"rewards_available" bson:"rewards_available"`
	RewardsRedeemed  int64 `json:"rewards_redeemed" bson:"rewards_redeemed"`
}

func (c *Customer) LoyaltyState() LoyaltyState {
	return LoyaltyState{
		VisitsTotal:      c.VisitsTotal,
		CycleVisits:      c.CycleVisits,
		RewardsAvailable: c.RewardsAvailable,
		RewardsRedeemed:  c.RewardsRedeemed,
	}
}

// InitialLoyaltyState is what a freshly enrolled customer starts with.
// Enrollment counts as the first visit.
func InitialLoyaltyState() LoyaltyState {
	return LoyaltyState{
		VisitsTotal: 1,
		CycleVisits: 1,
	}
}

// CustomerFilter narrows customer listings for the operator dashboard.
type CustomerFilter struct {
	Search  string `form:"search"`
	OS      string `form:"os"`      // all, ios, android
	Rewards string `form:"rewards"` // all, with, without
}

const (
	FilterAll         = "all"
	FilterWithRewards = "with"
	FilterNoRewards   = "without"
)

// Matches applies the filter in memory. The mongo repository translates the
// same rules into a query.
func (f *CustomerFilter) Matches(c *Customer) bool {
	if f == nil {
		return true
	}

	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(c.DisplayName()), term) &&
			!strings.Contains(strings.ToLower(c.Email), term) &&
			!strings.Contains(strings.ToLower(c.ID.Hex()), term) {
			return false
		}
	}

	if os := strings.ToLower(f.OS); os != "" && os != FilterAll {
		if string(c.OSFamily) != os {
			return false
		}
	}

	switch strings.ToLower(f.Rewards) {
	case FilterWithRewards:
		return c.RewardsAvailable > 0
	case FilterNoRewards:
		return c.RewardsAvailable <= 0
	}

	return true
}

type CustomerStats struct {
	TotalCustomers int64 `json:"total_customers"`
	IOSCount       int64 `json:"ios_count"`
	AndroidCount   int64 `json:"android_count"`
	NewThisWeek    int64 `json:"new_this_week"`
	VisitedToday   int64 `json:"visited_today"`
	MaxCustomers   *int  `json:"max_customers,omitempty"`
	AtLimit        bool  `json:"at_limit"`
	LimitsKnown    bool  `json:"limits_known"`

	NotificationsThisMonth   int64 `json:"notifications_this_month"`
	MaxNotificationsPerMonth *int  `json:"max_notifications_per_month,omitempty"`
}
