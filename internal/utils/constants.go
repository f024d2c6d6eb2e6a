package utils

import "time"

// Application Constants
const (
	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	TenantTokenTTL = 24 * time.Hour

	// Enrollment
	EnrollmentPath = "/register/"

	// Dashboard
	NewCustomerWindow = 7 * 24 * time.Hour
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInternalServer   = "internal server error"
	ErrValidationFailed = "validation failed"
)

// Error Codes
const (
	CodeValidation               = "VALIDATION_ERROR"
	CodeBadRequest               = "BAD_REQUEST"
	CodeMalformedPayload         = "MALFORMED_PAYLOAD"
	CodeTenantMismatch           = "TENANT_MISMATCH"
	CodeCustomerNotFound         = "CUSTOMER_NOT_FOUND"
	CodeTenantNotFound           = "TENANT_NOT_FOUND"
	CodeCustomerInactive         = "CUSTOMER_INACTIVE"
	CodeNoRewardsAvailable       = "NO_REWARDS_AVAILABLE"
	CodeLimitReached             = "LIMIT_REACHED"
	CodeNotificationLimitReached = "NOTIFICATION_LIMIT_REACHED"
	CodeWalletProvider           = "WALLET_PROVIDER_ERROR"
	CodeWalletSync               = "WALLET_SYNC_ERROR"
	CodeScanInProgress           = "SCAN_IN_PROGRESS"
	CodeConcurrentModification   = "CONCURRENT_MODIFICATION"
	CodeUnauthorized             = "UNAUTHORIZED"
	CodeInternal                 = "INTERNAL_ERROR"
)

// Cache Keys
const (
	CachePlanLimitsPrefix = "plan_limits:"
	CacheScanLockPrefix   = "scan_lock:"
)

// Event Types
const (
	EventCustomerEnrolled    = "customer_enrolled"
	EventEnrollmentRejected  = "enrollment_rejected"
	EventWalletPassOrphaned  = "wallet_pass_orphaned"
	EventVisitRegistered     = "visit_registered"
	EventRewardRedeemed      = "reward_redeemed"
	EventCustomerDeactivated = "customer_deactivated"
	EventCustomerReactivated = "customer_reactivated"
	EventNotificationSent    = "notification_sent"
)
