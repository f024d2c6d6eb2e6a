package validators

import (
	"strings"

	"loyaltycard/internal/models"
)

// EnrollmentRequest is what a customer submits through the public
// enrollment link.
type EnrollmentRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	Surname   string `json:"surname" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Phone     string `json:"phone" validate:"required,phone_number"`
	BirthDate string `json:"birth_date" validate:"required,calendar_date,not_future_date"`
	OS        string `json:"os" validate:"required,max=32"`
	UserAgent string `json:"user_agent" validate:"omitempty,max=512"`
}

// ScanRequest carries either the raw QR text or an already decoded payload.
type ScanRequest struct {
	Raw     string              `json:"raw" validate:"omitempty,max=2048"`
	Payload *models.ScanPayload `json:"payload" validate:"omitempty"`
	Mode    string              `json:"mode" validate:"omitempty,scan_mode"`
}

type NotifyRequest struct {
	Message string `json:"message" validate:"required,min=1,max=500"`
}

// PassRegistrationRequest is the body Apple Wallet sends when a device
// registers a pass for updates.
type PassRegistrationRequest struct {
	PushToken string `json:"pushToken" validate:"required,max=256"`
}

func ValidateEnrollment(req *EnrollmentRequest) ValidationErrors {
	req.Name = SanitizeInput(req.Name)
	req.Surname = SanitizeInput(req.Surname)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.BirthDate = strings.TrimSpace(req.BirthDate)
	req.OS = strings.TrimSpace(req.OS)
	return ValidateStruct(req)
}

func ValidateScanRequest(req *ScanRequest) ValidationErrors {
	errors := ValidateStruct(req)

	if strings.TrimSpace(req.Raw) == "" && req.Payload == nil {
		errors = append(errors, ValidationError{
			Field:   "raw",
			Tag:     "required_without",
			Message: "Either raw or payload is required",
		})
	}

	return errors
}

// ScanMode returns the requested mode, defaulting to a visit.
func (r *ScanRequest) ScanMode() models.ScanMode {
	if r.Mode == "" {
		return models.ScanModeVisit
	}
	return models.ScanMode(r.Mode)
}

func ValidateNotify(req *NotifyRequest) ValidationErrors {
	req.Message = strings.TrimSpace(req.Message)
	return ValidateStruct(req)
}

func ValidatePassRegistration(req *PassRegistrationRequest) ValidationErrors {
	return ValidateStruct(req)
}
