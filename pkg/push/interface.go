package push

import "context"

// PassUpdateNotifier tells devices holding a wallet pass to fetch the latest
// version of it.
type PassUpdateNotifier interface {
	NotifyPassUpdated(ctx context.Context, pushTokens []string) ([]*NotificationResponse, error)
}

type NotificationResponse struct {
	MessageID string `json:"message_id"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	Token     string `json:"token,omitempty"`
	// Unregistered means the device removed the pass and the token should
	// be dropped.
	Unregistered bool `json:"unregistered,omitempty"`
}

// NopNotifier is used when APNs is not configured.
type NopNotifier struct{}

func (NopNotifier) NotifyPassUpdated(ctx context.Context, pushTokens []string) ([]*NotificationResponse, error) {
	return nil, nil
}
