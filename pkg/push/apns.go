package push

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/token"
)

// emptyPayload is what Apple expects for a pass update push.
var emptyPayload = []byte("{}")

type apnsClient interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
}

// APNSProvider sends pass update pushes. The topic is the pass type
// identifier, not an app bundle ID.
type APNSProvider struct {
	client apnsClient
	topic  string
}

func NewAPNSProvider(keyFile, keyID, teamID, passTypeID string, production bool) (*APNSProvider, error) {
	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load auth key: %w", err)
	}

	tokenProvider := &token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	}

	client := apns2.NewTokenClient(tokenProvider)
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &APNSProvider{
		client: client,
		topic:  passTypeID,
	}, nil
}

// NotifyPassUpdated pushes to every token and reports per-token outcomes.
// The error is non-nil only when no push was delivered at all.
func (a *APNSProvider) NotifyPassUpdated(ctx context.Context, pushTokens []string) ([]*NotificationResponse, error) {
	responses := make([]*NotificationResponse, 0, len(pushTokens))
	var lastErr error
	sent := 0

	for _, pushToken := range pushTokens {
		response, err := a.send(ctx, pushToken)
		if err != nil {
			lastErr = err
		} else {
			sent++
		}
		responses = append(responses, response)
	}

	if sent == 0 && lastErr != nil {
		return responses, lastErr
	}
	return responses, nil
}

func (a *APNSProvider) send(ctx context.Context, pushToken string) (*NotificationResponse, error) {
	notification := &apns2.Notification{
		DeviceToken: pushToken,
		Topic:       a.topic,
		Payload:     emptyPayload,
		Priority:    apns2.PriorityLow,
	}

	response, err := a.client.PushWithContext(ctx, notification)
	if err != nil {
		return &NotificationResponse{
			Success: false,
			Error:   err.Error(),
			Token:   pushToken,
		}, err
	}

	if response.Sent() {
		return &NotificationResponse{
			MessageID: response.ApnsID,
			Success:   true,
			Token:     pushToken,
		}, nil
	}

	return &NotificationResponse{
		Success:      false,
		Error:        response.Reason,
		Token:        pushToken,
		Unregistered: response.StatusCode == http.StatusGone || response.Reason == apns2.ReasonUnregistered || response.Reason == apns2.ReasonBadDeviceToken,
	}, fmt.Errorf("APNS error: %s", response.Reason)
}
