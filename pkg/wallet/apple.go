package wallet

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"loyaltycard/pkg/logger"
	"loyaltycard/pkg/push"
)

const ProviderApple = "apple"

// AppleProvider talks to the Apple Wallet pass service. Passes carry the
// cycle and reward counters themselves.
type AppleProvider struct {
	client   *httpClient
	baseURL  string
	timeout  time.Duration
	notifier push.PassUpdateNotifier
	logger   *logger.Logger
}

func NewAppleProvider(baseURL string, timeout time.Duration, notifier push.PassUpdateNotifier, log *logger.Logger) *AppleProvider {
	if notifier == nil {
		notifier = push.NopNotifier{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AppleProvider{
		client:   newHTTPClient(ProviderApple, baseURL, timeout),
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  timeout,
		notifier: notifier,
		logger:   log,
	}
}

func (a *AppleProvider) Name() string {
	return ProviderApple
}

// CreatePass builds the download link for the pass. The pass service
// generates the .pkpass on GET, so nothing is called here. It rejects a zero
// visit count, hence cantidad=1.
func (a *AppleProvider) CreatePass(ctx context.Context, request *PassRequest) (*PassReference, error) {
	if a.baseURL == "" {
		return nil, fmt.Errorf("%s wallet base URL not configured", ProviderApple)
	}

	query := url.Values{}
	query.Set("idUsuario", request.CustomerID)
	query.Set("cantidad", "1")
	query.Set("premiosDisponibles", "0")
	query.Set("nombre", strings.TrimSpace(request.Name))
	query.Set("apellido", strings.TrimSpace(request.Surname))
	query.Set("codigoQR", request.CustomerID)

	return &PassReference{
		Provider: ProviderApple,
		URL:      a.baseURL + "/v1/crearPasses?" + query.Encode(),
	}, nil
}

// UpdatePassCounters stores the new counters with the pass service. Devices
// only pick them up after RefreshPass.
func (a *AppleProvider) UpdatePassCounters(ctx context.Context, update *CounterUpdate) error {
	_, err := a.client.postJSON(ctx, "/v1/actualizarPase", map[string]interface{}{
		"idUsuario":          update.CustomerID,
		"cantidad":           update.CycleVisits,
		"premiosDisponibles": update.RewardsAvailable,
	})
	return err
}

type pushResult struct {
	responses []*push.NotificationResponse
	err       error
}

// RefreshPass asks the registered devices to fetch the pass again. Failures
// are logged only. The push is abandoned once the provider timeout elapses,
// whether or not the notifier honours ctx.
func (a *AppleProvider) RefreshPass(ctx context.Context, customerID string, pushTokens []string) []string {
	if len(pushTokens) == 0 {
		return nil
	}
	log := a.logger.WithCustomerID(customerID)

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	done := make(chan pushResult, 1)
	go func() {
		responses, err := a.notifier.NotifyPassUpdated(ctx, pushTokens)
		done <- pushResult{responses: responses, err: err}
	}()

	var result pushResult
	select {
	case result = <-done:
	case <-ctx.Done():
		log.WithError(ctx.Err()).Warn("Pass update push abandoned")
		return nil
	}
	if result.err != nil {
		log.WithError(result.err).Warn("Pass update push failed")
	}

	var unregistered []string
	for _, r := range result.responses {
		if r != nil && r.Unregistered {
			log.WithField("reason", r.Error).Info("Device no longer registered for pass updates")
			unregistered = append(unregistered, r.Token)
		}
	}
	return unregistered
}

func (a *AppleProvider) AdjustPoints(ctx context.Context, customerID string, delta int) error {
	return fmt.Errorf("apple wallet points: %w", ErrUnsupported)
}

func (a *AppleProvider) Notify(ctx context.Context, customerID, message string) error {
	_, err := a.client.postJSON(ctx, "/v1/notificacion", map[string]string{
		"idUsuario":    customerID,
		"notificacion": message,
	})
	return err
}
