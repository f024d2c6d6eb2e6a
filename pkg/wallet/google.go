package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const ProviderGoogle = "google"

// linkKeys are the response fields the Google wallet service has used for
// the save link, in priority order.
var linkKeys = []string{"addToGoogleWalletUrl", "saveUrl", "url", "link", "saveLink", "walletUrl"}

// GoogleProvider talks to the Google Wallet loyalty-object service. Passes
// carry a points balance that is adjusted by deltas.
type GoogleProvider struct {
	client  *httpClient
	classID string
}

func NewGoogleProvider(baseURL, classID string, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{
		client:  newHTTPClient(ProviderGoogle, baseURL, timeout),
		classID: classID,
	}
}

func (g *GoogleProvider) Name() string {
	return ProviderGoogle
}

type googleCreateRequest struct {
	ClassID       string `json:"classId"`
	CustomerID    string `json:"idUsuario"`
	CustomerName  string `json:"nombreUsuario"`
	Name          string `json:"nombre"`
	Surname       string `json:"apellido"`
	QRCode        string `json:"codigoQR"`
	Points        int    `json:"cantidad"`
	RewardsOnPass int    `json:"premios"`
}

// CreatePass creates the loyalty object and then signs it. The save link is
// taken from the signing response first, then from the creation response.
func (g *GoogleProvider) CreatePass(ctx context.Context, request *PassRequest) (*PassReference, error) {
	name := strings.TrimSpace(request.Name)
	surname := strings.TrimSpace(request.Surname)

	created, err := g.client.postJSON(ctx, "/createObject", &googleCreateRequest{
		ClassID:      g.classID,
		CustomerID:   request.CustomerID,
		CustomerName: strings.TrimSpace(name + " " + surname),
		Name:         name,
		Surname:      surname,
		QRCode:       request.CustomerID,
		Points:       1,
	})
	if err != nil {
		return nil, err
	}

	signed, err := g.client.postJSON(ctx, "/firma", map[string]string{"idUsuario": request.CustomerID})
	if err != nil {
		return nil, err
	}

	link := extractLink(signed)
	if link == "" {
		link = extractLink(created)
	}
	if link == "" {
		return nil, fmt.Errorf("google wallet returned no save link for %s", request.CustomerID)
	}

	return &PassReference{Provider: ProviderGoogle, URL: link}, nil
}

// UpdatePassCounters is not part of the points model.
func (g *GoogleProvider) UpdatePassCounters(ctx context.Context, update *CounterUpdate) error {
	return fmt.Errorf("google wallet counters: %w", ErrUnsupported)
}

func (g *GoogleProvider) AdjustPoints(ctx context.Context, customerID string, delta int) error {
	_, err := g.client.postJSON(ctx, "/actualizar", map[string]interface{}{
		"idUsuario":      customerID,
		"cantidadPuntos": delta,
	})
	return err
}

func (g *GoogleProvider) Notify(ctx context.Context, customerID, message string) error {
	_, err := g.client.postJSON(ctx, "/notificacion", map[string]string{
		"idUsuario":    customerID,
		"notificacion": message,
	})
	return err
}

// extractLink accepts a bare URL string body or a JSON object carrying one
// of linkKeys.
func extractLink(body []byte) string {
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "http") {
		return text
	}

	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		if strings.HasPrefix(asString, "http") {
			return asString
		}
		return ""
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range linkKeys {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
