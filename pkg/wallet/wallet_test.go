package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"loyaltycard/pkg/push"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Path string
	Body map[string]interface{}
}

type walletServer struct {
	mu       sync.Mutex
	calls    []recordedCall
	handlers map[string]http.HandlerFunc
}

func newWalletServer(t *testing.T) (*walletServer, *httptest.Server) {
	ws := &walletServer{handlers: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)

		ws.mu.Lock()
		ws.calls = append(ws.calls, recordedCall{Path: r.URL.Path, Body: body})
		h := ws.handlers[r.URL.Path]
		ws.mu.Unlock()

		if h != nil {
			h(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return ws, srv
}

func TestGoogleCreatePassUsesSignLink(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.handlers["/firma"] = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"saveUrl":"https://pay.google.com/gp/v/save/abc"}`))
	}

	provider := NewGoogleProvider(srv.URL, "class-1", time.Second)
	ref, err := provider.CreatePass(context.Background(), &PassRequest{CustomerID: "c1", Name: " Ana ", Surname: "Diaz"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.google.com/gp/v/save/abc", ref.URL)
	assert.Equal(t, ProviderGoogle, ref.Provider)

	require.Len(t, ws.calls, 2)
	assert.Equal(t, "/createObject", ws.calls[0].Path)
	assert.Equal(t, "class-1", ws.calls[0].Body["classId"])
	assert.Equal(t, "c1", ws.calls[0].Body["idUsuario"])
	assert.Equal(t, "Ana Diaz", ws.calls[0].Body["nombreUsuario"])
	assert.Equal(t, "/firma", ws.calls[1].Path)
}

func TestGoogleCreatePassFallsBackToCreateLink(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.handlers["/createObject"] = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"walletUrl":"https://wallet.example/c1"}`))
	}

	provider := NewGoogleProvider(srv.URL, "class-1", time.Second)
	ref, err := provider.CreatePass(context.Background(), &PassRequest{CustomerID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "https://wallet.example/c1", ref.URL)
}

func TestGoogleCreatePassFailureStopsBeforeSigning(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.handlers["/createObject"] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}

	provider := NewGoogleProvider(srv.URL, "class-1", time.Second)
	_, err := provider.CreatePass(context.Background(), &PassRequest{CustomerID: "c1"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Body)
	assert.Len(t, ws.calls, 1)
}

func TestGoogleAdjustPoints(t *testing.T) {
	ws, srv := newWalletServer(t)
	provider := NewGoogleProvider(srv.URL, "class-1", time.Second)

	require.NoError(t, provider.AdjustPoints(context.Background(), "c1", -2))
	require.Len(t, ws.calls, 1)
	assert.Equal(t, "/actualizar", ws.calls[0].Path)
	assert.Equal(t, float64(-2), ws.calls[0].Body["cantidadPuntos"])

	assert.ErrorIs(t, provider.UpdatePassCounters(context.Background(), &CounterUpdate{}), ErrUnsupported)
}

func TestGoogleTimeout(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.handlers["/actualizar"] = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}

	provider := NewGoogleProvider(srv.URL, "class-1", 50*time.Millisecond)
	err := provider.AdjustPoints(context.Background(), "c1", 1)
	assert.Error(t, err)
}

func TestAppleCreatePassBuildsDirectLink(t *testing.T) {
	provider := NewAppleProvider("https://passes.example/", time.Second, nil, nil)

	ref, err := provider.CreatePass(context.Background(), &PassRequest{CustomerID: "c1", Name: "Ana", Surname: "Díaz"})
	require.NoError(t, err)

	u, err := url.Parse(ref.URL)
	require.NoError(t, err)
	assert.Equal(t, "/v1/crearPasses", u.Path)
	q := u.Query()
	assert.Equal(t, "c1", q.Get("idUsuario"))
	assert.Equal(t, "1", q.Get("cantidad"))
	assert.Equal(t, "0", q.Get("premiosDisponibles"))
	assert.Equal(t, "Díaz", q.Get("apellido"))
	assert.Equal(t, "c1", q.Get("codigoQR"))
}

type fakeNotifier struct {
	mu        sync.Mutex
	tokens    []string
	responses []*push.NotificationResponse
	err       error
	delay     time.Duration
}

func (f *fakeNotifier) NotifyPassUpdated(ctx context.Context, pushTokens []string) ([]*push.NotificationResponse, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, pushTokens...)
	return f.responses, f.err
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func TestAppleUpdatePassCountersDoesNotPush(t *testing.T) {
	ws, srv := newWalletServer(t)
	notifier := &fakeNotifier{}
	provider := NewAppleProvider(srv.URL, time.Second, notifier, nil)

	err := provider.UpdatePassCounters(context.Background(), &CounterUpdate{
		CustomerID:       "c1",
		CycleVisits:      3,
		RewardsAvailable: 2,
	})
	require.NoError(t, err)

	require.Len(t, ws.calls, 1)
	assert.Equal(t, "/v1/actualizarPase", ws.calls[0].Path)
	assert.Equal(t, float64(3), ws.calls[0].Body["cantidad"])
	assert.Equal(t, float64(2), ws.calls[0].Body["premiosDisponibles"])
	assert.Empty(t, notifier.sent())
}

func TestAppleUpdateFailureReturnsAPIError(t *testing.T) {
	ws, srv := newWalletServer(t)
	ws.handlers["/v1/actualizarPase"] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}
	provider := NewAppleProvider(srv.URL, time.Second, &fakeNotifier{}, nil)

	err := provider.UpdatePassCounters(context.Background(), &CounterUpdate{CustomerID: "c1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestAppleRefreshPassReportsUnregisteredTokens(t *testing.T) {
	notifier := &fakeNotifier{responses: []*push.NotificationResponse{
		{Token: "live", Success: true},
		{Token: "gone", Unregistered: true, Error: "Unregistered"},
	}}
	provider := NewAppleProvider("https://passes.example", time.Second, notifier, nil)

	dead := provider.RefreshPass(context.Background(), "c1", []string{"live", "gone"})
	assert.Equal(t, []string{"gone"}, dead)
	assert.Equal(t, []string{"live", "gone"}, notifier.sent())
}

func TestAppleRefreshPassIgnoresPushFailure(t *testing.T) {
	provider := NewAppleProvider("https://passes.example", time.Second, &fakeNotifier{err: errors.New("apns down")}, nil)
	assert.Empty(t, provider.RefreshPass(context.Background(), "c1", []string{"d"}))
}

func TestAppleRefreshPassIsBoundedByTimeout(t *testing.T) {
	notifier := &fakeNotifier{delay: time.Second}
	provider := NewAppleProvider("https://passes.example", 50*time.Millisecond, notifier, nil)

	start := time.Now()
	dead := provider.RefreshPass(context.Background(), "c1", []string{"d"})
	assert.Nil(t, dead)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAppleRefreshPassWithoutTokens(t *testing.T) {
	notifier := &fakeNotifier{}
	provider := NewAppleProvider("https://passes.example", time.Second, notifier, nil)

	assert.Nil(t, provider.RefreshPass(context.Background(), "c1", nil))
	assert.Empty(t, notifier.sent())
}

func TestAppleAdjustPointsUnsupported(t *testing.T) {
	provider := NewAppleProvider("https://passes.example", time.Second, nil, nil)
	assert.ErrorIs(t, provider.AdjustPoints(context.Background(), "c1", 1), ErrUnsupported)
}

func TestRegistryFor(t *testing.T) {
	apple := NewAppleProvider("https://a", time.Second, nil, nil)
	google := NewGoogleProvider("https://g", "c", time.Second)
	r := NewRegistry(apple, google)

	assert.Equal(t, ProviderApple, r.For("iOS").Name())
	assert.Equal(t, ProviderGoogle, r.For("android").Name())
	assert.Equal(t, ProviderGoogle, r.For("windows").Name())
}

func TestExtractLink(t *testing.T) {
	assert.Equal(t, "https://x", extractLink([]byte("https://x")))
	assert.Equal(t, "https://x", extractLink([]byte(`"https://x"`)))
	assert.Equal(t, "https://first", extractLink([]byte(`{"url":"https://second","addToGoogleWalletUrl":"https://first"}`)))
	assert.Equal(t, "", extractLink([]byte(`{"ok":true}`)))
	assert.Equal(t, "", extractLink([]byte(`not json`)))
}
