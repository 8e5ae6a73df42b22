package gateway

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SmooSenseAI/itrade/src/broker"
	"github.com/SmooSenseAI/itrade/src/credentials"
	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/eventpubsub"
	"github.com/SmooSenseAI/itrade/src/session"
)

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

type fixture struct {
	service *Service
	store   *credentials.Store
	client  *broker.MockBrokerClient
	bus     *eventpubsub.Bus
}

func newFixture(t *testing.T, key, secret string) *fixture {
	t.Helper()

	now := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	store := credentials.NewStore(filepath.Join(t.TempDir(), "auth.json"), credentials.WithClock(func() time.Time { return now }))
	client := broker.NewMockBrokerClient()
	bus := eventpubsub.NewBus()
	keys := func() (string, string) { return key, secret }

	service := NewService(session.NewRegistry(store), store, client, keys, WithClock(func() time.Time { return now }), WithEventBus(bus))

	return &fixture{service: service, store: store, client: client, bus: bus}
}

func (f *fixture) authenticate(t *testing.T) string {
	t.Helper()

	resp, err := f.service.RequestToken(context.Background())
	require.NoError(t, err)
	require.NoError(t, f.service.AccessToken(context.Background(), resp.SessionID, "  ABC12  "))

	return resp.SessionID
}

func TestAuthFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("missing api keys", func(t *testing.T) {
		f := newFixture(t, "", "secret")

		_, err := f.service.RequestToken(ctx)
		require.ErrorIs(t, err, eventmodels.ErrMissingApiKeys)
		require.Len(t, f.client.Calls(), 0)
	})

	t.Run("request then access token persists credential", func(t *testing.T) {
		// arrange
		f := newFixture(t, "ck", "cs")
		var events []eventmodels.SessionAuthenticatedEvent
		require.NoError(t, f.bus.Subscribe("test", eventpubsub.SessionAuthenticated, func(ev eventmodels.SessionAuthenticatedEvent) {
			events = append(events, ev)
		}))

		// act
		resp, err := f.service.RequestToken(ctx)
		require.NoError(t, err)
		err = f.service.AccessToken(ctx, resp.SessionID, "  ABC12\n")
		f.bus.WaitAsync()

		// assert
		require.NoError(t, err)
		require.Contains(t, resp.AuthorizeURL, "key=ck")
		require.Equal(t, "ABC12", f.client.CallsTo(broker.MethodExchangeVerifier)[0].Payload)

		cred, found := f.store.Load()
		require.True(t, found)
		require.Equal(t, "ck", cred.ConsumerKey)
		require.Equal(t, "mock-access-token-ABC12", cred.AccessToken)

		require.Len(t, events, 1)
		require.Equal(t, resp.SessionID, events[0].SessionID)
	})

	t.Run("access token for unknown session", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")

		err := f.service.AccessToken(ctx, "unknown", "123")
		require.ErrorIs(t, err, eventmodels.ErrSessionNotFound)
	})

	t.Run("status restores a fresh session from cache", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		first := f.authenticate(t)

		status := f.service.AuthStatus(ctx)
		require.True(t, status.Authenticated)
		require.NotEqual(t, first, status.SessionID)

		_, err := f.service.ListAccounts(ctx, status.SessionID)
		require.NoError(t, err)
	})

	t.Run("status without cache", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")

		status := f.service.AuthStatus(ctx)
		require.False(t, status.Authenticated)
		require.Empty(t, status.SessionID)
	})

	t.Run("logout clears cache", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		f.authenticate(t)

		require.NoError(t, f.service.Logout(ctx))
		require.NoError(t, f.service.Logout(ctx))

		_, err := os.Stat(f.store.Path())
		require.True(t, os.IsNotExist(err))
		require.False(t, f.service.AuthStatus(ctx).Authenticated)
	})
}

func TestReadPaths(t *testing.T) {
	ctx := context.Background()

	t.Run("positions are normalized", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)
		f.client.SetResponse(broker.MethodGetPortfolio, map[string]interface{}{
			"PortfolioResponse": map[string]interface{}{
				"AccountPortfolio": map[string]interface{}{
					"Position": map[string]interface{}{
						"quantity":  float64(2),
						"pricePaid": float64(10),
						"Product": map[string]interface{}{
							"symbol": "SPY240119C00470000", "securityType": "OPTN",
							"expiryYear": float64(2024), "expiryMonth": float64(1), "expiryDay": float64(19),
						},
					},
				},
			},
		})

		positions, err := f.service.GetPositions(ctx, sessionID, "acct")

		require.NoError(t, err)
		require.Len(t, positions, 1)
		require.Equal(t, "SPY", positions[0].BaseSymbol)
		require.Equal(t, 9, *positions[0].DTE)
		require.Equal(t, 20.0, positions[0].TotalCost)
		require.Equal(t, "acct", f.client.CallsTo(broker.MethodGetPortfolio)[0].AccountKey)
	})

	t.Run("upstream error invalidates cached credential", func(t *testing.T) {
		// arrange
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)
		f.client.SetError(broker.MethodGetBalance, &eventmodels.UpstreamHttpError{StatusCode: 401, Status: "401 Unauthorized"})
		var invalidated []eventmodels.SessionInvalidatedEvent
		require.NoError(t, f.bus.Subscribe("test", eventpubsub.SessionInvalidated, func(ev eventmodels.SessionInvalidatedEvent) {
			invalidated = append(invalidated, ev)
		}))

		// act
		_, err := f.service.GetBalance(ctx, sessionID, "acct")
		f.bus.WaitAsync()

		// assert
		require.ErrorIs(t, err, eventmodels.ErrAuthenticationFailed)
		_, found := f.store.Load()
		require.False(t, found)
		require.Len(t, invalidated, 1)
		require.Equal(t, sessionID, invalidated[0].SessionID)
	})

	t.Run("unknown session invalidates cached credential", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		f.authenticate(t)

		_, err := f.service.GetOpenOrders(ctx, "stale", "acct", eventmodels.ListOrdersOptions{})

		require.ErrorIs(t, err, eventmodels.ErrAuthenticationFailed)
		require.ErrorIs(t, err, eventmodels.ErrSessionNotFound)
		_, found := f.store.Load()
		require.False(t, found)
	})

	t.Run("empty body is an empty result", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)
		f.client.SetError(broker.MethodListOpenOrders, eventmodels.ErrEmptyResponse)
		f.client.SetError(broker.MethodGetBalance, eventmodels.ErrEmptyResponse)

		openOrders, err := f.service.GetOpenOrders(ctx, sessionID, "acct", eventmodels.ListOrdersOptions{Symbol: "SPY"})
		require.NoError(t, err)
		require.Len(t, openOrders, 0)

		balance, err := f.service.GetBalance(ctx, sessionID, "acct")
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{}, balance)

		_, found := f.store.Load()
		require.True(t, found)
	})
}

func TestWritePaths(t *testing.T) {
	ctx := context.Background()

	t.Run("legs select the spread protocol", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)
		f.client.SetResponse(broker.MethodPreviewOrder, map[string]interface{}{
			"PreviewOrderResponse": map[string]interface{}{"PreviewIds": map[string]interface{}{"previewId": float64(9)}},
		})

		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{
			Legs: []eventmodels.SpreadLegRequest{
				{Symbol: "SPY", CallPut: "CALL", ExpiryDate: "2024-01-19", StrikePrice: floatPtr(470), OrderAction: "SELL_CLOSE", Quantity: 1},
			},
			LimitPrice: floatPtr(1.1),
			PriceType:  eventmodels.PriceTypeNetCredit,
		})

		require.NoError(t, err)
		require.Len(t, f.client.CallsTo(broker.MethodPreviewOrder), 1)
		require.Len(t, f.client.CallsTo(broker.MethodPlaceOrder), 1)
	})

	t.Run("single leg places once", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)

		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeEquity, OrderAction: "SELL", Quantity: 5, LimitPrice: floatPtr(200),
		})

		require.NoError(t, err)
		require.Len(t, f.client.CallsTo(broker.MethodPreviewOrder), 0)
		require.Len(t, f.client.CallsTo(broker.MethodPlaceOrder), 1)
	})

	t.Run("order errors do not invalidate", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)
		f.client.SetError(broker.MethodPlaceOrder, &eventmodels.UpstreamHttpError{StatusCode: 400})

		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeEquity, OrderAction: "SELL", Quantity: 5, LimitPrice: floatPtr(200),
		})

		require.Error(t, err)
		require.NotErrorIs(t, err, eventmodels.ErrAuthenticationFailed)
		_, found := f.store.Load()
		require.True(t, found)
	})

	t.Run("invalid single leg request", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)

		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{Symbol: "AAPL"})
		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
		require.Len(t, f.client.CallsTo(broker.MethodPlaceOrder), 0)
	})

	t.Run("missing limit price is rejected before reaching the broker", func(t *testing.T) {
		// arrange
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)

		// act
		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeEquity, OrderAction: "SELL", Quantity: 1,
		})

		// assert
		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
		require.Len(t, f.client.CallsTo(broker.MethodPreviewOrder), 0)
		require.Len(t, f.client.CallsTo(broker.MethodPlaceOrder), 0)
	})

	t.Run("option with empty callPut is rejected", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)

		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeOption, OrderAction: "SELL_CLOSE", Quantity: 1,
			LimitPrice: floatPtr(2), ExpiryDate: strPtr("2024-03-15"), CallPut: strPtr(""), StrikePrice: floatPtr(200),
		})

		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
		require.Len(t, f.client.CallsTo(broker.MethodPlaceOrder), 0)
	})

	t.Run("incomplete spread leg is rejected before preview", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)

		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{
			Legs: []eventmodels.SpreadLegRequest{
				{Symbol: "SPY", ExpiryDate: "2024-01-19", OrderAction: "SELL_CLOSE", Quantity: 1},
			},
			LimitPrice: floatPtr(1.1),
			PriceType:  eventmodels.PriceTypeNetCredit,
		})

		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
		require.Len(t, f.client.CallsTo(broker.MethodPreviewOrder), 0)
	})

	t.Run("spread without limit price is rejected", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)

		_, err := f.service.PlaceOrder(ctx, sessionID, "acct", eventmodels.PlaceOrderRequest{
			Legs: []eventmodels.SpreadLegRequest{
				{Symbol: "SPY", CallPut: "CALL", ExpiryDate: "2024-01-19", StrikePrice: floatPtr(470), OrderAction: "SELL_CLOSE", Quantity: 1},
			},
			PriceType: eventmodels.PriceTypeNetCredit,
		})

		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
		require.Len(t, f.client.CallsTo(broker.MethodPreviewOrder), 0)
	})

	t.Run("cancel errors carry the operation name", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)
		upstream := &eventmodels.UpstreamHttpError{StatusCode: 400, Status: "400 Bad Request"}
		f.client.SetError(broker.MethodCancelOrder, upstream)

		_, err := f.service.CancelOrder(ctx, sessionID, "acct", 12)

		require.ErrorIs(t, err, upstream)
		require.True(t, strings.HasPrefix(err.Error(), "CancelOrder: "))
	})

	t.Run("cancel with empty body", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		sessionID := f.authenticate(t)
		f.client.SetError(broker.MethodCancelOrder, eventmodels.ErrEmptyResponse)

		resp, err := f.service.CancelOrder(ctx, sessionID, "acct", 12)

		require.NoError(t, err)
		require.Equal(t, "cancelled", resp["status"])
		require.Equal(t, int64(12), resp["orderId"])
	})

	t.Run("cancel on pending session", func(t *testing.T) {
		f := newFixture(t, "ck", "cs")
		resp, err := f.service.RequestToken(ctx)
		require.NoError(t, err)

		_, err = f.service.CancelOrder(ctx, resp.SessionID, "acct", 12)
		require.ErrorIs(t, err, eventmodels.ErrSessionNotAuthenticated)
	})
}
