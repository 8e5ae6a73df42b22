package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SmooSenseAI/itrade/src/broker"
	"github.com/SmooSenseAI/itrade/src/eventmodels"
)

func testCredential() eventmodels.Credential {
	return eventmodels.Credential{ConsumerKey: "ck", ConsumerSecret: "cs", AccessToken: "at", AccessTokenSecret: "ats"}
}

func spreadLegs() []eventmodels.SpreadLegRequest {
	return []eventmodels.SpreadLegRequest{
		{Symbol: "SPY", CallPut: "PUT", ExpiryDate: "2024-01-19", StrikePrice: floatPtr(450), OrderAction: "BUY_CLOSE", Quantity: 1},
		{Symbol: "SPY", CallPut: "PUT", ExpiryDate: "2024-01-19T00:00:00Z", StrikePrice: floatPtr(440), OrderAction: "SELL_CLOSE", Quantity: 1},
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestNewClientOrderID(t *testing.T) {
	a, err := NewClientOrderID()
	require.NoError(t, err)
	require.Len(t, a, 20)

	b, err := NewClientOrderID()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestBuildSingleLegOrder(t *testing.T) {
	t.Run("equity", func(t *testing.T) {
		order, err := BuildSingleLegOrder(SingleLegParams{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeEquity, OrderAction: "SELL", Quantity: 10, LimitPrice: floatPtr(190.5),
		})

		require.NoError(t, err)
		require.Equal(t, "EQ", order.Request.OrderType)
		require.Len(t, order.Request.ClientOrderID, 20)

		detail := order.Request.Order[0]
		require.Equal(t, eventmodels.PriceTypeLimit, detail.PriceType)
		require.Equal(t, "GOOD_UNTIL_CANCEL", detail.OrderTerm)
		require.Equal(t, "REGULAR", detail.MarketSession)
		require.Equal(t, 190.5, detail.LimitPrice)
		require.Equal(t, 10, detail.Instrument[0].Quantity)
		require.Nil(t, detail.Instrument[0].Product.StrikePrice)
	})

	t.Run("option", func(t *testing.T) {
		order, err := BuildSingleLegOrder(SingleLegParams{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeOption, OrderAction: "SELL_CLOSE", Quantity: 1, LimitPrice: floatPtr(2.1),
			ExpiryDate: strPtr("2024-03-15"), CallPut: strPtr("CALL"), StrikePrice: floatPtr(200),
		})

		require.NoError(t, err)
		product := order.Request.Order[0].Instrument[0].Product
		require.Equal(t, 2024, product.ExpiryYear)
		require.Equal(t, 3, product.ExpiryMonth)
		require.Equal(t, 15, product.ExpiryDay)
		require.Equal(t, "CALL", product.CallPut)
		require.Equal(t, 200.0, *product.StrikePrice)
	})

	t.Run("missing limit price", func(t *testing.T) {
		_, err := BuildSingleLegOrder(SingleLegParams{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeEquity, OrderAction: "SELL", Quantity: 1,
		})

		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
	})

	t.Run("option with blank callPut", func(t *testing.T) {
		_, err := BuildSingleLegOrder(SingleLegParams{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeOption, OrderAction: "SELL_CLOSE", Quantity: 1, LimitPrice: floatPtr(2.1),
			ExpiryDate: strPtr("2024-03-15"), CallPut: strPtr(" "), StrikePrice: floatPtr(200),
		})

		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
	})

	t.Run("option without strike", func(t *testing.T) {
		_, err := BuildSingleLegOrder(SingleLegParams{
			Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeOption, OrderAction: "SELL_CLOSE", Quantity: 1, LimitPrice: floatPtr(2.1),
			ExpiryDate: strPtr("2024-03-15"), CallPut: strPtr("CALL"),
		})

		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
	})
}

func TestBuildSpreadOrder(t *testing.T) {
	t.Run("legs become option instruments", func(t *testing.T) {
		order, err := BuildSpreadOrder(spreadLegs(), 1.25, eventmodels.PriceTypeNetCredit)

		require.NoError(t, err)
		require.Equal(t, "SPREADS", order.Request.OrderType)
		require.False(t, order.Request.HasPreviewID())

		detail := order.Request.Order[0]
		require.False(t, detail.AllOrNone)
		require.Equal(t, eventmodels.PriceTypeNetCredit, detail.PriceType)
		require.Len(t, detail.Instrument, 2)

		leg := detail.Instrument[1]
		require.Equal(t, eventmodels.SecurityTypeOption, leg.Product.SecurityType)
		require.Equal(t, 19, leg.Product.ExpiryDay)
		require.Equal(t, 440.0, *leg.Product.StrikePrice)
		require.Equal(t, "QUANTITY", leg.QuantityType)
	})

	t.Run("unparseable expiry", func(t *testing.T) {
		legs := spreadLegs()
		legs[0].ExpiryDate = "soon"

		_, err := BuildSpreadOrder(legs, 1, eventmodels.PriceTypeNetDebit)
		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
	})

	t.Run("leg without strike", func(t *testing.T) {
		legs := spreadLegs()
		legs[1].StrikePrice = nil

		_, err := BuildSpreadOrder(legs, 1, eventmodels.PriceTypeNetDebit)
		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
	})

	t.Run("leg without quantity", func(t *testing.T) {
		legs := spreadLegs()
		legs[0].Quantity = 0

		_, err := BuildSpreadOrder(legs, 1, eventmodels.PriceTypeNetDebit)
		require.ErrorIs(t, err, eventmodels.ErrInvalidOrderParams)
	})

	t.Run("zero legs pass through", func(t *testing.T) {
		order, err := BuildSpreadOrder([]eventmodels.SpreadLegRequest{}, 1, "WHATEVER")
		require.NoError(t, err)
		require.Len(t, order.Request.Order[0].Instrument, 0)
	})
}

func TestPlaceSpreadOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("preview then place with the same client order id", func(t *testing.T) {
		// arrange
		client := broker.NewMockBrokerClient().
			SetResponse(broker.MethodPreviewOrder, map[string]interface{}{
				"PreviewOrderResponse": map[string]interface{}{
					"PreviewIds": map[string]interface{}{"previewId": float64(3456)},
				},
			}).
			SetResponse(broker.MethodPlaceOrder, map[string]interface{}{"PlaceOrderResponse": map[string]interface{}{}})

		order, err := BuildSpreadOrder(spreadLegs(), 1.25, eventmodels.PriceTypeNetCredit)
		require.NoError(t, err)

		// act
		resp, err := PlaceSpreadOrder(ctx, client, testCredential(), "acct", order)

		// assert
		require.NoError(t, err)
		require.Contains(t, resp, "PlaceOrderResponse")

		calls := client.Calls()
		require.Len(t, calls, 2)
		require.Equal(t, broker.MethodPreviewOrder, calls[0].Method)
		require.Equal(t, broker.MethodPlaceOrder, calls[1].Method)

		preview := calls[0].Payload.(eventmodels.PreviewOrderPayload).PreviewOrderRequest
		place := calls[1].Payload.(eventmodels.PlaceOrderPayload).PlaceOrderRequest
		require.Equal(t, preview.ClientOrderID, place.ClientOrderID)
		require.Equal(t, order.Request.ClientOrderID, place.ClientOrderID)
		require.False(t, preview.HasPreviewID())
		require.Equal(t, []eventmodels.BrokerPreviewID{{PreviewID: 3456}}, place.PreviewIDs)
		require.Equal(t, preview.Order, place.Order)
	})

	t.Run("preview ids as a list", func(t *testing.T) {
		client := broker.NewMockBrokerClient().
			SetResponse(broker.MethodPreviewOrder, map[string]interface{}{
				"PreviewOrderResponse": map[string]interface{}{
					"PreviewIds": []interface{}{map[string]interface{}{"previewId": float64(77)}},
				},
			})

		order, err := BuildSpreadOrder(spreadLegs(), 1.25, eventmodels.PriceTypeNetCredit)
		require.NoError(t, err)

		_, err = PlaceSpreadOrder(ctx, client, testCredential(), "acct", order)
		require.NoError(t, err)

		place := client.CallsTo(broker.MethodPlaceOrder)[0].Payload.(eventmodels.PlaceOrderPayload)
		require.Equal(t, int64(77), place.PlaceOrderRequest.PreviewIDs[0].PreviewID)
	})

	t.Run("missing preview id places nothing", func(t *testing.T) {
		client := broker.NewMockBrokerClient().
			SetResponse(broker.MethodPreviewOrder, map[string]interface{}{"PreviewOrderResponse": map[string]interface{}{}})

		order, err := BuildSpreadOrder(spreadLegs(), 1.25, eventmodels.PriceTypeNetCredit)
		require.NoError(t, err)

		_, err = PlaceSpreadOrder(ctx, client, testCredential(), "acct", order)
		require.ErrorIs(t, err, eventmodels.ErrPreviewFailed)
		require.Len(t, client.CallsTo(broker.MethodPlaceOrder), 0)
	})

	t.Run("preview error places nothing", func(t *testing.T) {
		upstream := &eventmodels.UpstreamHttpError{StatusCode: 400, Status: "400 Bad Request"}
		client := broker.NewMockBrokerClient().SetError(broker.MethodPreviewOrder, upstream)

		order, err := BuildSpreadOrder(spreadLegs(), 1.25, eventmodels.PriceTypeNetCredit)
		require.NoError(t, err)

		_, err = PlaceSpreadOrder(ctx, client, testCredential(), "acct", order)

		var upstreamErr *eventmodels.UpstreamHttpError
		require.True(t, errors.As(err, &upstreamErr))
		require.Len(t, client.CallsTo(broker.MethodPlaceOrder), 0)
	})
}

func TestPlaceSingleLegOrder(t *testing.T) {
	client := broker.NewMockBrokerClient()
	order, err := BuildSingleLegOrder(SingleLegParams{
		Symbol: "AAPL", SecurityType: eventmodels.SecurityTypeEquity, OrderAction: "SELL", Quantity: 1, LimitPrice: floatPtr(1),
	})
	require.NoError(t, err)

	_, err = PlaceSingleLegOrder(context.Background(), client, testCredential(), "acct", order)
	require.NoError(t, err)

	calls := client.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, broker.MethodPlaceOrder, calls[0].Method)
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("empty response is success", func(t *testing.T) {
		client := broker.NewMockBrokerClient().SetError(broker.MethodCancelOrder, eventmodels.ErrEmptyResponse)

		resp, err := CancelOrder(ctx, client, testCredential(), "acct", 42)
		require.NoError(t, err)
		require.Equal(t, map[string]interface{}{"status": "cancelled", "orderId": int64(42)}, resp)

		resp, err = CancelOrder(ctx, client, testCredential(), "acct", 42)
		require.NoError(t, err)
		require.Equal(t, "cancelled", resp["status"])
	})

	t.Run("broker body is passed through", func(t *testing.T) {
		body := map[string]interface{}{"CancelOrderResponse": map[string]interface{}{"orderId": float64(42)}}
		client := broker.NewMockBrokerClient().SetResponse(broker.MethodCancelOrder, body)

		resp, err := CancelOrder(ctx, client, testCredential(), "acct", 42)
		require.NoError(t, err)
		require.Equal(t, body, resp)
	})

	t.Run("upstream error is surfaced", func(t *testing.T) {
		client := broker.NewMockBrokerClient().SetError(broker.MethodCancelOrder, &eventmodels.UpstreamHttpError{StatusCode: 404})

		_, err := CancelOrder(ctx, client, testCredential(), "acct", 42)
		require.Error(t, err)
	})
}
