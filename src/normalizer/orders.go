package normalizer

import (
	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/utils"
)

// NormalizeOrders turns OrdersResponse.Order[] into one Order per order
// detail. Details without a limit price, and details whose instruments all
// lack a symbol, are dropped.
func NormalizeOrders(raw Raw) []eventmodels.Order {
	orders := []eventmodels.Order{}
	if len(raw) == 0 {
		return orders
	}

	for _, order := range ensureObjects(getMap(raw, "OrdersResponse")["Order"]) {
		orderID, _ := utils.ToInt64(order["orderId"])
		orderType := getString(order, "orderType", "")

		for _, detail := range ensureObjects(order["OrderDetail"]) {
			limitPrice, ok := utils.ToFloat64(detail["limitPrice"])
			if !ok {
				continue
			}

			legs := normalizeLegs(detail)
			if len(legs) == 0 {
				continue
			}

			orders = append(orders, eventmodels.Order{
				OrderID:       orderID,
				OrderType:     orderType,
				LimitPrice:    limitPrice,
				StopPrice:     getFloatPtr(detail, "stopPrice"),
				PriceType:     getString(detail, "priceType", ""),
				OrderTerm:     getString(detail, "orderTerm", ""),
				MarketSession: getString(detail, "marketSession", ""),
				PlacedTime:    getInt64Ptr(detail, "placedTime"),
				NetPrice:      getFloatPtr(detail, "netPrice"),
				NetBid:        getFloatPtr(detail, "netBid"),
				NetAsk:        getFloatPtr(detail, "netAsk"),
				Status:        getString(detail, "status", ""),
				AllOrNone:     getBool(detail, "allOrNone"),
				BaseSymbol:    legs[0].BaseSymbol,
				Legs:          legs,
			})
		}
	}

	return orders
}

func normalizeLegs(detail Raw) []eventmodels.OrderLeg {
	legs := []eventmodels.OrderLeg{}
	for _, instrument := range ensureObjects(detail["Instrument"]) {
		product := getMap(instrument, "Product")
		symbol := getString(product, "symbol", "")
		if symbol == "" {
			continue
		}

		legs = append(legs, eventmodels.OrderLeg{
			Symbol:              symbol,
			BaseSymbol:          ExtractBaseSymbol(product),
			SymbolDescription:   getString(instrument, "symbolDescription", ""),
			OrderedQuantity:     getFloat(instrument, "orderedQuantity", 0),
			FilledQuantity:      getFloat(instrument, "filledQuantity", 0),
			OrderAction:         getString(instrument, "orderAction", ""),
			StrikePrice:         getFloatPtr(product, "strikePrice"),
			CallPut:             getStringPtr(product, "callPut"),
			ExpiryYear:          getIntPtr(product, "expiryYear"),
			ExpiryMonth:         getIntPtr(product, "expiryMonth"),
			ExpiryDay:           getIntPtr(product, "expiryDay"),
			Bid:                 getFloatPtr(instrument, "bid"),
			Ask:                 getFloatPtr(instrument, "ask"),
			LastPrice:           getFloatPtr(instrument, "lastprice"),
			EstimatedCommission: getFloatPtr(instrument, "estimatedCommission"),
		})
	}

	return legs
}
