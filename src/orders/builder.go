package orders

import (
	"fmt"
	"strings"

	"github.com/SmooSenseAI/itrade/src/eventmodels"
	"github.com/SmooSenseAI/itrade/src/utils"
)

// NewClientOrderID returns 80 random bits as hex. The broker uses it to
// de-duplicate submissions, so each logical order gets a fresh one.
func NewClientOrderID() (string, error) {
	return utils.RandomHex(10)
}

type SingleLegOrder struct {
	Request eventmodels.BrokerOrderRequest
}

type SpreadOrder struct {
	Request eventmodels.BrokerOrderRequest
}

type SingleLegParams struct {
	Symbol       string
	SecurityType eventmodels.SecurityType
	OrderAction  string
	Quantity     int
	LimitPrice   *float64
	ExpiryDate   *string
	CallPut      *string
	StrikePrice  *float64
}

func SingleLegParamsFromRequest(req eventmodels.PlaceOrderRequest) SingleLegParams {
	return SingleLegParams{
		Symbol:       req.Symbol,
		SecurityType: req.SecurityType,
		OrderAction:  req.OrderAction,
		Quantity:     req.Quantity,
		LimitPrice:   req.LimitPrice,
		ExpiryDate:   req.ExpiryDate,
		CallPut:      req.CallPut,
		StrikePrice:  req.StrikePrice,
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// BuildSingleLegOrder builds a GTC limit order for one equity or option.
func BuildSingleLegOrder(params SingleLegParams) (*SingleLegOrder, error) {
	if params.LimitPrice == nil {
		return nil, fmt.Errorf("BuildSingleLegOrder: %w: limitPrice is required", eventmodels.ErrInvalidOrderParams)
	}

	product := eventmodels.BrokerProduct{
		SecurityType: params.SecurityType,
		Symbol:       params.Symbol,
	}

	orderType := "EQ"
	if params.SecurityType == eventmodels.SecurityTypeOption {
		if blank(params.ExpiryDate) || blank(params.CallPut) || params.StrikePrice == nil {
			return nil, fmt.Errorf("BuildSingleLegOrder: %w: option orders need expiryDate, callPut and strikePrice", eventmodels.ErrInvalidOrderParams)
		}

		expiry, err := utils.ParseExpiryDate(*params.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("BuildSingleLegOrder: %w: %v", eventmodels.ErrInvalidOrderParams, err)
		}

		orderType = "OPTN"
		product.CallPut = *params.CallPut
		product.ExpiryYear = expiry.Year()
		product.ExpiryMonth = int(expiry.Month())
		product.ExpiryDay = expiry.Day()
		product.StrikePrice = params.StrikePrice
	}

	clientOrderID, err := NewClientOrderID()
	if err != nil {
		return nil, fmt.Errorf("BuildSingleLegOrder: %w", err)
	}

	return &SingleLegOrder{
		Request: eventmodels.BrokerOrderRequest{
			OrderType:     orderType,
			ClientOrderID: clientOrderID,
			Order: []eventmodels.BrokerOrderDetail{
				{
					AllOrNone:     false,
					PriceType:     eventmodels.PriceTypeLimit,
					LimitPrice:    *params.LimitPrice,
					OrderTerm:     eventmodels.OrderTermGoodUntilCancel,
					MarketSession: eventmodels.MarketSessionRegular,
					Instrument: []eventmodels.BrokerInstrument{
						{
							Product:      product,
							OrderAction:  params.OrderAction,
							QuantityType: eventmodels.QuantityTypeQuantity,
							Quantity:     params.Quantity,
						},
					},
				},
			},
		},
	}, nil
}

// BuildSpreadOrder builds a multi-leg option order. priceType is passed to
// the broker as given; an empty legs list is not rejected here.
func BuildSpreadOrder(legs []eventmodels.SpreadLegRequest, limitPrice float64, priceType eventmodels.PriceType) (*SpreadOrder, error) {
	instruments := make([]eventmodels.BrokerInstrument, 0, len(legs))
	for i, leg := range legs {
		if err := leg.Validate(); err != nil {
			return nil, fmt.Errorf("BuildSpreadOrder: leg %d: %w", i, err)
		}

		expiry, err := utils.ParseExpiryDate(leg.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("BuildSpreadOrder: leg %d: %w: %v", i, eventmodels.ErrInvalidOrderParams, err)
		}

		strike := *leg.StrikePrice
		instruments = append(instruments, eventmodels.BrokerInstrument{
			Product: eventmodels.BrokerProduct{
				SecurityType: eventmodels.SecurityTypeOption,
				Symbol:       leg.Symbol,
				CallPut:      leg.CallPut,
				ExpiryYear:   expiry.Year(),
				ExpiryMonth:  int(expiry.Month()),
				ExpiryDay:    expiry.Day(),
				StrikePrice:  &strike,
			},
			OrderAction:  leg.OrderAction,
			QuantityType: eventmodels.QuantityTypeQuantity,
			Quantity:     leg.Quantity,
		})
	}

	clientOrderID, err := NewClientOrderID()
	if err != nil {
		return nil, fmt.Errorf("BuildSpreadOrder: %w", err)
	}

	return &SpreadOrder{
		Request: eventmodels.BrokerOrderRequest{
			OrderType:     eventmodels.OrderTypeSpreads,
			ClientOrderID: clientOrderID,
			Order: []eventmodels.BrokerOrderDetail{
				{
					AllOrNone:     false,
					PriceType:     priceType,
					LimitPrice:    limitPrice,
					OrderTerm:     eventmodels.OrderTermGoodUntilCancel,
					MarketSession: eventmodels.MarketSessionRegular,
					Instrument:    instruments,
				},
			},
		},
	}, nil
}
