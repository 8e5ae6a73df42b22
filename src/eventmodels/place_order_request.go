package eventmodels

import (
	"fmt"
	"strings"
)

// PlaceOrderRequest is the body of a place-order call. When Legs is non-nil
// (even if empty) the request describes a spread and only Legs, LimitPrice and
// PriceType are read.
type PlaceOrderRequest struct {
	Symbol       string             `json:"symbol"`
	SecurityType SecurityType       `json:"securityType"`
	OrderAction  string             `json:"orderAction"`
	Quantity     int                `json:"quantity"`
	LimitPrice   *float64           `json:"limitPrice"`
	ExpiryDate   *string            `json:"expiryDate"`
	CallPut      *string            `json:"callPut"`
	StrikePrice  *float64           `json:"strikePrice"`
	Legs         []SpreadLegRequest `json:"legs"`
	PriceType    PriceType          `json:"priceType"`
}

func (r *PlaceOrderRequest) IsSpread() bool {
	return r.Legs != nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

func (r *PlaceOrderRequest) Validate() error {
	if r.LimitPrice == nil {
		return fmt.Errorf("%w: limitPrice is required", ErrInvalidOrderParams)
	}

	if r.IsSpread() {
		if r.PriceType == "" {
			return fmt.Errorf("%w: priceType is required for spread orders", ErrInvalidOrderParams)
		}

		for i := range r.Legs {
			if err := r.Legs[i].Validate(); err != nil {
				return fmt.Errorf("leg %d: %w", i, err)
			}
		}

		return nil
	}

	if r.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidOrderParams)
	}

	if r.SecurityType == "" {
		return fmt.Errorf("%w: securityType is required", ErrInvalidOrderParams)
	}

	if r.OrderAction == "" {
		return fmt.Errorf("%w: orderAction is required", ErrInvalidOrderParams)
	}

	if r.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrderParams)
	}

	if r.SecurityType == SecurityTypeOption {
		if isBlank(r.ExpiryDate) || isBlank(r.CallPut) || r.StrikePrice == nil {
			return fmt.Errorf("%w: option orders need expiryDate, callPut and strikePrice", ErrInvalidOrderParams)
		}
	}

	return nil
}

type SpreadLegRequest struct {
	Symbol      string   `json:"symbol"`
	CallPut     string   `json:"callPut"`
	ExpiryDate  string   `json:"expiryDate"`
	StrikePrice *float64 `json:"strikePrice"`
	OrderAction string   `json:"orderAction"`
	Quantity    int      `json:"quantity"`
}

func (l *SpreadLegRequest) Validate() error {
	if strings.TrimSpace(l.Symbol) == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidOrderParams)
	}

	if strings.TrimSpace(l.CallPut) == "" {
		return fmt.Errorf("%w: callPut is required", ErrInvalidOrderParams)
	}

	if strings.TrimSpace(l.ExpiryDate) == "" {
		return fmt.Errorf("%w: expiryDate is required", ErrInvalidOrderParams)
	}

	if l.StrikePrice == nil {
		return fmt.Errorf("%w: strikePrice is required", ErrInvalidOrderParams)
	}

	if strings.TrimSpace(l.OrderAction) == "" {
		return fmt.Errorf("%w: orderAction is required", ErrInvalidOrderParams)
	}

	if l.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidOrderParams)
	}

	return nil
}
